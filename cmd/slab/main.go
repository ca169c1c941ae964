package main

import (
	"os"

	"github.com/slab-db/slab/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
