package slab

import (
	"os"
	"path/filepath"
	"strings"
)

// EnvDBDir, when set, forces every database file into that directory
// regardless of the requested location. The directory is created if absent.
const EnvDBDir = "SLAB_DB_DIR"

// DefaultDBDir is where bare filenames are placed when EnvDBDir is unset.
const DefaultDBDir = ".slab"

// resolvePath applies the file placement precedence:
//
//  1. EnvDBDir override: basename of the requested file joined to the
//     override directory.
//  2. A name containing a path separator is used as given.
//  3. A bare filename goes into baseDir (DefaultDBDir when empty).
//
// The in-memory DSN and explicit file: URIs pass through untouched.
func resolvePath(name, baseDir string) (string, error) {
	if name == ":memory:" || strings.HasPrefix(name, "file:") {
		return name, nil
	}

	if dir := os.Getenv(EnvDBDir); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", err
		}
		return filepath.Join(dir, filepath.Base(name)), nil
	}

	if strings.ContainsRune(name, os.PathSeparator) || strings.ContainsRune(name, '/') {
		return name, nil
	}

	if baseDir == "" {
		baseDir = DefaultDBDir
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return "", err
	}
	return filepath.Join(baseDir, name), nil
}
