package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) setHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", s.render.contentType())
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func (s *Server) writeError(w http.ResponseWriter, msg string) {
	s.setHeaders(w)
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(msg))
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	tables, err := s.tableList(r.Context())
	if err != nil {
		s.writeError(w, err.Error())
		return
	}

	s.setHeaders(w)
	if err := s.render.welcome(w, tables); err != nil {
		s.logger.Error("rendering welcome", "error", err)
	}
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	cols, rows, err := s.store.ReadTable(r.Context(), name)
	if err != nil {
		s.writeError(w, err.Error())
		return
	}

	s.setHeaders(w)
	if err := s.render.records(w, cols, rows); err != nil {
		s.logger.Error("rendering table", "table", name, "error", err)
	}
}
