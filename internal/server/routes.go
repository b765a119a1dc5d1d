package server

import (
	"net/http"
)

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// {$} pins the welcome page to the root path exactly, so the mux itself
	// answers 404 for unknown paths and 405 for method mismatches.
	mux.HandleFunc("GET /{$}", s.handleWelcome)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("GET /status", s.handleStatus)

	return mux
}
