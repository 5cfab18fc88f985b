package api

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func SetupRouter(apiHandler *APIHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", apiHandler.ServeDashboard)
	r.Get("/api/data", apiHandler.HandleData)
	r.Get("/api/history", apiHandler.HandleHistory)
	r.Post("/api/relay/control", apiHandler.HandleRelayControl)
	r.Get("/ws", apiHandler.HandleWebSocket)

	// Serve static files (CSS, JS)
	staticPath := filepath.Join(apiHandler.webDir, "static")
	fs := http.FileServer(http.Dir(staticPath))
	r.Handle("/static/*", http.StripPrefix("/static/", fs))

	return r
}
