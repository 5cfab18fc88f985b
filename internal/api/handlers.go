package api

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"path/filepath"

	gwebsocket "github.com/gorilla/websocket" // Alias to avoid name conflict
	"github.com/sirupsen/logrus"

	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/command"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/storage"
	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/websocket"
)

var upgrader = gwebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // Allow all origins for simplicity
}

type APIHandler struct {
	store      *storage.Store
	dispatcher *command.Dispatcher
	hub        *websocket.Hub
	tmpl       *template.Template
	webDir     string
	log        *logrus.Logger
}

func NewAPIHandler(store *storage.Store, dispatcher *command.Dispatcher, hub *websocket.Hub, webDir string, log *logrus.Logger) *APIHandler {
	// Missing templates degrade GET / only; the JSON API must stay up.
	var tmpl *template.Template
	if webDir != "" {
		t, err := template.ParseGlob(filepath.Join(webDir, "templates", "*.html"))
		if err != nil {
			log.Warnf("dashboard templates unavailable under %s: %v", webDir, err)
		} else {
			tmpl = t
		}
	}

	return &APIHandler{
		store:      store,
		dispatcher: dispatcher,
		hub:        hub,
		tmpl:       tmpl,
		webDir:     webDir,
		log:        log,
	}
}

// HandleData serves the current-value snapshot. The copy is taken under the
// store's read lock; marshalling happens after it is released.
func (h *APIHandler) HandleData(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// HandleHistory serves the bounded history arrays plus the timestamp axis.
func (h *APIHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.HistorySnapshot())
}

// HandleRelayControl validates and dispatches a relay command. Invalid
// commands come back 400, dispatch failures 500, both as structured bodies.
func (h *APIHandler) HandleRelayControl(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{
			"status": "error", "message": "invalid JSON body",
		})
		return
	}

	cmd, err := h.dispatcher.Dispatch(req.Command)
	switch {
	case errors.Is(err, command.ErrInvalidCommand):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{
			"status": "error", "message": "invalid command",
		})
	case err != nil:
		h.log.Errorf("relay dispatch failed: %v", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "failed to dispatch command",
		})
	default:
		h.writeJSON(w, http.StatusOK, map[string]string{
			"status": "success", "command": cmd,
		})
	}
}

// HandleWebSocket upgrades connections and registers clients with the hub.
func (h *APIHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade error: %v", err)
		return
	}

	websocket.NewClient(h.hub, conn).Start()
	h.log.Debugf("websocket connection established: %s", conn.RemoteAddr())
}

// ServeDashboard serves the main HTML page.
func (h *APIHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	if h.tmpl == nil {
		http.Error(w, "dashboard assets not available", http.StatusInternalServerError)
		return
	}
	if err := h.tmpl.ExecuteTemplate(w, "index.html", nil); err != nil {
		h.log.Errorf("executing dashboard template: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Errorf("encoding response: %v", err)
	}
}
