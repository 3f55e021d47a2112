// Package sse is the Server-Sent-Events transport: read-only streaming of
// session updates for clients that drive the game over REST.
package sse

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"gameplatform/internal/broadcast"
	"gameplatform/internal/session"
)

// Handler serves GET /v1/sse/sessions/{code}.
type Handler struct {
	manager *session.Manager
	hub     *broadcast.Hub
}

func NewHandler(manager *session.Manager, hub *broadcast.Hub) *Handler {
	return &Handler{manager: manager, hub: hub}
}

func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	code := session.NormalizeCode(mux.Vars(r)["code"])

	snap, err := h.manager.Snapshot(code)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := h.hub.Subscribe(code)
	defer h.hub.Unsubscribe(code, ch)
	log.Printf("sse: subscriber attached to session %s", code)

	// Hand the subscriber the current state before streaming deltas.
	if data, err := broadcast.Encode(session.EventGameUpdate, snap); err == nil {
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			log.Printf("sse: subscriber left session %s", code)
			return
		case data, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
