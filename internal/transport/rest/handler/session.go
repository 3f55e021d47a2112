package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gameplatform/internal/model"
	"gameplatform/internal/session"
)

// SessionHandler drives sessions over plain HTTP for clients using the
// REST+SSE variant. Each create/join mints a connection ID the client
// passes back with every action.
type SessionHandler struct {
	manager *session.Manager
}

func NewSessionHandler(manager *session.Manager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

type createRequest struct {
	GameType model.GameType `json:"gameType"`
}

// Create handles POST /v1/sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	connID := uuid.NewString()
	code, err := h.manager.Create(req.GameType, connID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"code":         code,
		"connectionId": connID,
		"role":         model.RoleFirst,
	})
}

// Join handles POST /v1/sessions/{code}/join.
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	connID := uuid.NewString()
	role, err := h.manager.Join(code, connID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"code":         session.NormalizeCode(code),
		"connectionId": connID,
		"role":         role,
	})
}

// Get handles GET /v1/sessions/{code}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.manager.Snapshot(mux.Vars(r)["code"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type actionRequest struct {
	ConnectionID string       `json:"connectionId"`
	Index        *int         `json:"index,omitempty"`
	Choice       model.Choice `json:"choice,omitempty"`
}

// Move handles POST /v1/sessions/{code}/move.
func (h *SessionHandler) Move(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(req actionRequest) (session.Action, bool) {
		if req.Index == nil {
			return nil, false
		}
		return session.MoveAction{Index: *req.Index}, true
	})
}

// Roll handles POST /v1/sessions/{code}/roll.
func (h *SessionHandler) Roll(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(actionRequest) (session.Action, bool) {
		return session.RollAction{}, true
	})
}

// Choice handles POST /v1/sessions/{code}/choice.
func (h *SessionHandler) Choice(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(req actionRequest) (session.Action, bool) {
		if req.Choice == "" {
			return nil, false
		}
		return session.ChoiceAction{Choice: req.Choice}, true
	})
}

func (h *SessionHandler) action(w http.ResponseWriter, r *http.Request, build func(actionRequest) (session.Action, bool)) {
	code := mux.Vars(r)["code"]

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConnectionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	act, ok := build(req)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing action input"})
		return
	}

	if err := h.manager.HandleAction(code, req.ConnectionID, act); err != nil {
		writeError(w, err)
		return
	}

	snap, err := h.manager.Snapshot(code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type leaveRequest struct {
	ConnectionID string `json:"connectionId"`
}

// Leave handles POST /v1/sessions/{code}/leave. The code is informational;
// leaving removes the connection from every session it belongs to, exactly
// like a transport-level disconnect.
func (h *SessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConnectionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	h.manager.Leave(req.ConnectionID)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
