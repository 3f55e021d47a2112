// Package ws is the WebSocket transport: it upgrades connections, decodes
// the message envelope, and forwards game events to the session manager.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gameplatform/internal/broadcast"
	"gameplatform/internal/model"
	"gameplatform/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS policy is enforced at the REST layer
	},
}

// Client->server message types.
const (
	msgCreateSession = "createSession"
	msgJoinSession   = "joinSession"
	msgMakeMove      = "makeMove"
	msgRollDice      = "rollDice"
	msgMakeChoice    = "makeChoice"
)

// Server->client message types.
const (
	msgSessionCreated = "sessionCreated"
	msgSessionJoined  = "sessionJoined"
	msgError          = "error"
)

type createPayload struct {
	GameType model.GameType `json:"gameType"`
}

type joinPayload struct {
	Code string `json:"code"`
}

type movePayload struct {
	Code  string `json:"code"`
	Index int    `json:"index"`
}

type rollPayload struct {
	Code string `json:"code"`
}

type choicePayload struct {
	Code   string       `json:"code"`
	Choice model.Choice `json:"choice"`
}

// Handler serves the /ws endpoint.
type Handler struct {
	manager *session.Manager
	hub     *broadcast.Hub
}

func NewHandler(manager *session.Manager, hub *broadcast.Hub) *Handler {
	return &Handler{manager: manager, hub: hub}
}

// conn is one connected client: its identity, its websocket, its outbound
// queue, and the session codes it receives broadcasts for.
type conn struct {
	id    string
	ws    *websocket.Conn
	send  chan []byte
	codes map[string]bool
}

// Serve handles GET /v1/ws.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade: %v", err)
		return
	}

	c := &conn{
		id:    uuid.NewString(),
		ws:    wsConn,
		send:  make(chan []byte, 256),
		codes: make(map[string]bool),
	}
	log.Printf("ws: %s connected", c.id)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Handler) readPump(c *conn) {
	defer func() {
		for code := range c.codes {
			h.hub.Unregister(code, c.id)
		}
		h.manager.Leave(c.id)
		close(c.send)
		c.ws.Close()
		log.Printf("ws: %s disconnected", c.id)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg broadcast.Message
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws: %s read: %v", c.id, err)
			}
			break
		}
		h.dispatch(c, msg)
	}
}

func (h *Handler) dispatch(c *conn, msg broadcast.Message) {
	switch msg.Type {
	case msgCreateSession:
		var req createPayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			h.sendError(c, "malformed payload")
			return
		}
		code, err := h.manager.Create(req.GameType, c.id)
		if err != nil {
			h.sendError(c, err.Error())
			return
		}
		c.codes[code] = true
		h.hub.Register(code, c.id, c.send)
		h.reply(c, msgSessionCreated, map[string]any{"code": code, "role": model.RoleFirst})

	case msgJoinSession:
		var req joinPayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			h.sendError(c, "malformed payload")
			return
		}
		code := session.NormalizeCode(req.Code)
		role, err := h.manager.Join(code, c.id)
		if err != nil {
			h.sendError(c, err.Error())
			return
		}
		c.codes[code] = true
		h.hub.Register(code, c.id, c.send)
		h.reply(c, msgSessionJoined, map[string]any{"code": code, "role": role})
		// The join broadcast went out before this connection was registered;
		// hand the joiner the current state directly.
		if snap, err := h.manager.Snapshot(code); err == nil {
			h.reply(c, session.EventGameUpdate, snap)
		}

	case msgMakeMove:
		var req movePayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			h.sendError(c, "malformed payload")
			return
		}
		if err := h.manager.HandleAction(req.Code, c.id, session.MoveAction{Index: req.Index}); err != nil {
			h.sendError(c, err.Error())
		}

	case msgRollDice:
		var req rollPayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			h.sendError(c, "malformed payload")
			return
		}
		if err := h.manager.HandleAction(req.Code, c.id, session.RollAction{}); err != nil {
			h.sendError(c, err.Error())
		}

	case msgMakeChoice:
		var req choicePayload
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			h.sendError(c, "malformed payload")
			return
		}
		if err := h.manager.HandleAction(req.Code, c.id, session.ChoiceAction{Choice: req.Choice}); err != nil {
			h.sendError(c, err.Error())
		}

	default:
		h.sendError(c, "unknown message type")
	}
}

// reply queues a message for this connection only.
func (h *Handler) reply(c *conn, event string, payload any) {
	data, err := broadcast.Encode(event, payload)
	if err != nil {
		log.Printf("ws: encode %s: %v", event, err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Handler) sendError(c *conn, message string) {
	h.reply(c, msgError, map[string]string{"message": message})
}

func (h *Handler) writePump(c *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
