package dashboard

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/magroup/magnus/internal/chat"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type      string `json:"type"`       // "start" or "message"
	SessionID string `json:"session_id"` // empty for new sessions
	Content   string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format. "delta" carries
// one streamed answer fragment; "response" carries the complete reply.
type chatResponse struct {
	Type      string     `json:"type"` // "delta", "response", "state", or "error"
	SessionID string     `json:"session_id"`
	Content   string     `json:"content,omitempty"`
	State     chat.State `json:"state,omitempty"`
	Category  string     `json:"category,omitempty"`
	Reset     bool       `json:"reset,omitempty"`
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("dashboard: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("dashboard: websocket read: %v", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			d.sendError(conn, "", "invalid message format")
			continue
		}

		switch req.Type {
		case "start":
			d.handleStart(conn, r)
		case "message":
			d.handleChatMessage(conn, r, req)
		default:
			d.sendError(conn, req.SessionID, "unknown message type: "+req.Type)
		}
	}
}

// handleStart opens a new session and sends the welcome message.
func (d *Dashboard) handleStart(conn *websocket.Conn, r *http.Request) {
	ctx := r.Context()

	sess, err := d.engine.Store().CreateSession(ctx)
	if err != nil {
		d.sendError(conn, "", "failed to create session: "+err.Error())
		return
	}

	reply, err := d.engine.Greet(ctx, sess.ID)
	if err != nil {
		d.sendError(conn, sess.ID, "greeting failed: "+err.Error())
		return
	}
	d.sendReply(conn, reply)
}

func (d *Dashboard) handleChatMessage(conn *websocket.Conn, r *http.Request, req chatRequest) {
	if req.SessionID == "" {
		d.sendError(conn, "", "session_id is required; send a start message first")
		return
	}
	if req.Content == "" {
		d.sendError(conn, req.SessionID, "content is required")
		return
	}

	ctx := r.Context()
	onDelta := func(delta string) error {
		return conn.WriteJSON(chatResponse{
			Type:      "delta",
			SessionID: req.SessionID,
			Content:   delta,
		})
	}

	reply, err := d.engine.HandleMessage(ctx, req.SessionID, req.Content, onDelta)
	if err != nil {
		d.sendError(conn, req.SessionID, "processing failed: "+err.Error())
		return
	}
	d.sendReply(conn, reply)
}

// sendReply sends the full reply followed by a state update.
func (d *Dashboard) sendReply(conn *websocket.Conn, reply *chat.Reply) {
	d.send(conn, chatResponse{
		Type:      "response",
		SessionID: reply.SessionID,
		Content:   reply.Content,
		State:     reply.State,
		Category:  reply.Category,
		Reset:     reply.Reset,
	})
	d.send(conn, chatResponse{
		Type:      "state",
		SessionID: reply.SessionID,
		State:     reply.State,
		Category:  reply.Category,
	})
}

func (d *Dashboard) send(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("dashboard: websocket write: %v", err)
	}
}

func (d *Dashboard) sendError(conn *websocket.Conn, sessionID, message string) {
	d.send(conn, chatResponse{
		Type:      "error",
		SessionID: sessionID,
		Content:   message,
	})
}
