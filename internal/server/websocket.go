package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alnah/livemd"
)

// Message types exchanged over /ws.
const (
	MessageInput   = "input"
	MessagePreview = "preview"
	MessageTheme   = "theme"
	MessageError   = "error"
)

const writeWait = 10 * time.Second

// inbound is a browser event.
type inbound struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// outbound is a server reply or broadcast.
type outbound struct {
	Type  string       `json:"type"`
	HTML  string       `json:"html,omitempty"`
	Theme livemd.Theme `json:"theme,omitempty"`
	Icon  string       `json:"icon,omitempty"`
	Error string       `json:"error,omitempty"`
}

// client serializes writes to one connection; replies and theme broadcasts
// come from different goroutines.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(msg outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// handleWebSocket runs one editor event stream. Messages of a connection
// are handled in arrival order.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.maxBodyBytes)

	c := &client{conn: conn}
	s.register(c)
	defer func() {
		s.unregister(c)
		_ = conn.Close()
	}()

	ctx := r.Context()
	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket closed", "error", err)
			}
			return
		}

		reply, broadcast := s.dispatch(ctx, msg)
		if broadcast {
			s.broadcast(reply)
			continue
		}
		if err := c.send(reply); err != nil {
			s.logger.Debug("websocket write failed", "error", err)
			return
		}
	}
}

// dispatch handles one event. broadcast is true when every connected
// editor should receive the reply.
func (s *Server) dispatch(ctx context.Context, msg inbound) (reply outbound, broadcast bool) {
	switch msg.Type {
	case MessageInput:
		html, err := s.session.Input(ctx, msg.Text)
		if err != nil {
			s.logger.Error("handling input", "error", err)
			return outbound{Type: MessageError, Error: err.Error()}, false
		}
		return outbound{Type: MessagePreview, HTML: html}, false
	case MessageTheme:
		theme, err := s.session.ToggleTheme(ctx)
		if err != nil {
			s.logger.Error("toggling theme", "error", err)
			return outbound{Type: MessageError, Error: err.Error()}, false
		}
		return themeMessage(theme), true
	default:
		return outbound{Type: MessageError, Error: "unknown message type: " + msg.Type}, false
	}
}

func themeMessage(theme livemd.Theme) outbound {
	return outbound{Type: MessageTheme, Theme: theme, Icon: theme.Icon()}
}

func (s *Server) register(c *client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[c] = struct{}{}
	s.logger.Debug("websocket connected", "clients", len(s.clients))
}

func (s *Server) unregister(c *client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, c)
	s.logger.Debug("websocket disconnected", "clients", len(s.clients))
}

// snapshotClients copies the client set so sends happen without clientsMu.
func (s *Server) snapshotClients() []*client {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	out := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		out = append(out, c)
	}
	return out
}

func (s *Server) broadcast(msg outbound) {
	for _, c := range s.snapshotClients() {
		if err := c.send(msg); err != nil {
			s.logger.Debug("websocket broadcast failed", "error", err)
		}
	}
}

// broadcastTheme tells open editors about a theme change made over REST.
func (s *Server) broadcastTheme(theme livemd.Theme) {
	s.broadcast(themeMessage(theme))
}

// closeClients sends a going-away close frame to every connection.
func (s *Server) closeClients() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, c := range s.snapshotClients() {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = c.conn.Close()
		c.mu.Unlock()
	}
}
