package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	stberrors "github.com/FocuswithJustin/stbview/core/errors"
	"github.com/FocuswithJustin/stbview/internal/logging"
)

// Invoke commands understood on /ws.
const (
	CmdReadSTBridge = "read_st_bridge"
	CmdMembers      = "members"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 64 << 20
	sendBuffer     = 64
)

// InvokeRequest is one command sent by the viewer. A missing ID is
// replaced by a fresh uuid, echoed back in the response.
type InvokeRequest struct {
	ID   string          `json:"id"`
	Cmd  string          `json:"cmd"`
	Args json.RawMessage `json:"args"`
}

// InvokeResponse answers an InvokeRequest.
type InvokeResponse struct {
	ID     string    `json:"id"`
	OK     bool      `json:"ok"`
	Result any       `json:"result,omitempty"`
	Error  *APIError `json:"error,omitempty"`
}

// EventDocumentParsed is broadcast when a file is parsed rather than served
// from a cache.
const EventDocumentParsed = "document_parsed"

// Event is pushed to every connected client.
type Event struct {
	Type      string `json:"type"`
	FileName  string `json:"fileName,omitempty"`
	Digest    string `json:"digest,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Client is one websocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// queue hands msg to the write pump unless the connection is gone.
func (c *Client) queue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	case <-c.done:
		return false
	}
}

// Hub tracks connected clients for broadcasts.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	logging.WebSocketEvent("client_connected", n)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	logging.WebSocketEvent("client_disconnected", n)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends ev to every client. Clients whose buffer is full miss it.
func (h *Hub) Broadcast(ev Event) {
	if ev.Timestamp == "" {
		ev.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		logging.Error("failed to marshal event", "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- data:
		case <-c.done:
		default:
			logging.Warn("client buffer full, dropping event", "type", ev.Type)
		}
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if len(s.cfg.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.LoggerFromContext(r.Context()).Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	s.hub.register(c)

	go c.writePump()
	go s.readPump(c)
}

// readPump reads invoke requests until the connection closes. Each request
// runs in its own goroutine; responses may arrive out of order.
func (s *Server) readPump(c *Client) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		close(c.done)
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn("websocket unexpected close", "error", err)
			}
			return
		}

		var req InvokeRequest
		if err := json.Unmarshal(data, &req); err != nil {
			err = fmt.Errorf("%w: invoke request: %v", stberrors.ErrInvalidInput, err)
			c.queue(s.encodeResponse(uuid.NewString(), nil, err))
			continue
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		go func() {
			rctx := logging.WithRequestID(ctx, req.ID)
			result, err := s.invoke(rctx, req)
			c.queue(s.encodeResponse(req.ID, result, err))
		}()
	}
}

// invoke runs one command.
func (s *Server) invoke(ctx context.Context, req InvokeRequest) (any, error) {
	start := time.Now()
	defer func() {
		logging.LoggerFromContext(ctx).Debug("invoke", "cmd", req.Cmd, "duration_ms", time.Since(start).Milliseconds())
	}()

	switch req.Cmd {
	case CmdReadSTBridge:
		var args LoadRequest
		if err := decodeArgs(req.Args, &args); err != nil {
			return nil, err
		}
		return s.document(ctx, args)
	case CmdMembers:
		var args MembersRequest
		if err := decodeArgs(req.Args, &args); err != nil {
			return nil, err
		}
		return s.members(ctx, args)
	default:
		return nil, fmt.Errorf("%w: unknown command %q", stberrors.ErrInvalidInput, req.Cmd)
	}
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing args", stberrors.ErrInvalidInput)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: args: %v", stberrors.ErrInvalidInput, err)
	}
	return nil
}

func (s *Server) encodeResponse(id string, result any, err error) []byte {
	resp := InvokeResponse{ID: id, OK: err == nil, Result: result}
	if err != nil {
		_, resp.Error = classify(err)
		resp.Result = nil
	}
	data, merr := json.Marshal(resp)
	if merr != nil {
		_, apiErr := classify(merr)
		data, _ = json.Marshal(InvokeResponse{ID: id, Error: apiErr})
	}
	return data
}

// writePump is the only writer on the connection. Every message goes out
// as its own text frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
