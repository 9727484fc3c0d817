package server

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/ucf/section/internal/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 50 * time.Second

	// ReloadMessage tells connected pages to reload.
	ReloadMessage = "reload"
)

// Client is a connected live reload page.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans reload notifications out to connected pages.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	origins    []string
	logger     logging.Logger
}

// NewHub creates a Hub. origins are host patterns accepted in addition
// to same-origin requests.
func NewHub(origins []string, logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		origins:    origins,
		logger:     logger.WithComponent("websocket"),
	}
}

// Run serves the hub until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug(ctx, "client connected", "clients", len(h.clients))

		case client := <-h.unregister:
			if h.clients[client] {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug(ctx, "client disconnected", "clients", len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Broadcast queues message for every connected client.
func (h *Hub) Broadcast(message string) {
	select {
	case h.broadcast <- []byte(message):
	default:
		h.logger.Debug(context.Background(), "broadcast queue full, dropping message")
	}
}

// Reload is a reload listener that tells every page to reload.
func (h *Hub) Reload(context.Context) {
	h.Broadcast(ReloadMessage)
}

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	client := &Client{conn: conn, send: make(chan []byte, 8)}

	// The request context ends when the handler returns, so the
	// connection gets its own.
	ctx := conn.CloseRead(context.Background())
	select {
	case h.register <- client:
	case <-r.Context().Done():
		conn.Close(websocket.StatusGoingAway, "")
		return
	}

	go h.writePump(ctx, client)
}

func (h *Hub) writePump(ctx context.Context, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case <-ctx.Done():
			h.drop(client)
			return
		case message, ok := <-client.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeWait)
			err := client.conn.Write(wctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				h.drop(client)
				return
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeWait)
			err := client.conn.Ping(pctx)
			cancel()
			if err != nil {
				h.drop(client)
				return
			}
		}
	}
}

// drop unregisters client unless the hub has stopped.
func (h *Hub) drop(client *Client) {
	select {
	case h.unregister <- client:
	case <-time.After(time.Second):
	}
}
