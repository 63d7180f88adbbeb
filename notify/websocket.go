// Package notify pushes per-tick simulation frames to websocket
// subscribers. Slow or dead clients are dropped rather than allowed to
// stall the simulation loop.
package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/petrilab/petri/sim"
)

// Frame is one tick's worth of state for remote viewers.
type Frame struct {
	Tick       int64       `json:"tick"`
	Night      bool        `json:"night"`
	Population int         `json:"population"`
	Predators  int         `json:"predators"`
	Events     []sim.Event `json:"events,omitempty"`
}

// WebSocketNotifier fans frames out to connected clients. All client
// bookkeeping happens on the run goroutine; Broadcast and Handler are
// safe to call from anywhere.
type WebSocketNotifier struct {
	upgrader websocket.Upgrader

	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewWebSocketNotifier starts the fan-out loop.
func NewWebSocketNotifier() *WebSocketNotifier {
	n := &WebSocketNotifier{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
	n.wg.Add(1)
	go n.run()
	return n
}

func (n *WebSocketNotifier) run() {
	defer n.wg.Done()
	for {
		select {
		case conn := <-n.register:
			n.clients[conn] = true
			slog.Info("websocket client connected", "clients", len(n.clients))
		case conn := <-n.unregister:
			if n.clients[conn] {
				delete(n.clients, conn)
				conn.Close()
			}
		case msg := <-n.broadcast:
			for conn := range n.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					delete(n.clients, conn)
					conn.Close()
				}
			}
		case <-n.done:
			for conn := range n.clients {
				conn.Close()
			}
			n.clients = nil
			return
		}
	}
}

// Handler returns the HTTP handler that upgrades connections and
// registers them for frames. Client reads are drained and discarded so
// control frames keep flowing.
func (n *WebSocketNotifier) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := n.upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "error", err)
			return
		}
		select {
		case n.register <- conn:
		case <-n.done:
			conn.Close()
			return
		}

		go func() {
			defer func() {
				select {
				case n.unregister <- conn:
				case <-n.done:
				}
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

// Broadcast queues a frame for all connected clients. If the queue is
// full the frame is dropped; viewers tolerate gaps.
func (n *WebSocketNotifier) Broadcast(frame Frame) {
	msg, err := json.Marshal(frame)
	if err != nil {
		slog.Error("frame marshal failed", "error", err)
		return
	}
	select {
	case n.broadcast <- msg:
	default:
	}
}

// Close shuts down the fan-out loop and disconnects all clients.
func (n *WebSocketNotifier) Close() {
	close(n.done)
	n.wg.Wait()
}
