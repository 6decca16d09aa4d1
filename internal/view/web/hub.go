package web

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// writeTimeout bounds a single frame write to one viewer. A stalled
// viewer must not wedge its writer goroutine forever.
const writeTimeout = 5 * time.Second

// outboundBuffer is the per-viewer frame queue depth. A viewer that falls
// this far behind starts losing frames; the next snapshot resyncs it.
const outboundBuffer = 64

// Hub fans encoded frames out to every connected viewer. There is a
// single scene, so there is no room keying: every connection sees every
// frame. Each viewer gets its own writer goroutine and ordered queue, so
// one slow viewer never reorders or delays another's frames.
type Hub struct {
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte

	mu    sync.RWMutex
	conns map[*websocket.Conn]chan []byte
}

// NewHub creates a hub. Run must be started for registration and
// broadcast to make progress.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 256),
		conns:      make(map[*websocket.Conn]chan []byte),
	}
}

// Run dispatches hub traffic until ctx is cancelled, then closes every
// remaining connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case conn := <-h.register:
			h.add(conn)
		case conn := <-h.unregister:
			h.remove(conn)
		case data := <-h.broadcast:
			h.writeAll(data)
		}
	}
}

// Register adds a connection to the broadcast set.
func (h *Hub) Register(conn *websocket.Conn) {
	h.register <- conn
}

// Unregister removes a connection and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.unregister <- conn
}

// Broadcast queues a frame for every connected viewer. Frames are dropped
// when the queue is full rather than blocking the producer.
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		log.Printf("web: broadcast queue full, dropping frame")
	}
}

// Len returns the number of connected viewers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		return
	}
	outbound := make(chan []byte, outboundBuffer)
	h.conns[conn] = outbound
	go writer(conn, outbound)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if outbound, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		close(outbound)
	}
}

func (h *Hub) writeAll(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, outbound := range h.conns {
		select {
		case outbound <- data:
		default:
			log.Printf("web: viewer queue full, dropping frame")
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, outbound := range h.conns {
		delete(h.conns, conn)
		close(outbound)
	}
}

// writer drains one viewer's queue in order. Write failures drain the
// remaining queue so the broadcaster never blocks; the connection's read
// loop notices the closure and unregisters.
func writer(conn *websocket.Conn, outbound <-chan []byte) {
	defer conn.Close(websocket.StatusNormalClosure, "")
	failed := false
	for data := range outbound {
		if failed {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := conn.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			log.Printf("web: write to viewer: %v", err)
			failed = true
		}
	}
}
