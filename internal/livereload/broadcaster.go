// Package livereload broadcasts hot-swap publish events over
// WebSocket to any connected observer (e.g. a development dashboard),
// grounded on the teacher repo's internal websocket_server.go
// connection-registry pattern. It is optional: a nil *Broadcaster
// behaves as if no observers were ever connected.
package livereload

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"mondot/internal/logging"
)

// Event is one hot-swap notification pushed to every connected client.
type Event struct {
	Module    string `json:"module"`
	Version   string `json:"version"`
	Republish bool   `json:"republish"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Broadcaster fans publish events out to every currently connected
// WebSocket client, dropping any client whose write fails. Writes are
// synchronous under the client-set lock, so a publish waits for each
// client's write to return.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func New() *Broadcaster {
	return &Broadcaster{clients: make(map[*websocket.Conn]bool)}
}

// ServeHTTP upgrades the request to a WebSocket and registers the
// connection as a broadcast target until it disconnects.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("livereload upgrade failed: %v", err)
		return
	}
	b.mu.Lock()
	b.clients[conn] = true
	b.mu.Unlock()

	// Drain and discard incoming frames; this is a push-only channel,
	// but reading keeps the connection's control messages (ping/close)
	// flowing until the client goes away.
	go func() {
		defer b.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (b *Broadcaster) remove(conn *websocket.Conn) {
	b.mu.Lock()
	delete(b.clients, conn)
	b.mu.Unlock()
	conn.Close()
}

// Publish sends ev to every connected client as JSON.
func (b *Broadcaster) Publish(ev Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.clients {
		if err := conn.WriteJSON(ev); err != nil {
			go b.remove(conn)
		}
	}
}

// OnPublish adapts Publish to the signature module.Manager.OnPublish
// expects, so a Broadcaster can be wired straight into the registry.
func (b *Broadcaster) OnPublish(name, version string, republish bool) {
	b.Publish(Event{Module: name, Version: version, Republish: republish})
}
