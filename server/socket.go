package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/hoermto/unifi-energy/util"
	"nhooyr.io/websocket"
)

const socketWriteTimeout = 10 * time.Second

type socketClient struct {
	send      chan []byte
	closeSlow func()
}

// SocketHub broadcasts published values to websocket clients
type SocketHub struct {
	log   *util.Logger
	cache *util.Cache

	mu      sync.RWMutex
	clients map[*socketClient]struct{}
}

// NewSocketHub creates a websocket hub. New clients receive the cached values first.
func NewSocketHub(cache *util.Cache) *SocketHub {
	return &SocketHub{
		log:     util.NewLogger("socket"),
		cache:   cache,
		clients: make(map[*socketClient]struct{}),
	}
}

func encode(params ...util.Param) ([]byte, error) {
	res := make(map[string]interface{}, len(params))
	for _, p := range params {
		res[p.UniqueID()] = p.Val
	}
	return json.Marshal(res)
}

func writeTimeout(ctx context.Context, timeout time.Duration, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return conn.Write(ctx, websocket.MessageText, msg)
}

// ServeWebsocket upgrades the connection and keeps it registered until the client goes away
func (h *SocketHub) ServeWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.ERROR.Printf("accept: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// ignore all incoming messages
	ctx := conn.CloseRead(r.Context())

	client := &socketClient{
		send: make(chan []byte, 1024),
		closeSlow: func() {
			conn.Close(websocket.StatusPolicyViolation, "client too slow")
		},
	}

	if h.cache != nil {
		if data, err := encode(h.cache.All()...); err == nil {
			if err := writeTimeout(ctx, socketWriteTimeout, conn, data); err != nil {
				return
			}
		}
	}

	h.add(client)
	defer h.remove(client)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-client.send:
			if err := writeTimeout(ctx, socketWriteTimeout, conn, msg); err != nil {
				h.log.DEBUG.Printf("write: %v", err)
				return
			}
		}
	}
}

func (h *SocketHub) add(c *socketClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *SocketHub) remove(c *socketClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *SocketHub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			go c.closeSlow()
		}
	}
}

// Run broadcasts all values received from the publish channel
func (h *SocketHub) Run(in <-chan util.Param) {
	for p := range in {
		data, err := encode(p)
		if err != nil {
			h.log.ERROR.Printf("encode %s: %v", p.UniqueID(), err)
			continue
		}
		h.broadcast(data)
	}
}
