package realtime

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/randytsao24/binwatch/internal/models"
)

// sendBuffer is how many frames may queue for one client before it is
// considered unresponsive and dropped
const sendBuffer = 32

// BinSource is the read side of the bin store the hub serves from
type BinSource interface {
	Snapshot() models.Snapshot
	Nearest(lat, lng float64) (models.NearestBin, bool)
}

type frame struct {
	messageType int
	data        []byte
}

type directMessage struct {
	client *Client
	msg    Outbound
}

// Hub owns the set of connected clients. All registry changes and all
// deliveries happen on the Run goroutine, so frames reach each client in the
// order they were scheduled.
type Hub struct {
	bins       BinSource
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan models.Snapshot
	direct     chan directMessage
	done       chan struct{}
	connected  atomic.Int64
}

// NewHub creates a hub serving snapshots and queries from bins
func NewHub(bins BinSource) *Hub {
	return &Hub{
		bins:       bins,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.Snapshot),
		direct:     make(chan directMessage),
		done:       make(chan struct{}),
	}
}

// Run dispatches hub events until ctx is cancelled, then disconnects everyone
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.connected.Add(1)
			slog.Info("client connected", "client", c.ID, "codec", c.codec.Subprotocol())
			snapshot := h.bins.Snapshot()
			c.version = snapshot.Version
			h.deliver(c, Outbound{Event: EventInitialData, Data: snapshot.Bins})

		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				slog.Info("client disconnected", "client", c.ID)
			}

		case snapshot := <-h.broadcast:
			h.fanOut(snapshot)

		case dm := <-h.direct:
			if h.clients[dm.client] {
				h.deliver(dm.client, dm.msg)
			}

		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		}
	}
}

// Broadcast pushes a dataUpdate with snapshot to every connected client
func (h *Hub) Broadcast(snapshot models.Snapshot) {
	select {
	case h.broadcast <- snapshot:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	return int(h.connected.Load())
}

func (h *Hub) addClient(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) removeClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) reply(c *Client, msg Outbound) {
	select {
	case h.direct <- directMessage{client: c, msg: msg}:
	case <-h.done:
	}
}

// fanOut encodes the update once per codec in use and queues it on every
// client that has not yet seen this version or a newer one. Writers publish
// after releasing the store lock, so an older snapshot can arrive late.
func (h *Hub) fanOut(snapshot models.Snapshot) {
	msg := Outbound{Event: EventDataUpdate, Data: snapshot.Bins}
	encoded := make(map[string]frame)

	for c := range h.clients {
		if snapshot.Version <= c.version {
			continue
		}
		f, ok := encoded[c.codec.Subprotocol()]
		if !ok {
			data, err := c.codec.Encode(msg)
			if err != nil {
				slog.Error("encoding update failed", "codec", c.codec.Subprotocol(), "error", err)
				continue
			}
			f = frame{messageType: c.codec.FrameType(), data: data}
			encoded[c.codec.Subprotocol()] = f
		}
		c.version = snapshot.Version
		h.enqueue(c, f)
	}
	slog.Debug("update broadcast", "version", snapshot.Version, "clients", len(h.clients))
}

func (h *Hub) deliver(c *Client, msg Outbound) {
	data, err := c.codec.Encode(msg)
	if err != nil {
		slog.Error("encoding message failed", "client", c.ID, "event", msg.Event, "error", err)
		return
	}
	h.enqueue(c, frame{messageType: c.codec.FrameType(), data: data})
}

// enqueue never blocks; a client whose queue is full is dropped
func (h *Hub) enqueue(c *Client, f frame) {
	select {
	case c.send <- f:
	default:
		slog.Warn("client too slow, dropping", "client", c.ID)
		h.drop(c)
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.connected.Add(-1)
}
