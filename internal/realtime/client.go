package realtime

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	Subprotocols:    []string{SubprotocolJSON, SubprotocolProtobuf},
	// Open to any origin, same as the CORS policy on the HTTP routes
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection registered with the hub
type Client struct {
	ID    string
	hub   *Hub
	conn  *websocket.Conn
	codec Codec
	send  chan frame

	// version of the last snapshot queued for this client; owned by Hub.Run
	version uint64
}

// ServeHTTP upgrades the request to a websocket and attaches it to the hub
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response
		slog.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	c := &Client{
		ID:    uuid.NewString(),
		hub:   h,
		conn:  conn,
		codec: codecFor(conn.Subprotocol()),
		send:  make(chan frame, sendBuffer),
	}

	if !h.addClient(c) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump handles client queries until the connection fails
func (c *Client) readPump() {
	defer func() {
		c.hub.removeClient(c)
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
				slog.Warn("client read failed", "client", c.ID, "error", err)
			}
			return
		}
		c.hub.reply(c, c.handle(data))
	}
}

// handle turns one inbound frame into its reply. Bad input is answered,
// never fatal to the connection.
func (c *Client) handle(data []byte) Outbound {
	msg, err := c.codec.Decode(data)
	if err != nil {
		return Outbound{Event: EventError, Error: "malformed message"}
	}

	switch msg.Event {
	case EventPositionUpdate:
		lat, lng, err := parsePosition(msg.Data)
		if err != nil {
			slog.Debug("rejected position", "client", c.ID, "error", err)
			return Outbound{Event: EventNearestBin, Data: nil, Error: errBadPosition.Error()}
		}

		nearest, found := c.hub.bins.Nearest(lat, lng)
		if !found {
			return Outbound{Event: EventNearestBin, Data: nil}
		}
		return Outbound{Event: EventNearestBin, Data: nearest}

	default:
		return Outbound{Event: EventError, Error: "unknown event " + strconv.Quote(msg.Event)}
	}
}

// writePump is the only writer on the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the queue
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(f.messageType, f.data); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					slog.Debug("client write failed", "client", c.ID, "error", err)
				}
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
