package websocket

import (
	"bytes"
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/foodmarket/provision-backend/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4 * 1024 // 클라이언트는 ping/refresh만 보낸다
)

// A view message always starts with this prefix because ServerMessage
// marshals its type first.
var viewPrefix = []byte(`{"type":"` + MessageTypeView + `"`)

// Conn WebSocket 연결 래퍼
type Conn struct {
	*websocket.Conn
}

// NewUpgrader accepts same-origin requests and the listed browser origins.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 8 * 1024, // 세션 뷰 한 개가 한 번에 쓰이도록
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, origin)
		},
	}
}

// Serve registers an upgraded connection for identity and starts its pumps.
// ctx bounds the snapshot and refresh lookups made on the client's behalf.
func Serve(ctx context.Context, hub *Hub, raw *websocket.Conn, identity string) *Client {
	client := NewClient(hub, &Conn{Conn: raw}, identity)
	hub.Register(client)
	go client.WritePump()
	go client.ReadPump(ctx)
	return client
}

// ReadPump 클라이언트 메시지를 읽어 Hub로 넘긴다
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Session stream closed unexpectedly", map[string]interface{}{
					"identity": c.Identity,
					"error":    err.Error(),
				})
			}
			return
		}
		c.Hub.HandleClientMessage(ctx, c, message)
	}
}

// WritePump 세션 뷰를 클라이언트로 전송. 밀린 뷰는 최신 것만 보낸다.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub가 채널을 닫음
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			pending := [][]byte{message}
			for n := len(c.Send); n > 0; n-- {
				pending = append(pending, <-c.Send)
			}
			for _, msg := range coalesce(pending) {
				if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					logger.Warn("Failed to write session message", map[string]interface{}{
						"identity": c.Identity,
						"error":    err.Error(),
					})
					return
				}
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// coalesce drops every session view superseded by a later one. Other
// messages keep their order.
func coalesce(pending [][]byte) [][]byte {
	last := -1
	for i, msg := range pending {
		if bytes.HasPrefix(msg, viewPrefix) {
			last = i
		}
	}

	out := make([][]byte, 0, len(pending))
	for i, msg := range pending {
		if i != last && bytes.HasPrefix(msg, viewPrefix) {
			continue
		}
		out = append(out, msg)
	}
	return out
}
