package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/foodmarket/provision-backend/internal/app/provision"
	"github.com/foodmarket/provision-backend/pkg/logger"
)

const (
	// Rate limiting: 최대 메시지 수 (1초당)
	maxMessagesPerSecond = 10

	MessageTypeView = "session_view"
	MessageTypePing = "ping"
	MessageTypePong = "pong"
	// MessageTypeRefresh asks for the current view to be pushed again.
	MessageTypeRefresh = "refresh"
)

// ClientMessage 클라이언트로부터 받은 메시지
type ClientMessage struct {
	Type string `json:"type"` // ping, refresh
}

// ServerMessage 서버가 보내는 메시지
type ServerMessage struct {
	Type string          `json:"type"`
	View *provision.View `json:"view,omitempty"`
}

// ViewSource renders the current session view of an identity.
type ViewSource func(ctx context.Context, identity string) (provision.View, error)

// Client WebSocket 클라이언트 (직원 한 명의 브라우저 탭 하나)
type Client struct {
	Hub           *Hub
	Conn          *Conn
	Identity      string
	Send          chan []byte
	MessageCount  int       // 최근 1초간 받은 메시지 수
	LastResetTime time.Time // 마지막 카운터 리셋 시간
	RateMu        sync.Mutex
}

func NewClient(hub *Hub, conn *Conn, identity string) *Client {
	return &Client{
		Hub:      hub,
		Conn:     conn,
		Identity: identity,
		Send:     make(chan []byte, 64),
	}
}

// Hub pushes session views to every open tab of a staff member. It
// implements provision.Observer.
type Hub struct {
	// 등록된 클라이언트들 (identity -> []*Client, 멀티 탭 지원)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	views ViewSource

	mu sync.RWMutex
}

// BroadcastMessage 특정 직원에게 보낼 메시지. Client가 있으면 그 탭에만 보낸다.
type BroadcastMessage struct {
	Identity string
	Client   *Client
	Message  []byte
}

// NewHub Hub 생성. views may be nil, in which case new clients wait for the
// next published view.
func NewHub(views ViewSource) *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
		views:      views,
	}
}

// Run Hub 실행
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.Identity] = append(h.clients[client.Identity], client)
			total := len(h.clients[client.Identity])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"identity":       client.Identity,
				"total_sessions": total,
			})
			go h.sendSnapshot(ctx, client.Identity)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			var stuck []*Client
			for _, client := range h.clients[message.Identity] {
				if message.Client != nil && client != message.Client {
					continue
				}
				select {
				case client.Send <- message.Message:
				default:
					stuck = append(stuck, client)
				}
			}
			h.mu.RUnlock()
			for _, client := range stuck {
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"identity": client.Identity,
				})
				h.remove(client)
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.Identity]
	if !ok {
		return
	}
	kept := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return
	}
	if len(kept) == 0 {
		delete(h.clients, client.Identity)
	} else {
		h.clients[client.Identity] = kept
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"identity":           client.Identity,
		"remaining_sessions": len(kept),
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for identity, list := range h.clients {
		for _, c := range list {
			close(c.Send)
		}
		delete(h.clients, identity)
	}
}

func (h *Hub) sendSnapshot(ctx context.Context, identity string) {
	if h.views == nil {
		return
	}
	view, err := h.views(ctx, identity)
	if err != nil {
		logger.Warn("Failed to render session snapshot", map[string]interface{}{
			"identity": identity,
			"error":    err.Error(),
		})
		return
	}
	h.Publish(identity, view)
}

// Publish queues view for every client of identity.
func (h *Hub) Publish(identity string, view provision.View) {
	h.send(identity, ServerMessage{Type: MessageTypeView, View: &view})
}

func (h *Hub) send(identity string, message ServerMessage) {
	h.enqueue(&BroadcastMessage{Identity: identity}, message)
}

// reply queues message for one client only. Delivery goes through Run so it
// never races with the hub closing the client's channel.
func (h *Hub) reply(client *Client, message ServerMessage) {
	h.enqueue(&BroadcastMessage{Identity: client.Identity, Client: client}, message)
}

func (h *Hub) enqueue(out *BroadcastMessage, message ServerMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return
	}
	out.Message = data

	select {
	case h.broadcast <- out:
	default:
		// 다음 조작에서 최신 상태가 다시 전송된다
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"identity": out.Identity,
		})
	}
}

// Register 클라이언트 등록
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister 클라이언트 등록 해제
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsOnline reports whether identity has at least one open connection.
func (h *Hub) IsOnline(identity string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[identity]
	return ok
}

// HandleClientMessage 클라이언트 메시지 처리
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"identity": client.Identity,
			"count":    count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"identity": client.Identity,
			"error":    err.Error(),
		})
		return
	}

	switch msg.Type {
	case MessageTypePing:
		h.reply(client, ServerMessage{Type: MessageTypePong})
	case MessageTypeRefresh:
		h.sendSnapshot(ctx, client.Identity)
	}
}
