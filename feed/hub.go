package feed

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/moebelhaus/shop-backend/models"
	"go.uber.org/zap"
)

const (
	EventOrderCreated = "order.created"
	EventOrderShipped = "order.shipped"
	EventOrderStatus  = "order.status"

	clientBuffer = 16
	writeWait    = 10 * time.Second
	pingPeriod   = 30 * time.Second
)

type OrderEvent struct {
	Type        string             `json:"type"`
	OrderID     uint               `json:"orderId"`
	OrderNumber string             `json:"orderNumber"`
	Status      models.OrderStatus `json:"status"`
}

func NewOrderEvent(eventType string, order *models.Order) OrderEvent {
	return OrderEvent{Type: eventType, OrderID: order.ID, OrderNumber: order.OrderNumber, Status: order.Status}
}

type Publisher interface {
	Publish(event OrderEvent)
}

// Hub 將訂單事件推送給後台的 websocket 連線
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub 只接受來自 allowedOrigins 的瀏覽器連線，未設定時只允許同網域
func NewHub(log *zap.Logger, allowedOrigins ...string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			allowed[strings.ToLower(origin)] = true
		}
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return checkOrigin(r, allowed) },
		},
		log: log.Named("feed"),
	}
}

func checkOrigin(r *http.Request, allowed map[string]bool) bool {
	origin := r.Header.Get("Origin")
	// 非瀏覽器的用戶端不帶 Origin
	if origin == "" {
		return true
	}
	if len(allowed) > 0 {
		return allowed[strings.ToLower(strings.TrimRight(origin, "/"))]
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// Publish 不會阻塞，緩衝區滿的連線直接斷開
func (h *Hub) Publish(event OrderEvent) {
	if h == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("無法序列化訂單事件", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn("連線過慢，已斷開")
			h.removeLocked(c)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS 升級連線並持續推送，直到連線關閉
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket 升級失敗", zap.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// 後台不會送訊息，讀取只用來偵測斷線
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
