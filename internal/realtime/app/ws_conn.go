package app

import (
	"sync"
	"time"

	"trading_hub/internal/realtime/domain"
	"trading_hub/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// wsConn one websocket connection, only writePump writes to the socket
type wsConn struct {
	id     string
	userID string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func newWSConn(id, userID string, conn *websocket.Conn, buffer int) *wsConn {
	return &wsConn{
		id:     id,
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
}

func (c *wsConn) ID() string     { return c.id }
func (c *wsConn) UserID() string { return c.userID }

// Send drop the event when the buffer is full or the connection is closing
func (c *wsConn) Send(resp domain.WSResponse) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	b, err := json.Marshal(resp)
	if err != nil {
		logger.Log.Error("marshal response failed", zap.String("action", string(resp.Action)), zap.Error(err))
		return false
	}

	select {
	case c.send <- b:
		return true
	case <-c.done:
		return false
	default:
		logger.Log.Warn("send buffer full, event dropped", zap.String("conn", c.id), zap.String("action", string(resp.Action)))
		return false
	}
}

func (c *wsConn) close() {
	c.once.Do(func() { close(c.done) })
}

// writePump flush queued frames and ping every pingInterval
func (c *wsConn) writePump(pingInterval, writeWait time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case b := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				logger.Log.Errorf("write message error:", err)
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Log.Errorf("Ping error:", err)
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
