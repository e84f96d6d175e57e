package client

import (
	"context"
	"net/url"
	"sync"

	"trading_hub/internal/realtime/domain"
	"trading_hub/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Conn one open socket
type Conn interface {
	Send(req domain.WSRequest) error
	// Receive blocks until the next server frame
	Receive() (Frame, error)
	Close() error
}

// Transport opens sockets
type Transport interface {
	Dial(ctx context.Context) (Conn, error)
}

// WebsocketTransport gorilla/websocket Transport authenticated with the auth query token
type WebsocketTransport struct {
	URL    string
	Token  string
	Dialer *websocket.Dialer
}

// Dial open the socket
func (t *WebsocketTransport) Dial(ctx context.Context) (Conn, error) {
	u, err := url.Parse(t.URL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("auth", t.Token)
	u.RawQuery = q.Encode()

	dialer := t.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	ws, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{ws: ws}, nil
}

type wsConn struct {
	ws *websocket.Conn
	// gorilla allows one concurrent writer
	wmu sync.Mutex
}

func (c *wsConn) Send(req domain.WSRequest) error {
	b, err := json.Marshal(req)
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

// Receive skip frames that do not decode, only socket errors end the connection
func (c *wsConn) Receive() (Frame, error) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return Frame{}, err
		}
		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			logger.Log.Warn("undecodable realtime frame dropped", zap.Int("size", len(data)), zap.Error(err))
			continue
		}
		return f, nil
	}
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}
