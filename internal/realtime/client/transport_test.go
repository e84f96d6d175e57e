package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trading_hub/internal/realtime/domain"
	"trading_hub/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frameServer writes raw text frames to every client then waits for it to leave
func frameServer(t *testing.T, frames ...string) *httptest.Server {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tkn", r.URL.Query().Get("auth"))
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for _, f := range frames {
			if err := ws.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		_, _, _ = ws.ReadMessage()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebsocketTransport_SkipsUndecodableFrame(t *testing.T) {
	logger.SetNewNop()
	srv := frameServer(t,
		`{"action": "user.online", "success": tru`,
		`{"action":"user.online","success":true,"payload":{"user_id":"u2","status":"AWAY"}}`,
	)

	tr := &WebsocketTransport{URL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws", Token: "tkn"}
	conn, err := tr.Dial(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	f, err := conn.Receive()
	require.NoError(t, err, "a bad frame does not end the connection")
	assert.Equal(t, domain.UserOnline, f.Action)
	assert.True(t, f.Success)
	assert.JSONEq(t, `{"user_id":"u2","status":"AWAY"}`, string(f.Payload))
}
