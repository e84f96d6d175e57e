package app

import (
	"context"
	"errors"
	"time"

	"trading_hub/internal/realtime/domain"
	"trading_hub/pkg/config"
	errprocess "trading_hub/pkg/err"
	"trading_hub/pkg/logger"
	"trading_hub/pkg/middlewares"

	"github.com/goccy/go-json"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoomAuthorizer confirm a user is a persisted member of a room
type RoomAuthorizer interface {
	IsMember(ctx context.Context, roomID, userID string) (bool, error)
}

// RealtimeWebsocketHandler 可包含所有需要的 UseCase
type RealtimeWebsocketHandler struct {
	presence   *PresenceTracker
	rooms      *RoomRouter
	authorizer RoomAuthorizer
	cfg        config.SocketConfig
}

// NewRealtimeWebsocketHandler create RealtimeWebsocketHandler, authorizer is consulted when cfg.AuthorizeJoin
func NewRealtimeWebsocketHandler(
	presence *PresenceTracker,
	rooms *RoomRouter,
	authorizer RoomAuthorizer,
	cfg config.SocketConfig,
) *RealtimeWebsocketHandler {
	return &RealtimeWebsocketHandler{
		presence:   presence,
		rooms:      rooms,
		authorizer: authorizer,
		cfg:        cfg.WithDefaults(),
	}
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *RealtimeWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	memberID, _ := conn.Locals(middlewares.TokenMemberID).(string)
	if memberID == "" {
		closeWebSocketConnection(conn, websocket.ClosePolicyViolation, "missing member")
		return
	}

	c := newWSConn(uuid.New().String(), memberID, conn, h.cfg.SendBuffer)
	logger.Log.Info("websocket open", zap.String("userID", memberID), zap.String("conn", c.id))

	pongWait := h.cfg.PingInterval * 2
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	//server發出ping之後client連線正常會回pong
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		c.writePump(h.cfg.PingInterval, h.cfg.WriteWait)
	}()

	defer func() {
		left := h.rooms.LeaveAll(c.id)
		h.presence.Disconnect(c.id)
		c.close()
		<-pumpDone
		conn.Close()
		logger.Log.Info("websocket close", zap.String("userID", memberID), zap.String("conn", c.id), zap.Strings("rooms", left))
	}()

	h.presence.Connect(ctx, memberID, c)

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Debug("connection closed", zap.String("conn", c.id))
			} else {
				//直接斷線 1006
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if mt != websocket.TextMessage {
			c.Send(domain.Failure(domain.ErrorAction, errprocess.Set("unsupported message type")))
			continue
		}
		h.HandleRequest(ctx, c, message)
	}
}

// HandleRequest run one client frame, every reply goes through sink
func (h *RealtimeWebsocketHandler) HandleRequest(ctx context.Context, sink Sink, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		sink.Send(domain.Failure(domain.ErrorAction, errors.New("malformed frame")))
		return
	}

	var resp domain.WSResponse
	switch domain.Action(req.Action) {
	//進入聊天室
	case domain.JoinRoom:
		resp = h.joinRoom(ctx, sink, req.RoomID)

	//離開聊天室
	case domain.LeaveRoom:
		if req.RoomID == "" {
			resp = domain.Failure(domain.LeaveRoom, errors.New("room_id is required"))
			break
		}
		h.rooms.Leave(sink.ID(), req.RoomID)
		resp = domain.Event(domain.LeaveRoom, domain.RoomRef{RoomID: req.RoomID})

	//上線名單
	case domain.GetUsers:
		resp = domain.Event(domain.OnlineUsers, h.presence.Snapshot())

	case domain.SetStatus:
		status, err := h.presence.SetStatus(ctx, sink.UserID(), req.Status)
		if err != nil {
			resp = domain.Failure(domain.SetStatus, err)
			break
		}
		resp = domain.Event(domain.SetStatus, domain.UserPresence{UserID: sink.UserID(), Status: status})

	default:
		resp = domain.Failure(domain.ErrorAction, errors.New("unknown action "+req.Action))
	}

	if !resp.Success {
		logger.Log.Error("websocket err ", zap.String("MemberID", sink.UserID()), zap.String("Action", req.Action), zap.String("err", resp.Error))
	}
	sink.Send(resp)
}

func (h *RealtimeWebsocketHandler) joinRoom(ctx context.Context, sink Sink, roomID string) domain.WSResponse {
	if roomID == "" {
		return domain.Failure(domain.JoinRoom, errors.New("room_id is required"))
	}
	if h.cfg.AuthorizeJoin && h.authorizer != nil {
		ok, err := h.authorizer.IsMember(ctx, roomID, sink.UserID())
		if err != nil {
			return domain.Failure(domain.JoinRoom, err)
		}
		if !ok {
			return domain.Failure(domain.JoinRoom, domain.ErrNotRoomMember)
		}
	}
	h.rooms.Join(sink.ID(), roomID)
	return domain.Event(domain.JoinRoom, domain.RoomRef{RoomID: roomID})
}

func closeWebSocketConnection(conn *websocket.Conn, code int, reason string) {
	if err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason)); err != nil {
		logger.Log.Errorf("Failed to send CloseMessage: %v", err)
	}
	conn.Close()
}
