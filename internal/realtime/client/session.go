package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"trading_hub/internal/realtime/domain"
	"trading_hub/pkg/logger"

	"go.uber.org/zap"
)

// ErrNotConnected no socket is open
var ErrNotConnected = errors.New("not connected")

// Session drive one tab's connection state machine and feed the Store
type Session struct {
	store          *Store
	transport      Transport
	snapshotRetry  time.Duration
	reconnectDelay time.Duration

	mu   sync.Mutex
	conn Conn
}

// NewSession create Session
func NewSession(store *Store, transport Transport, snapshotRetry, reconnectDelay time.Duration) *Session {
	if snapshotRetry <= 0 {
		snapshotRetry = 5 * time.Second
	}
	if reconnectDelay <= 0 {
		reconnectDelay = 2 * time.Second
	}
	return &Session{
		store:          store,
		transport:      transport,
		snapshotRetry:  snapshotRetry,
		reconnectDelay: reconnectDelay,
	}
}

// Run connect and reconnect until ctx is done
func (s *Session) Run(ctx context.Context) error {
	for {
		s.store.setState(Connecting)
		conn, err := s.transport.Dial(ctx)
		if err == nil {
			err = s.serve(ctx, conn)
		}
		s.setConn(nil)
		s.store.setState(Disconnected)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Log.Warn("realtime connection lost, reconnecting", zap.Error(err), zap.Duration("delay", s.reconnectDelay))

		select {
		case <-time.After(s.reconnectDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// serve one connection, full re-handshake: re-join the active room then request the snapshot
func (s *Session) serve(ctx context.Context, conn Conn) error {
	defer conn.Close()
	s.setConn(conn)
	s.store.setState(AwaitingSnapshot)

	if room := s.store.ActiveRoom(); room != "" {
		if err := conn.Send(domain.WSRequest{Action: string(domain.JoinRoom), RoomID: room}); err != nil {
			return err
		}
	}
	if err := s.requestSnapshot(conn); err != nil {
		return err
	}

	frames := make(chan Frame)
	errc := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			f, err := conn.Receive()
			if err != nil {
				errc <- err
				return
			}
			select {
			case frames <- f:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(s.snapshotRetry)
	defer ticker.Stop()
	retry := ticker.C

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return err
		case f := <-frames:
			if err := s.store.Apply(f); err != nil {
				logger.Log.Warn("bad realtime frame", zap.String("action", string(f.Action)), zap.Error(err))
				continue
			}
			if f.Action == domain.OnlineUsers && f.Success {
				s.store.setState(Ready)
				ticker.Stop()
				retry = nil
			}
		case <-retry:
			logger.Log.Debug("snapshot not received, retrying")
			if err := s.requestSnapshot(conn); err != nil {
				return err
			}
		}
	}
}

func (s *Session) requestSnapshot(conn Conn) error {
	return conn.Send(domain.WSRequest{Action: string(domain.GetUsers)})
}

func (s *Session) setConn(c Conn) {
	s.mu.Lock()
	s.conn = c
	s.mu.Unlock()
}

func (s *Session) send(req domain.WSRequest) error {
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()
	if c == nil {
		return ErrNotConnected
	}
	return c.Send(req)
}

// EnterRoom navigation into roomID completed. The badge clears at once,
// the room is joined now or on the next handshake.
func (s *Session) EnterRoom(roomID string) error {
	prev := s.store.SetActiveRoom(roomID)
	if prev != "" && prev != roomID {
		if err := s.send(domain.WSRequest{Action: string(domain.LeaveRoom), RoomID: prev}); err != nil && !errors.Is(err, ErrNotConnected) {
			return err
		}
	}
	err := s.send(domain.WSRequest{Action: string(domain.JoinRoom), RoomID: roomID})
	if errors.Is(err, ErrNotConnected) {
		return nil
	}
	return err
}

// LeaveRoom navigation away from the active room
func (s *Session) LeaveRoom() error {
	prev := s.store.SetActiveRoom("")
	if prev == "" {
		return nil
	}
	err := s.send(domain.WSRequest{Action: string(domain.LeaveRoom), RoomID: prev})
	if errors.Is(err, ErrNotConnected) {
		return nil
	}
	return err
}

// SetStatus ask the server to change the explicit status
func (s *Session) SetStatus(status domain.Status) error {
	return s.send(domain.WSRequest{Action: string(domain.SetStatus), Status: string(status)})
}
