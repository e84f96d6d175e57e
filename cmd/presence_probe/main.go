package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"trading_hub/internal/realtime/client"
	"trading_hub/internal/realtime/domain"
	"trading_hub/pkg/config"
	"trading_hub/pkg/logger"
	"trading_hub/pkg/token"

	"go.uber.org/zap"
)

// presence_probe 連上 realtime service, 印出 presence / unread 的變化
func main() {
	room := flag.String("room", "", "room to enter after connect")
	status := flag.String("status", "", "status to publish once ready")
	flag.Parse()

	logger.Log = logger.Initialize(config.EnvConfig.PresenceProbe, config.EnvConfig.PresenceProbeLogPath)
	defer logger.Log.Sync()
	cfg := config.LoadConfig[config.Probe](config.EnvConfig.PresenceProbe, config.EnvConfig.PresenceProbeYAMLPath).WithDefaults()

	claims, err := token.ParseJWT(cfg.Token)
	if err != nil {
		logger.Log.Fatal("probe token invalid", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := client.NewStore(claims.MemberID)
	session := client.NewSession(store, &client.WebsocketTransport{URL: cfg.URL, Token: cfg.Token}, cfg.SnapshotRetry, cfg.ReconnectDelay)

	var published bool
	store.OnChange(func(action domain.Action) {
		switch action {
		case domain.OnlineUsers:
			logger.Log.Info("presence snapshot", zap.Strings("online", store.OnlineUsers()))
			if *status != "" && !published {
				published = true
				if err := session.SetStatus(domain.Status(*status)); err != nil {
					logger.Log.Warn("set status", zap.Error(err))
				}
			}
		case domain.UserOnline, domain.UserOffline, domain.StatusChanged:
			logger.Log.Info("presence changed", zap.String("action", string(action)), zap.Strings("online", store.OnlineUsers()))
		case domain.NotifyUnread:
			logger.Log.Info("unread", zap.Any("counts", store.UnreadCounts()))
		case domain.DMActivated, domain.DMHidden:
			logger.Log.Info("dm list", zap.Int("visible", len(store.DMs())))
		case domain.NewMessage, domain.MessageEdited, domain.MessageDeleted:
			logger.Log.Info("room messages", zap.String("room", store.ActiveRoom()), zap.Int("loaded", len(store.Messages(store.ActiveRoom()))))
		default:
			logger.Log.Debug("event", zap.String("action", string(action)))
		}
	})

	if *room != "" {
		// 尚未連線時只記錄 active room, 連上後 serve 會重新 join
		_ = session.EnterRoom(*room)
	}

	logger.Log.Info("presence probe started", zap.String("url", cfg.URL), zap.String("self", claims.MemberID))
	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.Fatal("probe stopped", zap.Error(err))
	}
	logger.Log.Info("presence probe stopped")
}
