package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trading_hub/internal/realtime/app"
	"trading_hub/internal/realtime/repository"
	"trading_hub/internal/realtime/router"
	"trading_hub/pkg/config"
	"trading_hub/pkg/database"
	"trading_hub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.RealtimeService, config.EnvConfig.RealtimeServiceLogPath)
	defer logger.Log.Sync()
	cfg := config.LoadConfig[config.Realtime](config.EnvConfig.RealtimeService, config.EnvConfig.RealtimeServiceYAMLPath)
	if config.EnvConfig.RealtimeServicePort != "" {
		cfg.Port = config.EnvConfig.RealtimeServicePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. 建立 PostgreSQL 連線 (status: pgx, counters/members/dm: gorm)
	pgURI := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pgConn := database.Connection{
		ConnectStr:    pgURI,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	}
	pool, err := database.NewDatabaseConnection(pgConn)
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgreSQL database after retries", zap.String("host", cfg.PostgreSQL.Host), zap.Error(err))
	}
	defer pool.Close()

	gormDB, err := database.NewPGConnection(pgConn)
	if err != nil {
		logger.Log.Fatal("Unable to open gorm connection", zap.Error(err))
	}

	// 2. 建立 Mongo 連線 (存訊息)
	mongoURI := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    mongoURI,
			RetryCount:    cfg.MongoSQL.RetryCount,
			RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval),
		},
		cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal("Unable to connect to mongoDB database after retries", zap.String("host", cfg.MongoSQL.Host), zap.Error(err))
	}
	defer mongo.Close(context.Background())

	// 3. 初始化 Repository
	statusRepo := repository.NewStatusRepository(pool)
	unreadRepo := repository.NewUnreadRepository(gormDB)
	memberRepo := repository.NewRoomMemberRepository(gormDB)
	dmRepo := repository.NewDMRepository(gormDB)
	msgRepo := repository.NewMongoChatMessageRepository(mongo.Database)

	if err := statusRepo.EnsureSchema(ctx); err != nil {
		logger.Log.Fatal("member_status schema", zap.Error(err))
	}
	for name, migrate := range map[string]func() error{
		"unread_counters": unreadRepo.AutoMigrate,
		"room_members":    memberRepo.AutoMigrate,
		"dm_visibilities": dmRepo.AutoMigrate,
	} {
		if err := migrate(); err != nil {
			logger.Log.Fatal("auto migrate failed", zap.String("table", name), zap.Error(err))
		}
	}
	if err := repository.EnsureIndexes(ctx, mongo.Database); err != nil {
		logger.Log.Warn("mongo index", zap.Error(err))
	}

	mirror, err := newEventMirror(cfg.Mirror, cfg.Redis)
	if err != nil {
		logger.Log.Fatal("event mirror", zap.String("driver", cfg.Mirror.Driver), zap.Error(err))
	}
	if mirror != nil {
		defer mirror.Close()
	}

	// 4. 初始化 UseCases
	registry := app.NewConnectionRegistry()
	rooms := app.NewRoomRouter()
	hub := app.NewHub(registry, rooms, mirror, cfg.Mirror.QueueSize)
	go hub.RunMirror(ctx)

	presence := app.NewPresenceTracker(registry, hub, statusRepo)
	dispatcher := app.NewNotificationDispatcher(hub, memberRepo, unreadRepo)
	dmUC := app.NewDirectMessageUseCase(dmRepo, hub)
	messageUC := app.NewMessageUseCase(msgRepo, memberRepo, app.NewMessageFanout(hub), dispatcher, dmUC)

	// 5. 啟動 Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.RealtimeServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file, // 将日志输出到文件
	}))

	// 注册路由
	router.RegisterRoutes(r,
		app.NewRealtimeWebsocketHandler(presence, rooms, memberRepo, cfg.Socket),
		app.NewRestHandler(messageUC, dmUC, presence, dispatcher),
	)

	go func() {
		<-ctx.Done()
		logger.Log.Info("shutting down realtime service")
		if err := r.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Log.Error("fiber shutdown", zap.Error(err))
		}
	}()

	// Listen
	port := ":" + cfg.Port
	logger.Log.Info("Realtime Service listening", zap.String("port", port), zap.String("mirror", cfg.Mirror.Driver))
	if err := r.Listen(port); err != nil {
		logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
	}
}

// newEventMirror build the configured mirror, nil when disabled
func newEventMirror(m config.MirrorConfig, rc config.RedisConfig) (repository.EventMirror, error) {
	switch m.Driver {
	case "", "none":
		return nil, nil

	case "redis":
		if rc.Addr != "" {
			client, err := database.NewStandaloneRedisClient(rc.Addr, rc.RedisDB)
			if err != nil {
				return nil, err
			}
			return repository.NewRedisMirror(client, m.Channel), nil
		}
		masterName, sentinel := config.GetRedisSetting()
		client, err := database.NewRedisClient(masterName, sentinel, rc.RedisDB)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisMirror(client, m.Channel), nil

	case "kafka":
		if len(m.Brokers) == 0 {
			return nil, fmt.Errorf("kafka mirror needs brokers")
		}
		writer, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
			Brokers:       m.Brokers,
			Topic:         m.Topic,
			RetryCount:    5,
			RetryInterval: 2,
		})
		if err != nil {
			return nil, err
		}
		return repository.NewKafkaMirror(writer), nil

	case "rabbitmq":
		conn, err := database.ConnectRabbitMQWithRetry(database.Connection{
			ConnectStr:    m.RabbitURL,
			RetryCount:    5,
			RetryInterval: 2,
		})
		if err != nil {
			return nil, err
		}
		ch, err := database.GetRabbitMQChannelWithRetry(conn, 3, 1)
		if err != nil {
			conn.Close()
			return nil, err
		}
		mirror, err := repository.NewRabbitMirror(conn, ch, m.Exchange)
		if err != nil {
			ch.Close()
			conn.Close()
			return nil, err
		}
		return mirror, nil
	}
	return nil, fmt.Errorf("unknown mirror driver %q", m.Driver)
}
