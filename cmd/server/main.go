package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/lostfound-backend/internal/auth"
	"github.com/ignatzorin/lostfound-backend/internal/chatsync"
	"github.com/ignatzorin/lostfound-backend/internal/config"
	"github.com/ignatzorin/lostfound-backend/internal/db"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/goroutine"
	httpRouter "github.com/ignatzorin/lostfound-backend/internal/http/router"
	"github.com/ignatzorin/lostfound-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/handler"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/realtime"
	"github.com/ignatzorin/lostfound-backend/internal/storage"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/chatroom"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/matching"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/notification"
	"github.com/ignatzorin/lostfound-backend/migrations"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.IsProduction() {
		logger.Init("info")
	} else {
		logger.Init("debug")
		logger.SetTextFormatter()
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.DefaultPool)
	if err != nil {
		logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, db.MigrationsFS(cfg.MigrationsPath, migrations.Files)); err != nil {
		logger.Log.Fatalf("main: ошибка миграций: %v", err)
	}

	objectStorage, err := newObjectStorage(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("main: не удалось подготовить хранилище файлов: %v", err)
	}

	tokenManager := auth.NewTokenManager(cfg.JWTSecret)

	// Репозитории.
	reportRepo := persistence.NewReportRepositoryAdapter(dbConn)
	submissionWriter := persistence.NewSubmissionWriter(dbConn)
	notificationRepo := persistence.NewNotificationRepositoryAdapter(dbConn)
	roomRepo := persistence.NewChatRoomRepositoryAdapter(dbConn)
	messageRepo := persistence.NewMessageRepositoryAdapter(dbConn)

	// Живая лента чатов: LISTEN/NOTIFY -> брокер -> сессии.
	broker := realtime.NewBroker(0)
	goroutine.SafeGoWithContext(ctx, "realtime broker", broker.Run)

	feed := realtime.NewPGFeed(realtime.PGFeedConfig{
		DSN:          cfg.DatabaseURL,
		Channel:      realtime.MessageEventsChannel,
		MinReconnect: cfg.RealtimeMinReconnect,
		MaxReconnect: cfg.RealtimeMaxReconnect,
	}, broker, messageRepo)
	goroutine.SafeGoWithContext(ctx, "realtime pg feed", func(ctx context.Context) {
		if err := feed.Run(ctx); err != nil {
			logger.Log.WithError(err).Error("main: живая лента чатов остановлена")
		}
	})

	chatEngine := chatsync.NewEngine(messageRepo, broker)

	// Use cases.
	submitReportUC := matching.NewSubmitReportUseCase(reportRepo, submissionWriter, objectStorage, matching.NewScorer(cfg.MatchDistanceKm))
	listMyReportsUC := matching.NewListMyReportsUseCase(reportRepo)
	getReportUC := matching.NewGetReportUseCase(reportRepo)
	updateStatusUC := matching.NewUpdateReportStatusUseCase(reportRepo, notificationRepo)

	resolveRoomUC := chatroom.NewResolveRoomUseCase(reportRepo, roomRepo)
	listMyRoomsUC := chatroom.NewListMyRoomsUseCase(roomRepo)
	authorizeRoomUC := chatroom.NewAuthorizeRoomUseCase(roomRepo)

	feedUC := notification.NewFeedUseCase(notificationRepo, resolveRoomUC)

	// HTTP хэндлеры.
	handlers := httpRouter.Handlers{
		Health:       handler.NewHealthHandler(dbConn),
		Report:       handler.NewReportHandler(submitReportUC, listMyReportsUC, getReportUC, updateStatusUC, cfg.MaxUploadSizeMB),
		Notification: handler.NewNotificationHandler(feedUC),
		Room:         handler.NewRoomHandler(resolveRoomUC, listMyRoomsUC, authorizeRoomUC, chatEngine, objectStorage, cfg.MaxChatImageMB),
		RoomStream:   handler.NewRoomStreamHandler(authorizeRoomUC, chatEngine, cfg.AllowedOrigins),
	}

	engine := httpRouter.SetupRouter(cfg, handlers, tokenManager)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo("http shutdown", func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	})

	logger.Log.WithField("port", cfg.HTTPPort).WithField("storage", cfg.StorageDriver).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

func newObjectStorage(ctx context.Context, cfg *config.Config) (repository.ObjectStorage, error) {
	if cfg.StorageDriver == config.StorageS3 {
		return storage.NewS3Storage(ctx, cfg.S3Bucket, cfg.AWSRegion, cfg.S3PublicBaseURL)
	}
	return storage.NewLocalStorage(cfg.MediaStoragePath, cfg.MediaPublicBaseURL, cfg.MaxUploadSizeMB)
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
