package router

import (
	"context"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/config"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/channel"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/handler"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/middleware"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/queue"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/repository"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/service"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/ws"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/pkg/cache"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Setup wires repositories, services, channel adapters and routes. It returns
// the engine plus the queue worker; the caller owns the worker's goroutine.
func Setup(cfg *config.Config, db *gorm.DB, ca *cache.Cache, log *zap.Logger) (*gin.Engine, *queue.Worker) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Repositories
	userRepo := repository.NewUserRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	queueRepo := repository.NewQueueRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)

	hub := ws.NewHub()
	adapters := buildAdapters(cfg, hub, deviceRepo, log)

	// Services
	templateStore := service.NewTemplateStore(templateRepo, ca, log.Named("templates"))
	resolver := service.NewResolver(userRepo, prefRepo, log.Named("resolver"))
	renderer := service.NewRenderer()

	worker := queue.NewWorker(queueRepo, notificationRepo, adapters, queue.Options{
		Interval:       cfg.Queue.Interval,
		BatchSize:      cfg.Queue.BatchSize,
		MaxConcurrent:  cfg.Queue.MaxConcurrent,
		RetryDelay:     cfg.Queue.RetryDelay,
		DeliverTimeout: cfg.Queue.DeliverTimeout,
	}, log.Named("queue"))

	notifier := service.NewNotifier(templateStore, resolver, renderer,
		notificationRepo, queueRepo, adapters,
		cfg.Queue.MaxAttempts, worker.Kick, log.Named("notifier"))

	if _, _, err := templateStore.SeedDefaults(context.Background()); err != nil {
		log.Error("template seeding failed", zap.Error(err))
	}

	// Handlers
	authHandler := handler.NewAuthHandler(&cfg.JWT, userRepo)
	notificationHandler := handler.NewNotificationHandler(notifier, notificationRepo, userRepo)
	templateHandler := handler.NewTemplateHandler(templateStore)
	prefHandler := handler.NewPreferenceHandler(prefRepo)
	deviceHandler := handler.NewDeviceHandler(deviceRepo)
	healthHandler := handler.NewHealthHandler(db, ca, adapters)

	r.GET("/health", healthHandler.Health)
	r.GET("/ws/notifications", ws.UpgradeNotificationWS(&cfg.JWT, hub))
	r.POST("/api/v1/auth/login", authHandler.Login)

	api := r.Group("/api/v1", middleware.AuthRequired(&cfg.JWT))
	{
		api.GET("/notifications/me", notificationHandler.ListMine)
		api.GET("/notifications/me/unread-count", notificationHandler.UnreadCount)
		api.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		api.PATCH("/notifications/:id/click", notificationHandler.MarkClicked)

		api.GET("/preferences/me", prefHandler.Get)
		api.PUT("/preferences/me", prefHandler.Update)

		api.POST("/devices", deviceHandler.Register)
		api.DELETE("/devices/:token", deviceHandler.Unregister)

		admin := api.Group("", middleware.RequireRole(domain.RoleAdmin, domain.RoleSuperadmin))
		{
			admin.POST("/notifications/send", notificationHandler.SendFromTemplate)
			admin.POST("/notifications/send-immediate", notificationHandler.SendImmediate)
			admin.GET("/notifications/:id", notificationHandler.Get)
			admin.GET("/notifications/:id/recipients", notificationHandler.Recipients)
			admin.DELETE("/notifications/:id", notificationHandler.Cancel)

			admin.GET("/templates", templateHandler.List)
			admin.GET("/templates/code/:code", templateHandler.Get)
			admin.POST("/templates", templateHandler.Create)
			admin.POST("/templates/seed", templateHandler.Seed)
			admin.PATCH("/templates/:id", templateHandler.Update)
			admin.DELETE("/templates/:id", templateHandler.Deactivate)

			admin.GET("/health/channels", healthHandler.Channels)
		}
	}

	return r, worker
}

// buildAdapters constructs one adapter per configured channel. A channel with
// missing provider settings is skipped, not stubbed: sends that request it
// simply fan out over the remaining channels.
func buildAdapters(cfg *config.Config, hub *ws.Hub, devices *repository.DeviceRepository, log *zap.Logger) map[string]channel.Adapter {
	adapters := map[string]channel.Adapter{
		domain.ChannelInApp: channel.NewInAppAdapter(hub, log.Named("inapp")),
	}

	if cfg.SMTP.Host != "" {
		adapters[domain.ChannelEmail] = channel.NewEmailAdapter(&cfg.SMTP, log.Named("email"))
		log.Info("email channel enabled", zap.String("host", cfg.SMTP.Host))
	} else {
		log.Warn("email channel disabled: SCHOOLHUB_SMTP_HOST not set")
	}

	if cfg.SMS.Region != "" {
		sms, err := channel.NewSMSAdapter(context.Background(), cfg.SMS.Region, cfg.SMS.SenderID, log.Named("sms"))
		if err != nil {
			log.Warn("sms channel disabled: aws config failed", zap.Error(err))
		} else {
			adapters[domain.ChannelSMS] = sms
			log.Info("sms channel enabled", zap.String("region", cfg.SMS.Region))
		}
	} else {
		log.Warn("sms channel disabled: SCHOOLHUB_SMS_REGION not set")
	}

	if cfg.Firebase.ServiceAccountPath != "" {
		push, err := channel.NewPushAdapter(context.Background(), cfg.Firebase.ServiceAccountPath, devices, log.Named("push"))
		if err != nil {
			log.Warn("push channel disabled: firebase init failed", zap.Error(err))
		} else {
			adapters[domain.ChannelPush] = push
			log.Info("push channel enabled")
		}
	} else {
		log.Warn("push channel disabled: SCHOOLHUB_FIREBASE_SERVICEACCOUNTPATH not set")
	}

	return adapters
}
