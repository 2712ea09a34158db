package bootstrap

import (
	"context"
	"log"

	"ai-casefile-be/internal/config"
	"ai-casefile-be/internal/controller"
	"ai-casefile-be/internal/handler"
	"ai-casefile-be/internal/pkg/gameclock"
	"ai-casefile-be/internal/pkg/logger"
	"ai-casefile-be/internal/pkg/mailer"
	"ai-casefile-be/internal/repository/implementation"
	"ai-casefile-be/internal/repository/memory"
	"ai-casefile-be/internal/repository/unitofwork"
	"ai-casefile-be/internal/service"
	"ai-casefile-be/internal/websocket"
	imagenfactory "ai-casefile-be/pkg/imagen/factory"
	"ai-casefile-be/pkg/llm/factory"
	"ai-casefile-be/pkg/uploader"

	pktNats "ai-casefile-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController          controller.IAuthController
	CaseController          controller.ICaseController
	InvestigationController controller.IInvestigationController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Generative Providers
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	imageProvider, err := imagenfactory.NewImageProvider(
		cfg.Ai.ImageProvider,
		cfg.Ai.ImageModel,
		cfg.Ai.OpenAIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Image Provider: %v", err)
	}
	log.Printf("[INFO] Using Image Provider: %s (%s)", cfg.Ai.ImageProvider, cfg.Ai.ImageModel)

	uploadService := uploader.NewLocalUploader(cfg.Uploads.RootDir, cfg.App.BaseURL)

	// In-memory state: operation registry and case read cache
	registry := memory.NewOperationRegistry(sysLogger)
	caseCache := memory.NewCaseCache()
	clock := gameclock.System()

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, cfg.App.GenerateCaseTopic)
	pipelineService := service.NewPipelineService(
		uowFactory,
		registry,
		llmProvider,
		imageProvider,
		uploadService,
		natsPub,
		emailService,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.GenerateCaseTopic,
		pipelineService,
	)

	authService := service.NewAuthService(uowFactory)
	caseService := service.NewCaseService(uowFactory, publisherService, registry, caseCache, clock)
	investigationService := service.NewInvestigationService(uowFactory, llmProvider, caseCache, natsPub, clock)

	// 4.5 Notification System
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, wsLogger) // Hub implements NotificationDelivery

	// Start Service (Worker)
	if natsSub != nil {
		go notifService.Start()
	}

	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		NotificationHandler:     notifHandler,
		WebSocketHub:            wsHub,
		AuthController:          controller.NewAuthController(authService),
		CaseController:          controller.NewCaseController(caseService),
		InvestigationController: controller.NewInvestigationController(investigationService),

		ConsumerService: consumerService,
	}
}
