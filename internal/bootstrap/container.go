package bootstrap

import (
	"context"
	"log"

	"autofilter-be/internal/config"
	"autofilter-be/internal/controller"
	"autofilter-be/internal/handler"
	"autofilter-be/internal/pkg/logger"
	"autofilter-be/internal/repository/implementation"
	"autofilter-be/internal/repository/memory"
	"autofilter-be/internal/repository/unitofwork"
	"autofilter-be/internal/service"
	"autofilter-be/internal/transport"
	pktNats "autofilter-be/pkg/nats"
	"autofilter-be/pkg/shortener"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const indexTopic = "file.index"

type Container struct {
	// Controllers
	VerificationController controller.IVerificationController

	// Event boundary
	UpdateHandler *handler.UpdateHandler

	// Background services (exposed for main.go to run)
	IndexService service.IIndexService

	Logger logger.ILogger
}

// NewContainer wires the application. Pass a real chat adapter as bot,
// or nil to fall back to the logging transport.
func NewContainer(db *gorm.DB, cfg *config.Config, bot transport.Transport) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	if bot == nil {
		bot = transport.NewLoggingTransport(sysLogger)
	}

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

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

	var shortenerClient *shortener.Client
	if cfg.Shortener.APIURL != "" && cfg.Shortener.APIKey != "" {
		shortenerClient = shortener.NewClient(cfg.Shortener.APIURL, cfg.Shortener.APIKey)
	} else {
		log.Printf("[WARN] Shortener not configured, verification links will be raw URLs")
	}

	// 3. Repositories
	sessionRepo := memory.NewSessionRepository()
	verificationRepo := implementation.NewVerificationRepository(rdb)

	// 4. Services
	publisherService := service.NewPublisherService(indexTopic, pubSub)
	indexLogger := logger.NewIsolatedLogger("logs/index.log")
	indexService := service.NewIndexService(
		pubSub,
		indexTopic,
		publisherService,
		uowFactory,
		bot,
		natsPub,
		indexLogger,
		cfg.Bot.LogChannelID,
	)

	searchService := service.NewSearchService(
		uowFactory,
		sessionRepo,
		bot,
		sysLogger,
		cfg.Bot.PageSize,
		cfg.Bot.MinQueryLength,
	)

	downloadService := service.NewDownloadService(
		uowFactory,
		bot,
		natsPub,
		sysLogger,
		cfg.Tokens.PerFile,
		cfg.Bot.LogChannelID,
	)

	verificationService := service.NewVerificationService(
		uowFactory,
		verificationRepo,
		shortenerClient,
		bot,
		natsPub,
		sysLogger,
		cfg.App.BaseURL,
		cfg.Shortener.CallbackEndpoint,
		cfg.Tokens.VerificationTTL,
		cfg.Tokens.PerVerification,
	)

	statsService := service.NewStatsService(uowFactory, bot, natsPub, sysLogger)

	// 5. Event boundary + controllers
	updateHandler := handler.NewUpdateHandler(
		cfg,
		uowFactory,
		searchService,
		downloadService,
		verificationService,
		statsService,
		indexService,
		bot,
		sysLogger,
	)

	return &Container{
		VerificationController: controller.NewVerificationController(verificationService),
		UpdateHandler:          updateHandler,
		IndexService:           indexService,
		Logger:                 sysLogger,
	}
}
