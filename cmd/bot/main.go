package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"vipgate/internal/api"
	"vipgate/internal/bot"
	"vipgate/internal/config"
	"vipgate/internal/database"
	"vipgate/internal/events"
	"vipgate/internal/logging"
	"vipgate/internal/metrics"
	"vipgate/internal/models"
	"vipgate/internal/repository"
	"vipgate/internal/service"
	"vipgate/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, stateService := initStateService(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
	}

	botAPI, err := initBotAPI(cfg, &logger)
	if err != nil {
		return err
	}

	tgService := service.NewTelegramService(bot.NewBotWrapper(botAPI))
	botUsername := botAPI.Self.UserName

	eventBus := events.NewEventBus()

	// Инициализация бизнес-сервисов
	configService := service.NewConfigService(db, &logger)
	notifier := service.NewNotificationService(tgService, cfg.Admins, &logger)
	subscriptionService := service.NewSubscriptionService(db, tgService, configService, notifier, eventBus, botUsername, &logger)
	channelService := service.NewChannelService(db, tgService, configService, notifier, eventBus, &logger)
	gamificationService := service.NewGamificationService(db, tgService, notifier, eventBus, botUsername, &logger)

	subscribeReactionEvents(eventBus, gamificationService, &logger)

	retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
	reconciler := worker.NewReconciler(db, channelService, tgService, configService, notifier, eventBus, retryPolicy, &logger)
	go reconciler.Start(ctx)

	if cfg.API.Enabled {
		apiServer := api.NewHTTPServer(cfg.API, channelService, subscriptionService, &logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
		defer func() {
			_ = apiServer.Shutdown(context.Background())
		}()
	}

	return startBot(ctx, cfg, tgService, stateService, eventBus, configService,
		subscriptionService, channelService, gamificationService, db, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("Ошибка инициализации базы данных")
		return nil, err
	}
	return db, nil
}

func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.StateService) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	primaryRepo := repository.NewRedisStateRepository(redisClient, time.Duration(models.DefaultRedisTTL)*time.Second)
	fallbackRepo := repository.NewMemoryStateRepository(time.Duration(models.DefaultRedisTTL) * time.Second)
	stateRepo := repository.NewFailoverStateRepository(primaryRepo, fallbackRepo, logger)
	return redisClient, service.NewStateService(stateRepo, logger)
}

func initBotAPI(cfg *config.Config, logger *zerolog.Logger) (*tgbotapi.BotAPI, error) {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		logger.Error().Msg("Задайте токен бота в config.yaml")
		return nil, os.ErrInvalid
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return nil, err
	}
	botAPI.Debug = cfg.Telegram.Debug
	return botAPI, nil
}

func subscribeReactionEvents(bus *events.EventBus, gamification *service.GamificationService, logger *zerolog.Logger) {
	if bus == nil || gamification == nil {
		return
	}

	bus.Subscribe(events.EventChannelReaction, func(ev *events.Event) error {
		if err := gamification.HandleReactionEvent(ev); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: reaction")
		}
		return nil
	})
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	tgService *service.TelegramService,
	stateService *service.StateService,
	eventBus *events.EventBus,
	configService *service.ConfigService,
	subscriptions *service.SubscriptionService,
	channels *service.ChannelService,
	gamification *service.GamificationService,
	db *database.DB,
	logger *zerolog.Logger,
) error {
	telegramBot, err := bot.NewBot(
		tgService, cfg, stateService, eventBus, configService,
		subscriptions, channels, gamification, db,
		bot.NewMetrics(), logger,
	)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	logger.Info().Msg("Бот запущен...")
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}
