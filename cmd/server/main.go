package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/adapter/ai/openai"
	"github.com/seu-repo/vox-assistant/internal/adapter/cache"
	"github.com/seu-repo/vox-assistant/internal/adapter/external/google"
	"github.com/seu-repo/vox-assistant/internal/adapter/external/weather"
	"github.com/seu-repo/vox-assistant/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/vox-assistant/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/vox-assistant/internal/adapter/queue"
	"github.com/seu-repo/vox-assistant/internal/adapter/storage/postgres"
	"github.com/seu-repo/vox-assistant/internal/adapter/vault"
	wsAdapter "github.com/seu-repo/vox-assistant/internal/adapter/websocket"
	"github.com/seu-repo/vox-assistant/internal/domain"
	"github.com/seu-repo/vox-assistant/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/vox-assistant/internal/observability/telemetry"
	"github.com/seu-repo/vox-assistant/internal/ports"
	"github.com/seu-repo/vox-assistant/internal/service/actions"
	"github.com/seu-repo/vox-assistant/internal/service/auth"
	"github.com/seu-repo/vox-assistant/internal/service/health"
	"github.com/seu-repo/vox-assistant/internal/service/intent"
	"github.com/seu-repo/vox-assistant/internal/service/timeparse"
	"github.com/seu-repo/vox-assistant/internal/service/voice"
	"github.com/seu-repo/vox-assistant/pkg/config"
)

const (
	serviceName    = "vox-assistant"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// 2. Initialize Logger
	logger, err := telemetry.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	logger.Info("Starting Vox Assistant",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Pull secrets from Vault
	if cfg.Vault.Enabled {
		secrets, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token, cfg.Vault.Mount, logger)
		if err != nil {
			logger.Fatal("Failed to create Vault client", zap.Error(err))
		}
		values, err := secrets.Secrets(context.Background(), cfg.Vault.Path)
		if err != nil {
			logger.Fatal("Failed to read secrets from Vault", zap.Error(err))
		}
		cfg.ApplySecrets(values)
		logger.Info("Secrets loaded from Vault", zap.Int("count", len(values)))
	}

	// 4. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(cfg.OpenTelemetry.ServiceName, cfg.OpenTelemetry.Jaeger.Endpoint, cfg.OpenTelemetry.Jaeger.SamplerParam)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 5. Initialize Database
	db, err := postgres.NewConnection(postgres.Options{
		Driver:       cfg.Database.Driver,
		URL:          cfg.Database.URL,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		LogLevel:     cfg.Database.LogLevel,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer postgres.Close(db)

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// 6. Cache and Message Queue (both degrade to in-process implementations)
	appCache := cache.New(cfg.Redis.URL, cfg.Redis.KeyPrefix, logger)
	defer appCache.Close()

	messageQueue := queue.New(cfg.Queue.Driver, cfg.Queue.URL, logger)
	defer messageQueue.Close()

	// 7. Repositories
	actionRepo := postgres.NewActionRepository(db, logger)
	taskRepo := postgres.NewTaskRepository(db, logger)
	noteRepo := postgres.NewNoteRepository(db, logger)
	profileRepo := postgres.NewProfileRepository(db, logger)
	sessionRepo := postgres.NewSessionRepository(db, logger)
	integrationRepo := postgres.NewIntegrationRepository(db, logger)

	// 8. External integrations behind circuit breakers
	breakers := circuitbreaker.NewManager(circuitbreaker.Settings{
		MaxRequests:      cfg.CircuitBreaker.MaxRequests,
		Interval:         cfg.CircuitBreaker.Interval,
		Timeout:          cfg.CircuitBreaker.Timeout,
		FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
	}, logger)
	httpClient := &http.Client{Timeout: cfg.Assistant.CallTimeout}

	tokens := google.NewTokenProvider(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.TokenURL, integrationRepo, httpClient, logger)
	calendarClient := google.NewCalendarClient(cfg.Google.CalendarURL,
		circuitbreaker.NewHTTPClient("Google Calendar", httpClient, breakers, logger), logger)
	gmailClient := google.NewGmailClient(cfg.Google.GmailURL,
		circuitbreaker.NewHTTPClient("Gmail", httpClient, breakers, logger), logger)
	weatherClient := weather.NewClient(cfg.Weather.APIKey, cfg.Weather.BaseURL,
		circuitbreaker.NewHTTPClient("OpenWeatherMap", httpClient, breakers, logger), logger)

	chatModel, err := openai.NewChatModel(cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel, cfg.OpenAI.BaseURL)
	if err != nil {
		logger.Fatal("Failed to initialize language model", zap.Error(err))
	}
	extractor := openai.NewIntentExtractor(chatModel, logger)
	speech := openai.NewSpeechSynthesizer(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.SpeechModel, cfg.OpenAI.Voice,
		circuitbreaker.NewHTTPClient("OpenAI Speech", httpClient, breakers, logger), logger)

	// 9. Services (Business Logic Layer)
	actionService := actions.NewService(actions.Dependencies{
		Tasks:    taskRepo,
		Notes:    noteRepo,
		Profiles: profileRepo,
		Actions:  actionRepo,
		Tokens:   tokens,
		Calendar: calendarClient,
		Mail:     gmailClient,
		Weather:  weatherClient,
		Times:    timeparse.New(),
		Cache:    appCache,
	}, actions.Options{
		WeatherDailyLimit: cfg.Weather.DailyLimit,
		DefaultLocation:   cfg.Weather.DefaultLocation,
		WeatherCacheTTL:   cfg.Weather.CacheTTL,
		CallTimeout:       cfg.Assistant.CallTimeout,
		Location:          cfg.Location(),
	}, logger)

	dispatcher := intent.NewDispatcher(actionService, logger)
	executor := intent.NewExecutor(dispatcher, actionRepo, sessionRepo, messageQueue, logger)
	orchestrator := intent.NewOrchestrator(executor, logger)
	voiceAssistant := voice.NewVoiceAssistant(extractor, executor, orchestrator, actionRepo, sessionRepo, appCache, speech, voice.Config{
		ConfirmationTTL: cfg.Assistant.ConfirmationTTL,
		HistoryLimit:    cfg.Assistant.HistoryLimit,
	}, logger)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenDuration, appCache, logger)

	healthService := health.NewService(&health.Config{
		Version:  serviceVersion,
		DB:       func(ctx context.Context) error { return postgres.Ping(db) },
		Cache:    appCache,
		Breakers: breakers,
	}, logger)

	// 10. Voice streaming hub and background consumers
	rootCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	wsHub := wsAdapter.NewHub(logger)
	go wsHub.Run(rootCtx)
	voiceStreamHandler := wsAdapter.NewVoiceStreamHandler(voiceAssistant, wsHub, logger)

	if err := subscribeActionEvents(messageQueue, voiceStreamHandler, logger); err != nil {
		logger.Warn("Failed to subscribe to action events", zap.Error(err))
	}

	// 11. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		BodyLimit:             cfg.HTTP.BodyLimit,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	}

	health.NewFiberHandler(healthService).RegisterRoutes(app)

	if cfg.Prometheus.Enabled {
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			metricsHandler(c.Context())
			return nil
		})
	}

	authRequired := middleware.AuthRequired(jwtService)
	wsAdapter.SetupVoiceRoutes(app, authRequired, voiceStreamHandler)

	// API v1 Routes (all protected)
	v1 := app.Group("/api/v1", authRequired)

	intentHandler := handlers.NewIntentHandler(executor, orchestrator, logger)
	v1.Post("/intents/execute", intentHandler.Execute)
	v1.Post("/intents/execute-batch", intentHandler.ExecuteBatch)
	v1.Post("/intents/confirmation", intentHandler.Confirmation)

	voiceHandler := handlers.NewVoiceHandler(voiceAssistant, logger)
	v1.Post("/voice/command", voiceHandler.ProcessCommand)
	v1.Post("/voice/confirm", voiceHandler.Confirm)
	v1.Get("/voice/history", voiceHandler.GetHistory)

	// 12. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 13. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	stopHub()

	logger.Info("Server exited gracefully")
}

// subscribeActionEvents logs every terminal action published by the executor
// and pushes it to the user's open voice streams.
func subscribeActionEvents(mq ports.MessageQueue, streams *wsAdapter.VoiceStreamHandler, logger *zap.Logger) error {
	return mq.Subscribe(ports.SubjectActionsCompleted, func(msg []byte) error {
		var event domain.ActionEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			return fmt.Errorf("decode action event: %w", err)
		}
		logger.Info("Action finished",
			zap.String("action_id", event.ActionID),
			zap.String("user_id", event.UserID),
			zap.String("intent", event.Intent.String()),
			zap.String("status", string(event.Status)),
		)
		streams.PublishAction(event)
		return nil
	})
}
