package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"placement/internal/app"
	"placement/internal/config"
	"placement/internal/database"
	"placement/internal/domain/analytics"
	"placement/internal/domain/auth"
	apphttp "placement/internal/http"
	"placement/internal/http/handlers"
	"placement/internal/http/metrics"
	httpmw "placement/internal/http/middleware"
	"placement/internal/http/response"
	"placement/internal/notify"
	"placement/internal/observability"
	"placement/internal/repository/postgres"
	"placement/internal/repository/redis"
	"placement/internal/security"
	"placement/internal/telemetry"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := database.NewPostgres(database.PostgresConfig{
		Driver:          cfg.DBDriver,
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	})
	defer db.Close()

	if cfg.AutoMigrate {
		applied, err := database.Migrate(ctx, db)
		if err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
		if len(applied) > 0 {
			logger.Info("migrations applied", zap.Strings("files", applied))
		}
	}

	var (
		limiter  httpmw.Limiter           = httpmw.NewRateLimiter()
		denylist auth.AccessTokenDenylist = redis.NewMemoryDenylist()
		notifier app.Notifier             = app.NopNotifier{}
	)
	if cfg.RedisURL != "" {
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient := goredis.NewClient(opts)
		defer redisClient.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Error("redis unavailable, falling back to in-memory limiter", zap.Error(err))
		} else {
			limiter = httpmw.NewRedisLimiter(redisClient, limiter)
			denylist = redis.NewTokenDenylist(redisClient)
		}
		cancel()

		if cfg.MailRelayURL != "" {
			queueOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
			if err != nil {
				log.Fatalf("invalid REDIS_URL for queue: %v", err)
			}
			queue := asynq.NewClient(queueOpt)
			defer queue.Close()
			notifier = notify.NewEnqueuer(queue)
		}
	}
	if _, ok := notifier.(app.NopNotifier); ok {
		logger.Info("mail notifications disabled")
	}

	analyticsRepo := analytics.Multi{postgres.NewAnalyticsRepository(db)}
	if cfg.PostHogAPIKey != "" {
		sink, err := telemetry.NewPostHog(cfg.PostHogAPIKey, cfg.PostHogEndpoint)
		if err != nil {
			logger.Error("posthog disabled", zap.Error(err))
		} else {
			defer sink.Close()
			analyticsRepo = append(analyticsRepo, sink)
		}
	}

	userRepo := postgres.NewUserRepository(db)
	studentRepo := postgres.NewStudentProfileRepository(db)
	refreshRepo := postgres.NewRefreshTokenRepository(db)
	jobRepo := postgres.NewJobRepository(db)
	applicationRepo := postgres.NewApplicationRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	interviewRepo := postgres.NewInterviewRepository(db)
	assessmentRepo := postgres.NewAssessmentRepository(db)
	submissionRepo := postgres.NewSubmissionRepository(db)
	eventRepo := postgres.NewEventRepository(db)

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)

	authService := app.NewAuthService(userRepo, studentRepo, refreshRepo, denylist, analyticsRepo, jwtProvider, notifier, logger, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	profileService := app.NewProfileService(userRepo, studentRepo, analyticsRepo)
	jobService := app.NewJobService(jobRepo, analyticsRepo, notifier, logger)
	applicationService := app.NewApplicationService(applicationRepo, jobRepo, studentRepo, analyticsRepo)
	messageService := app.NewMessageService(messageRepo, studentRepo, analyticsRepo, notifier, logger)
	interviewService := app.NewInterviewService(interviewRepo, jobRepo, applicationRepo, userRepo, analyticsRepo, notifier, logger)
	assessmentService := app.NewAssessmentService(assessmentRepo, submissionRepo, jobRepo, analyticsRepo)
	eventService := app.NewEventService(eventRepo, analyticsRepo)
	userService := app.NewUserService(userRepo, analyticsRepo)

	if cfg.AdminEmail != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Fatal("admin bootstrap failed", zap.Error(err))
		}
	}

	collector := metrics.NewCollector()
	response.SetErrorCollector(collector)

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		AuthHandler:        handlers.NewAuthHandler(authService, limiter),
		JobHandler:         handlers.NewJobHandler(jobService),
		ApplicationHandler: handlers.NewApplicationHandler(applicationService, limiter, collector),
		MessageHandler:     handlers.NewMessageHandler(messageService, limiter),
		InterviewHandler:   handlers.NewInterviewHandler(interviewService),
		AssessmentHandler:  handlers.NewAssessmentHandler(assessmentService),
		ProfileHandler:     handlers.NewProfileHandler(profileService),
		AdminHandler:       handlers.NewAdminHandler(authService, userService),
		EventHandler:       handlers.NewEventHandler(eventService),
		AuthMiddleware:     httpmw.NewAuthMiddleware(jwtProvider, denylist),
		Limiter:            limiter,
		Metrics:            collector,
		Logger:             logger,
		RequestTimeout:     cfg.RequestTimeout,
	})
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("API started", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("API stopped")
}
