package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Princeaman007/agence/internal/config"
	"github.com/Princeaman007/agence/internal/jobs/cleanup"
	pgrepo "github.com/Princeaman007/agence/internal/repo/postgres"
	redrepo "github.com/Princeaman007/agence/internal/repo/redis"
	authsvc "github.com/Princeaman007/agence/internal/services/auth"
	compatsvc "github.com/Princeaman007/agence/internal/services/compat"
	messagingsvc "github.com/Princeaman007/agence/internal/services/messaging"
	quotasvc "github.com/Princeaman007/agence/internal/services/quota"
	userssvc "github.com/Princeaman007/agence/internal/services/users"
	"github.com/Princeaman007/agence/internal/transport/ws"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	cleanupJob *cleanup.Job
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	var redisClient *goredis.Client
	if c, err := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Warn("redis init failed, continuing in degraded mode", zap.Error(err))
	} else {
		redisClient = c
	}

	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)
	userRepo := pgrepo.NewUserRepo(pool)
	blockRepo := pgrepo.NewBlockRepo(pool)
	answerSetRepo := pgrepo.NewAnswerSetRepo(pool)
	conversationRepo := pgrepo.NewConversationRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	quotaRepo := pgrepo.NewQuotaRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, userRepo, rateRepo,
		cfg.Auth.RefreshTTL, cfg.Auth.LoginMaxPer10Min, cfg.Limits.DefaultTimezone)

	quotaService := quotasvc.NewService(quotaRepo, quotasvc.Config{
		FreeMessagesPerDay:     cfg.Limits.FreeMessagesPerDay,
		FreeProfileViewsPerDay: cfg.Limits.FreeProfileViewsPerDay,
		DefaultTimezone:        cfg.Limits.DefaultTimezone,
	})
	userService := userssvc.NewService(userRepo, blockRepo, quotaService)
	compatService := compatsvc.NewService(answerSetRepo, userRepo, compatsvc.Config{
		DefaultMinScore: cfg.Matching.DefaultMinScore,
		DefaultPageSize: cfg.Matching.DefaultPageSize,
		MaxPageSize:     cfg.Matching.MaxPageSize,
	})
	messagingService := messagingsvc.NewService(pool, conversationRepo, messageRepo,
		quotaRepo, userRepo, blockRepo, quotaService, messagingsvc.Config{
			FreeMessagesPerDay: cfg.Limits.FreeMessagesPerDay,
			MessageMaxLength:   cfg.Limits.MessageMaxLength,
			DefaultTimezone:    cfg.Limits.DefaultTimezone,
		})

	hub := ws.NewHub(userService, conversationRepo, log)
	hub.AttachReadMarker(messagingService)
	messagingService.AttachNotifier(ws.NewHubNotifier(hub, log))

	cleanupJob := cleanup.New(quotaRepo, cfg.Cleanup.QuotaRetention, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:      authService,
		UserService:      userService,
		CompatService:    compatService,
		MessagingService: messagingService,
		Hub:              hub,
		Logger:           log,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		cleanupJob: cleanupJob,
		httpRouter: r,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	go a.cleanupJob.RunPeriodically(ctx, a.cfg.Cleanup.Interval)

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
