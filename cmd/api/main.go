package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-booking/internal/api/router"
	"github.com/wolfman30/clinic-booking/internal/appointments"
	"github.com/wolfman30/clinic-booking/internal/auth"
	"github.com/wolfman30/clinic-booking/internal/chatbot"
	appconfig "github.com/wolfman30/clinic-booking/internal/config"
	"github.com/wolfman30/clinic-booking/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking/internal/users"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

func main() {
	if err := appconfig.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"session_backend", cfg.SessionBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise API", "error", err)
		os.Exit(1)
	}
	defer app.close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// app is the wired API plus the connections it must release on exit.
type app struct {
	handler http.Handler
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func build(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*app, error) {
	a := &app{}
	checks := map[string]router.HealthCheck{}

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}

	loc := cfg.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	var userRepo users.Repository = users.NewInMemoryRepository()
	var apptRepo appointments.Repository = appointments.NewInMemoryRepository()
	if pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger); pool != nil {
		a.closers = append(a.closers, pool.Close)
		checks["database"] = pool.Ping
		userRepo = users.NewPostgresRepository(pool)
		apptRepo = appointments.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set; accounts and appointments are kept in memory")
	}

	sessions, err := setupSessionStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if rs, ok := sessions.(*chatbot.RedisSessionStore); ok {
		a.closers = append(a.closers, func() { _ = rs.Close() })
		checks["redis"] = rs.Ping
	}

	reg, metricsHandler := setupMetrics()
	chatMetrics := metrics.NewChatbotMetrics(reg)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	userSvc := users.NewService(userRepo, tokens, logger)
	if cfg.SeedDefaultUsers {
		created, err := userSvc.SeedDefaults(ctx, users.DefaultAccounts)
		if err != nil {
			return nil, fmt.Errorf("seed default users: %w", err)
		}
		if created > 0 {
			logger.Info("seeded default staff accounts", "count", created)
		}
	}

	apptSvc := appointments.NewService(apptRepo, logger).WithClock(clock)
	engine := chatbot.NewEngine(sessions, chatbot.NewAppointmentCommitter(apptSvc), logger,
		chatbot.WithClock(clock),
		chatbot.WithMetrics(chatMetrics),
	)

	a.handler = router.New(&router.Config{
		Logger:              logger,
		UsersHandler:        users.NewHandler(userSvc, logger),
		AppointmentsHandler: appointments.NewHandler(apptSvc, logger),
		ChatHandler:         chatbot.NewHandler(engine, cfg.CORSAllowedOrigins, logger, chatMetrics),
		Verifier:            tokens,
		MetricsHandler:      metricsHandler,
		HTTPMetrics:         httpMetrics,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitRPS:        cfg.RateLimitRPS,
		RateLimitBurst:      cfg.RateLimitBurst,
		HealthChecks:        checks,
	})
	return a, nil
}

// setupMetrics returns a private registry with the Go runtime collectors
// and the handler that serves it.
func setupMetrics() (*prometheus.Registry, http.Handler) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// connectPostgresPool returns nil when url is empty or the database cannot be reached.
func connectPostgresPool(ctx context.Context, url string, logger *logging.Logger) *pgxpool.Pool {
	if url == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("failed to reach postgres", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

func setupSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (chatbot.SessionStore, error) {
	switch cfg.SessionBackend {
	case "", appconfig.SessionBackendMemory:
		return chatbot.NewMemorySessionStore(chatbot.WithMemoryLockWait(cfg.SessionLockTimeout)), nil
	case appconfig.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis session store: %w", err)
		}
		logger.Info("chat sessions stored in redis", "addr", cfg.RedisAddr)
		return chatbot.NewRedisSessionStore(client,
			chatbot.WithSessionTTL(cfg.SessionTTL),
			chatbot.WithLockWait(cfg.SessionLockTimeout),
		), nil
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
}
