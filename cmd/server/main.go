package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	apiecho "github.com/gatehouse-sso/gatehouse/api/echo"
	"github.com/gatehouse-sso/gatehouse/config"
	"github.com/gatehouse-sso/gatehouse/domain"
	"github.com/gatehouse-sso/gatehouse/internal/auth"
	"github.com/gatehouse-sso/gatehouse/internal/crypto"
	"github.com/gatehouse-sso/gatehouse/log"
	"github.com/gatehouse-sso/gatehouse/memory"
	"github.com/gatehouse-sso/gatehouse/mongodb"
	redisrepo "github.com/gatehouse-sso/gatehouse/redis"
	"github.com/gatehouse-sso/gatehouse/services"
	"github.com/gatehouse-sso/gatehouse/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
	}
	logger := log.NewZerologAdapter(logLevel, cfg.LogPretty)
	ctx := context.Background()
	logger.Info(ctx, "starting gatehouse server", log.Fields{
		"http_port": cfg.HTTPPort,
		"storage":   cfg.Storage,
		"issuer":    cfg.Issuer,
	})

	tp, err := tracing.InitTracerProvider(cfg.OtelServiceName)
	if err != nil {
		fatal(logger, ctx, "failed to initialize tracer provider", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	clock := domain.NewSystemClock()
	hasher := auth.NewBcryptPasswordHasher(0)

	keys, err := loadKeys(cfg)
	if err != nil {
		fatal(logger, ctx, "failed to load signing keys", err)
	}

	codes, sessions, users, clients, closeStores, err := buildRepositories(ctx, cfg, clock, hasher, logger)
	if err != nil {
		fatal(logger, ctx, "failed to initialize storage", err)
	}
	defer closeStores()

	jwtService := services.NewJWTService(keys, cfg.Issuer, cfg.Audience,
		time.Duration(cfg.AccessTokenTTLMin)*time.Minute, clock)
	pkceService := services.NewPKCEService()
	clientValidator := services.NewClientValidationService(clients, logger)
	authorizeService := services.NewAuthorizationService(clientValidator, codes, clock, logger, cfg.AuthCodeTTLMin)
	exchangeService := services.NewTokenExchangeService(codes, users, pkceService, jwtService, clock, logger)
	authService := services.NewAuthService(users, sessions, clock, logger)

	cleanup := services.NewCleanupWorker(codes, sessions,
		time.Duration(cfg.CleanupIntervalSec)*time.Second, logger)
	cleanup.Start(ctx)
	defer cleanup.Stop()

	e := echo.New()
	e.HideBanner = true
	api := apiecho.NewOAuth2API(authService, authorizeService, exchangeService,
		jwtService, cfg.Issuer, logger)
	api.RegisterRoutes(e)

	go func() {
		if err := e.Start(":" + cfg.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, ctx, "http server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "http shutdown failed", err)
	}
}

func fatal(logger log.Logger, ctx context.Context, msg string, err error) {
	logger.Error(ctx, msg, err)
	os.Exit(1)
}

func loadKeys(cfg *config.ServerConfig) (crypto.KeyLoader, error) {
	if cfg.SigningKeyFile != "" {
		return crypto.LoadKeyLoaderFromFile(cfg.SigningKeyFile, cfg.SigningKeyID)
	}
	return crypto.NewEphemeralKeyLoader()
}

// buildRepositories wires the storage backend selected in config. Users and
// clients stay in seeded memory stores for the redis backend; only codes
// and sessions need cross-process state there.
func buildRepositories(ctx context.Context, cfg *config.ServerConfig,
	clock domain.Clock, hasher auth.PasswordHasher, logger log.Logger,
) (domain.AuthCodeRepository, domain.SessionRepository,
	domain.UserRepository, domain.OAuthClientRepository, func(), error,
) {
	noop := func() {}
	switch cfg.Storage {
	case config.StorageMongo:
		db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, nil, nil, noop, err
		}
		codes, err := mongodb.NewAuthCodeRepository(ctx, db, clock)
		if err != nil {
			return nil, nil, nil, nil, noop, err
		}
		sessions, err := mongodb.NewSessionRepository(ctx, db, clock)
		if err != nil {
			return nil, nil, nil, nil, noop, err
		}
		users, err := mongodb.NewUserRepository(ctx, db, hasher)
		if err != nil {
			return nil, nil, nil, nil, noop, err
		}
		clients, err := mongodb.NewClientRepository(ctx, db)
		if err != nil {
			return nil, nil, nil, nil, noop, err
		}
		return codes, sessions, users, clients, noop, nil

	case config.StorageRedis:
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		codes := redisrepo.NewAuthCodeRepository(rdb, cfg.RedisPrefix, clock)
		sessions := redisrepo.NewSessionRepository(rdb, cfg.RedisPrefix, clock)
		users, clients := seedMemoryDirectory(ctx, clock, hasher, logger)
		return codes, sessions, users, clients, func() { _ = rdb.Close() }, nil

	default:
		codes := memory.NewAuthCodeStore(clock)
		sessions := memory.NewSessionStore(clock)
		users, clients := seedMemoryDirectory(ctx, clock, hasher, logger)
		return codes, sessions, users, clients, func() { _ = sessions.Close() }, nil
	}
}

// seedMemoryDirectory provisions the demo user and client for reference
// deployments without a real directory behind them.
func seedMemoryDirectory(ctx context.Context, clock domain.Clock,
	hasher auth.PasswordHasher, logger log.Logger,
) (*memory.UserStore, *memory.ClientStore) {
	users := memory.NewUserStore(hasher)
	clients := memory.NewClientStore()

	hash, err := hasher.Hash("demo-password")
	if err == nil {
		err = users.Add(domain.NewUser("demo-user", "demo@example.com", "demo",
			hash, nil, clock))
	}
	if err != nil {
		logger.Warn(ctx, "failed to seed demo user", log.Fields{"error": err.Error()})
	}

	if err := clients.Add(&domain.OAuthClient{
		ID:           "demo-client",
		ClientID:     "demo-client-0001",
		ClientName:   "Demo Client",
		RedirectURIs: []string{"http://localhost:3000/callback"},
		GrantTypes:   []string{domain.GrantTypeAuthorizationCode},
		IsPublic:     true,
		CreatedAt:    clock.Now(),
	}); err != nil {
		logger.Warn(ctx, "failed to seed demo client", log.Fields{"error": err.Error()})
	}

	return users, clients
}
