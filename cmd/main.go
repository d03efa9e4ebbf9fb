package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-ddd-auth-service/config"
	"github.com/oksasatya/go-ddd-auth-service/internal/application"
	"github.com/oksasatya/go-ddd-auth-service/internal/container"
	"github.com/oksasatya/go-ddd-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-ddd-auth-service/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-ddd-auth-service/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-auth-service/internal/infrastructure/queue"
	"github.com/oksasatya/go-ddd-auth-service/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-auth-service/internal/infrastructure/storage"
	"github.com/oksasatya/go-ddd-auth-service/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-auth-service/internal/router"
	"github.com/oksasatya/go-ddd-auth-service/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth-service/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	var cleanups []func()
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()

	users, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("user store: %v", err)
	}
	cleanups = append(cleanups, closeStore)

	// Redis backs the rate limiter only; without it limits are not enforced.
	var rateCounter middleware.Counter
	if cfg.RateLimitEnabled {
		rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable; rate limiting disabled")
			_ = rdb.Close()
		} else {
			cleanups = append(cleanups, func() { _ = rdb.Close() })
			rateCounter = middleware.NewRedisCounter(rdb)
		}
	}

	var index application.UserIndexer
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := search.NewClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; search disabled")
		} else {
			index = search.NewUserIndex(es, cfg.ESUsersIndex)
		}
	}

	var avatars application.AvatarStore
	if cfg.GCSBucket != "" {
		gcsClient, err := storage.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs unavailable; avatar upload disabled")
		} else {
			cleanups = append(cleanups, func() { _ = gcsClient.Close() })
			avatars = storage.NewAvatarStore(gcsClient, cfg.GCSBucket)
		}
	}

	var mail application.EmailQueue
	if cfg.MailSendEnabled && cfg.RabbitMQURL != "" {
		pub, err := queue.NewEmailPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; welcome emails disabled")
		} else {
			cleanups = append(cleanups, pub.Close)
			mail = pub
		}
	}

	hasher, err := helpers.NewPasswordHasher(helpers.PasswordCost)
	if err != nil {
		logger.Fatalf("password hasher: %v", err)
	}
	jwtManager := helpers.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)

	c := &container.Container{
		Config:      cfg,
		Logger:      logger,
		Users:       users,
		Tokens:      jwtManager,
		Auth:        application.NewAuthService(users, hasher, jwtManager, index, mail, cfg.AppName, logger),
		Profiles:    application.NewUserService(users, index, avatars, logger),
		RateCounter: rateCounter,
	}

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(cfg.TrustProxyHeaders))
	corsCfg := cors.Config{
		AllowOrigins:  cfg.CORSOrigins(),
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, c)
	reg.RegisterAll()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.StoreDriver}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	logger.Info("server exited properly")
}

// openStore builds the configured user store and returns its release func.
func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repository.UserRepository, func(), error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("using in-memory user store; data is lost on restart")
		return memory.NewUserRepository(), func() {}, nil
	}

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLife,
		MaxConnIdleTime: cfg.DBMaxConnIdle,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return pginfra.NewUserRepository(pool), pool.Close, nil
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
