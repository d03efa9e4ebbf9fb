package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-auth-service/config"
	"github.com/oksasatya/go-ddd-auth-service/internal/application"
	pginfra "github.com/oksasatya/go-ddd-auth-service/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-auth-service/pkg/helpers"
)

// seed registers a demo account through the normal sign-up path so the
// stored hash and email normalization match what the API produces.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLife,
		MaxConnIdleTime: cfg.DBMaxConnIdle,
	})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	hasher, err := helpers.NewPasswordHasher(helpers.PasswordCost)
	if err != nil {
		log.Fatalf("password hasher: %v", err)
	}
	users := pginfra.NewUserRepository(pool)
	tokens := helpers.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	auth := application.NewAuthService(users, hasher, tokens, nil, nil, cfg.AppName, logger)

	in := application.SignUpInput{
		Name:     envOr("SEED_NAME", "demoUser"),
		Email:    envOr("SEED_EMAIL", "demo@example.com"),
		Password: envOr("SEED_PASSWORD", "password123"),
	}
	err = auth.SignUp(ctx, in)
	switch {
	case errors.Is(err, application.ErrDuplicateUser):
		logger.WithField("email", in.Email).Info("seed user already exists")
	case err != nil:
		log.Fatalf("failed to seed user: %v", err)
	default:
		logger.WithField("email", in.Email).Info("seeded user")
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
