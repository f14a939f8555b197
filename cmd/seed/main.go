package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/oksasatya/user-directory/config"
	appuser "github.com/oksasatya/user-directory/internal/application"
	pginfra "github.com/oksasatya/user-directory/internal/infrastructure/postgres"
	"github.com/oksasatya/user-directory/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 0, cfg.DBMaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	svc := appuser.NewService(users, helpers.NewBcryptHasher(cfg.BcryptCost), logger)
	svc.Audit = pginfra.NewAuditRepository(pool)

	if err := seed(ctx, svc, users, cfg, os.Stdout); err != nil {
		logger.WithError(err).Error("failed to seed user")
		os.Exit(1)
	}
}
