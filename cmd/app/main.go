package main

import (
	"context"
	"fmt"
	"log"

	"learnpath/config"
	"learnpath/internal/application/usecase"
	"learnpath/internal/domain"
	"learnpath/internal/infrastructure/cache"
	"learnpath/internal/infrastructure/repository"
	"learnpath/internal/infrastructure/security"
	"learnpath/internal/middleware"
	"learnpath/internal/seed"
	handlers "learnpath/internal/transport/http"
	"learnpath/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Logger init failed: %v", err)
	}
	defer lg.Sync()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		lg.Fatal("DB connect failed", "error", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Path{},
		&domain.Module{},
		&domain.PathModule{},
		&domain.UserPathAssignment{},
		&domain.UserModuleCompletion{},
	); err != nil {
		lg.Fatal("DB migrate failed", "error", err)
	}

	catalogRepo := repository.NewCatalogRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	userRepo := repository.NewUserRepository(db)

	if cfg.SeedOnStart {
		if err := seed.Run(context.Background(), catalogRepo, lg); err != nil {
			lg.Fatal("Seeding failed", "error", err)
		}
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		lg.Fatal("Redis connect failed", "addr", cfg.RedisAddr, "error", err)
	}
	lg.Info("connected to Redis", "addr", cfg.RedisAddr)

	tokenCache := cache.NewTokenCache(rdb)
	hasher := security.NewPasswordHasher()
	tokenManager := security.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret)
	rateLimiter := middleware.NewRateLimiter(rdb)

	authUC := usecase.NewAuthUseCase(userRepo, catalogRepo, progressRepo, tokenCache, hasher, tokenManager, lg)
	progressUC := usecase.NewProgressUseCase(catalogRepo, progressRepo, lg)

	authHandler := handlers.NewAuthHandler(authUC)
	progressHandler := handlers.NewProgressHandler(progressUC)

	router := handlers.NewRouter(lg, authHandler, progressHandler, rateLimiter, authUC, cfg.AllowedOrigins)

	lg.Info("server starting", "port", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		lg.Fatal("Failed to run server", "error", err)
	}
}
