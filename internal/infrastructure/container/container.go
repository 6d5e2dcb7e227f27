package container

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/quizduel/quizduel-backend/internal/config"
	deliveryhttp "github.com/quizduel/quizduel-backend/internal/delivery/http"
	"github.com/quizduel/quizduel-backend/internal/delivery/http/handler"
	"github.com/quizduel/quizduel-backend/internal/delivery/http/middleware"
	"github.com/quizduel/quizduel-backend/internal/infrastructure/database"
	"github.com/quizduel/quizduel-backend/internal/infrastructure/gemini"
	"github.com/quizduel/quizduel-backend/internal/infrastructure/server"
	"github.com/quizduel/quizduel-backend/internal/repository/postgres"
	"github.com/quizduel/quizduel-backend/internal/usecase/session"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Log      *slog.Logger
	DB       *sqlx.DB
	Redis    *redis.Client
	Gemini   *gemini.Client
	Sessions *session.Manager
	Server   *server.Server
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, log *slog.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	geminiClient, err := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}

	// The store is the only channel the two players coordinate through.
	matchStore := postgres.NewMatchStore(db, redisClient, log)

	sessions := session.NewManager(matchStore, geminiClient, log)

	matchHandler := handler.NewMatchHandler(sessions, matchStore, log)
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	router := deliveryhttp.NewRouter(matchHandler, authMiddleware)
	ginRouter := router.Setup()

	srv := server.NewServer(&cfg.Server, ginRouter, log)

	return &Container{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Redis:    redisClient,
		Gemini:   geminiClient,
		Sessions: sessions,
		Server:   srv,
	}, nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Gemini != nil {
		c.Gemini.Close()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warn("error closing redis", "error", err)
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
