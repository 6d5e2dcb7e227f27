package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizduel/quizduel-backend/internal/delivery/http/handler"
	"github.com/quizduel/quizduel-backend/internal/delivery/http/middleware"
)

// Router wires handlers into the gin engine
type Router struct {
	matchHandler   *handler.MatchHandler
	authMiddleware *middleware.AuthMiddleware
}

func NewRouter(matchHandler *handler.MatchHandler, authMiddleware *middleware.AuthMiddleware) *Router {
	return &Router{
		matchHandler:   matchHandler,
		authMiddleware: authMiddleware,
	}
}

// Setup configures all routes
func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(r.authMiddleware.Handle())
	{
		matches := api.Group("/matches")
		{
			matches.POST("/search", r.matchHandler.Search)
			matches.GET("/:id", r.matchHandler.State)
			matches.POST("/:id/answers", r.matchHandler.Answer)
			matches.GET("/:id/watch", r.matchHandler.Watch)
			matches.DELETE("/:id", r.matchHandler.End)
		}
	}

	return router
}
