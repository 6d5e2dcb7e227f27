package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/quizduel/quizduel-backend/internal/delivery/http/middleware"
	"github.com/quizduel/quizduel-backend/internal/domain"
	"github.com/quizduel/quizduel-backend/internal/repository"
	"github.com/quizduel/quizduel-backend/internal/usecase/session"
)

// MatchHandler exposes the per-player session over HTTP plus a raw
// snapshot feed over WebSocket.
type MatchHandler struct {
	sessions *session.Manager
	store    repository.MatchStore
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewMatchHandler(sessions *session.Manager, store repository.MatchStore, log *slog.Logger) *MatchHandler {
	return &MatchHandler{
		sessions: sessions,
		store:    store,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Search starts matchmaking for the authenticated player.
// POST /api/v1/matches/search
func (h *MatchHandler) Search(c *gin.Context) {
	playerID := middleware.Identity(c)

	s, err := h.sessions.StartSearch(c.Request.Context(), playerID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "a game is already in progress"})
			return
		}
		var coordErr *domain.CoordinationError
		if errors.As(err, &coordErr) {
			h.log.Error("matchmaking failed", "player_id", playerID, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "matchmaking is unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start search"})
		return
	}

	c.JSON(http.StatusAccepted, s.View())
}

// State returns the player's current view of the match.
// GET /api/v1/matches/:id
func (h *MatchHandler) State(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.View())
}

type answerRequest struct {
	Option string `json:"option" binding:"required"`
}

// Answer submits the chosen option for the current question.
// POST /api/v1/matches/:id/answers
func (h *MatchHandler) Answer(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "option is required"})
		return
	}

	correct, err := s.SubmitAnswer(c.Request.Context(), req.Option)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotInQuiz), errors.Is(err, domain.ErrNoQuestion):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			// The write failed; the local pointer will still advance if
			// any later snapshot reflects the attempt. Reported, not
			// rolled back.
			c.JSON(http.StatusBadGateway, gin.H{"error": "answer could not be recorded"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"correct": correct, "session": s.View()})
}

// End cancels the player's observation of the match.
// DELETE /api/v1/matches/:id
func (h *MatchHandler) End(c *gin.Context) {
	playerID := middleware.Identity(c)
	if err := h.sessions.End(playerID, c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such game"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Watch streams raw match snapshots over a WebSocket until the client
// goes away or the subscribing context ends.
// GET /api/v1/matches/:id/watch
func (h *MatchHandler) Watch(c *gin.Context) {
	playerID := middleware.Identity(c)
	matchID := c.Param("id")

	match, err := h.store.GetByID(c.Request.Context(), matchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such match"})
		return
	}
	if !match.HasPlayer(playerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	sub, err := h.store.Subscribe(c.Request.Context(), matchID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "subscription unavailable"})
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "match_id", matchID, "error", err)
		return
	}
	defer conn.Close()

	// Reads are discarded; their only purpose is detecting disconnects.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case snap, ok := <-sub.C:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		}
	}
}

func (h *MatchHandler) session(c *gin.Context) (*session.Session, bool) {
	playerID := middleware.Identity(c)
	s, err := h.sessions.Get(playerID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such game"})
		return nil, false
	}
	return s, true
}
