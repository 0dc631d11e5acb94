// Package server exposes the rules engine over an HTTP API and a websocket
// event stream.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gridspire/arena-server-go/internal/game"
	"github.com/gridspire/arena-server-go/internal/repository"
)

// Handler groups the HTTP handlers and their dependencies.
type Handler struct {
	engine     *game.Engine
	cards      game.CardSource
	hub        *Hub
	logger     *zap.Logger
	maxMatches int
	adminHash  string

	// db and repo are nil when the server runs on the embedded catalog.
	db   *repository.DB
	repo *repository.CardRepository
}

// Options carries the optional dependencies and limits for a Handler.
type Options struct {
	MaxMatches int
	AdminHash  string
	DB         *repository.DB
	Repo       *repository.CardRepository
}

// NewHandler wires the handler set over an engine and its card source.
func NewHandler(engine *game.Engine, cards game.CardSource, hub *Hub, logger *zap.Logger, opts Options) *Handler {
	if opts.MaxMatches < 1 {
		opts.MaxMatches = 1024
	}
	return &Handler{
		engine:     engine,
		cards:      cards,
		hub:        hub,
		logger:     logger,
		maxMatches: opts.MaxMatches,
		adminHash:  opts.AdminHash,
		db:         opts.DB,
		repo:       opts.Repo,
	}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	router := gin.Default()

	router.GET("/healthz", h.Health)
	router.GET("/ws", h.ServeWS)

	api := router.Group("/api/v1")
	{
		api.GET("/cards", h.ListCards)
		api.GET("/matches", h.ListMatches)
		api.POST("/matches", h.CreateMatch)
		api.GET("/matches/:id", h.GetMatch)
		api.GET("/matches/:id/checksum", h.MatchChecksum)

		api.POST("/matches/:id/play", h.PlayCard)
		api.POST("/matches/:id/attack", h.Attack)
		api.POST("/matches/:id/end-turn", h.EndTurn)
		api.POST("/matches/:id/concede", h.Concede)

		api.POST("/matches/:id/draft", h.StartDraft)
		api.POST("/matches/:id/draft/reroll", h.RerollDraft)
		api.POST("/matches/:id/draft/select", h.SelectDraftCard)
		api.POST("/matches/:id/draw", h.DrawFromDeck)

		admin := api.Group("/admin")
		admin.Use(h.adminRequired())
		admin.GET("/stats", h.AdminStats)
		admin.POST("/cards/reload", h.ReloadCards)
	}

	return router
}
