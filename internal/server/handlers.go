package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gridspire/arena-server-go/internal/game"
)

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListCards returns the card templates, optionally filtered by tier. Pool
// copy multiplicity is collapsed so each template appears once.
func (h *Handler) ListCards(c *gin.Context) {
	tiers := []int{1, 2, 3, 4, 5}
	explicit := c.Query("tier") != ""
	if explicit {
		tier, err := strconv.Atoi(c.Query("tier"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tier must be a number"})
			return
		}
		tiers = []int{tier}
	}

	seen := make(map[string]bool)
	cards := make([]game.CardView, 0, 64)
	for _, tier := range tiers {
		pool, err := h.cards.CardsForTier(tier)
		if err != nil {
			if explicit {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			h.respondError(c, err)
			return
		}
		for _, card := range pool {
			if seen[card.ID] {
				continue
			}
			seen[card.ID] = true
			cards = append(cards, game.CardView{
				ID:      card.ID,
				Name:    card.Name,
				Attack:  card.Attack,
				Health:  card.Health,
				Ability: card.Ability,
				Tags:    card.Tags,
				Color:   string(card.Color),
				Tier:    card.Tier,
			})
		}
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards, "count": len(cards)})
}

// ListMatches returns the IDs of every live match.
func (h *Handler) ListMatches(c *gin.Context) {
	matches := h.engine.Matches()
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

type createMatchPayload struct {
	MatchID string   `json:"match_id"`
	Players []string `json:"players"`
}

// CreateMatch starts a match between two named players.
func (h *Handler) CreateMatch(c *gin.Context) {
	var req createMatchPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Players) != 2 || req.Players[0] == "" || req.Players[1] == "" || req.Players[0] == req.Players[1] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "players must be two distinct non-empty names"})
		return
	}
	if len(h.engine.Matches()) >= h.maxMatches {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "match capacity reached"})
		return
	}

	matchID := req.MatchID
	if matchID == "" {
		matchID = uuid.NewString()
	}

	if err := h.engine.StartMatch(matchID, req.Players); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"match_id": matchID, "players": req.Players})
}

// GetMatch returns the match snapshot from the requesting player's side.
func (h *Handler) GetMatch(c *gin.Context) {
	playerID := c.Query("player_id")
	if playerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id query parameter is required"})
		return
	}
	view, err := h.engine.GetMatchView(c.Param("id"), playerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// MatchChecksum reports the deterministic state fingerprint of a match.
// Comparing fingerprints across nodes or against a replay detects desyncs
// without shipping the state itself.
func (h *Handler) MatchChecksum(c *gin.Context) {
	sum, err := h.engine.StateChecksum(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

type playPayload struct {
	PlayerID string `json:"player_id"`
	PoolID   string `json:"pool_id"`
	Slot     *int   `json:"slot"`
}

// PlayCard places a hand card onto a battlefield slot.
func (h *Handler) PlayCard(c *gin.Context) {
	var req playPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.PlayerID == "" || req.PoolID == "" || req.Slot == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id, pool_id and slot are required"})
		return
	}
	result, err := h.engine.PlayCard(c.Param("id"), req.PlayerID, req.PoolID, *req.Slot)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type attackPayload struct {
	PlayerID     string `json:"player_id"`
	AttackerSlot *int   `json:"attacker_slot"`
}

// Attack resolves an attack from the given slot. Targeting follows the
// column and keyword rules; the caller never names a target.
func (h *Handler) Attack(c *gin.Context) {
	var req attackPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.PlayerID == "" || req.AttackerSlot == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id and attacker_slot are required"})
		return
	}
	outcome, err := h.engine.Attack(c.Param("id"), req.PlayerID, *req.AttackerSlot)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

type playerPayload struct {
	PlayerID string `json:"player_id"`
}

func (h *Handler) bindPlayer(c *gin.Context) (string, bool) {
	var req playerPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return "", false
	}
	if req.PlayerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id is required"})
		return "", false
	}
	return req.PlayerID, true
}

// EndTurn passes the turn to the opponent.
func (h *Handler) EndTurn(c *gin.Context) {
	playerID, ok := h.bindPlayer(c)
	if !ok {
		return
	}
	result, err := h.engine.EndTurn(c.Param("id"), playerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Concede forfeits the match for the requesting player.
func (h *Handler) Concede(c *gin.Context) {
	playerID, ok := h.bindPlayer(c)
	if !ok {
		return
	}
	if err := h.engine.PlayerConcede(c.Param("id"), playerID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "conceded"})
}

type draftPayload struct {
	PlayerID string `json:"player_id"`
	Tier     int    `json:"tier"`
}

// StartDraft opens a draft at the requested tier.
func (h *Handler) StartDraft(c *gin.Context) {
	var req draftPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.PlayerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id is required"})
		return
	}
	view, err := h.engine.StartDraft(c.Param("id"), req.PlayerID, req.Tier)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RerollDraft replaces the open draft options at the same tier.
func (h *Handler) RerollDraft(c *gin.Context) {
	var req draftPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.PlayerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id is required"})
		return
	}
	view, err := h.engine.RerollDraft(c.Param("id"), req.PlayerID, req.Tier)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type selectPayload struct {
	PlayerID string `json:"player_id"`
	PoolID   string `json:"pool_id"`
}

// SelectDraftCard takes one option from the open draft into hand.
func (h *Handler) SelectDraftCard(c *gin.Context) {
	var req selectPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.PlayerID == "" || req.PoolID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id and pool_id are required"})
		return
	}
	card, err := h.engine.SelectDraftCard(c.Param("id"), req.PlayerID, req.PoolID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// DrawFromDeck buys the top card of the player's own deck.
func (h *Handler) DrawFromDeck(c *gin.Context) {
	playerID, ok := h.bindPlayer(c)
	if !ok {
		return
	}
	card, err := h.engine.DrawFromDeck(c.Param("id"), playerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}
