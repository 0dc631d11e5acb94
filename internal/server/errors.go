package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gridspire/arena-server-go/internal/game"
)

// statusForCode maps rule rejection codes onto HTTP statuses: unknown
// matches 404, non-participants 403, malformed references 400, and
// everything the rules currently forbid 409.
func statusForCode(code string) int {
	switch code {
	case game.CodeMatchNotFound:
		return http.StatusNotFound
	case game.CodeUnknownPlayer:
		return http.StatusForbidden
	case game.CodeInvalidPlacement, game.CodeCardNotInHand, game.CodeInvalidSlot,
		game.CodeInvalidTier, game.CodeInvalidSelection:
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

// respondError translates an engine error into a JSON error response.
func (h *Handler) respondError(c *gin.Context, err error) {
	if re, ok := game.AsRuleError(err); ok {
		c.JSON(statusForCode(re.Code), gin.H{"error": re.Message, "code": re.Code})
		return
	}
	h.logger.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
