// internal/handlers/matching.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campolink/campolink-backend/internal/services"
	"github.com/campolink/campolink-backend/internal/utils"
)

type MatchingHandler struct {
	matchingService *services.MatchingService
}

func NewMatchingHandler(matchingService *services.MatchingService) *MatchingHandler {
	return &MatchingHandler{
		matchingService: matchingService,
	}
}

// GET /matching/recommendations
func (h *MatchingHandler) GetRecommendations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 0 || limit > 100 {
		limit = 20
	}

	matches, err := h.matchingService.RecommendCooperatives(userID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"matches": matches,
	})
}

// GET /matching/score/:cooperativeId
func (h *MatchingHandler) GetScore(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cooperativeID, err := uuid.Parse(c.Param("cooperativeId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid cooperative ID", nil)
		return
	}

	score, err := h.matchingService.ScoreAgainst(userID, cooperativeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"cooperative_id": cooperativeID,
		"score":          score,
	})
}
