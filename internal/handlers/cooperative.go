// internal/handlers/cooperative.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campolink/campolink-backend/internal/i18n"
	"github.com/campolink/campolink-backend/internal/models"
	"github.com/campolink/campolink-backend/internal/services"
	"github.com/campolink/campolink-backend/internal/utils"
)

type CooperativeHandler struct {
	cooperativeService *services.CooperativeService
}

func NewCooperativeHandler(cooperativeService *services.CooperativeService) *CooperativeHandler {
	return &CooperativeHandler{
		cooperativeService: cooperativeService,
	}
}

// GET /cooperatives
func (h *CooperativeHandler) SearchCooperatives(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.CooperativeSearchParams{
		PaginationParams: params,
		Region:           c.Query("region"),
	}

	if seekingStr := c.Query("seeking"); seekingStr != "" {
		seeking := seekingStr == "true"
		searchParams.Seeking = &seeking
	}

	// Status filter is admin-only; everyone else sees active cooperatives.
	if statusStr := c.Query("status"); statusStr != "" {
		if userType, _ := utils.GetUserTypeFromContext(c); userType == string(models.UserTypeAdmin) {
			status := models.CooperativeStatus(statusStr)
			searchParams.Status = &status
		}
	}

	coops, total, err := h.cooperativeService.SearchCooperatives(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(coops, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /cooperatives/:id
func (h *CooperativeHandler) GetCooperative(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid cooperative ID", nil)
		return
	}

	coop, err := h.cooperativeService.GetCooperative(id)
	if err != nil {
		if services.IsValidation(err) {
			utils.NotFoundResponse(c, "cooperative")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"cooperative": coop,
	})
}

// GET /cooperatives/:id/members
func (h *CooperativeHandler) GetMembers(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid cooperative ID", nil)
		return
	}

	members, err := h.cooperativeService.GetMembers(id)
	if err != nil {
		if services.IsValidation(err) {
			utils.NotFoundResponse(c, "cooperative")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"members": members,
	})
}

// PUT /cooperatives/:id
func (h *CooperativeHandler) UpdateCooperative(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid cooperative ID", nil)
		return
	}

	var req services.UpdateCooperativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	coop, err := h.cooperativeService.UpdateCooperative(id, actorID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyCooperativeUpdated),
		"cooperative": coop,
	})
}

// DELETE /cooperatives/:id
func (h *CooperativeHandler) DeactivateCooperative(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid cooperative ID", nil)
		return
	}

	if err := h.cooperativeService.DeactivateCooperative(id, actorID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCooperativeDeactivated),
	})
}
