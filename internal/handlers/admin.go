// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campolink/campolink-backend/internal/i18n"
	"github.com/campolink/campolink-backend/internal/models"
	"github.com/campolink/campolink-backend/internal/services"
	"github.com/campolink/campolink-backend/internal/utils"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// GET /admin/dashboard
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /admin/requests
func (h *AdminHandler) GetRequestQueue(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.AdminRequestFilter{
		PaginationParams: params,
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.RequestStatus(statusStr)
		filter.Status = &status
	}
	if kindStr := c.Query("kind"); kindStr != "" {
		kind := models.RequestKind(kindStr)
		filter.Kind = &kind
	}
	if coopIDStr := c.Query("cooperative_id"); coopIDStr != "" {
		if coopID, err := uuid.Parse(coopIDStr); err == nil {
			filter.CooperativeID = &coopID
		}
	}

	requests, total, err := h.adminService.GetRequestQueue(filter)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(requests, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /admin/users
func (h *AdminHandler) GetUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var userType *models.UserType
	if typeStr := c.Query("user_type"); typeStr != "" {
		t := models.UserType(typeStr)
		userType = &t
	}

	var status *models.UserStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := models.UserStatus(statusStr)
		status = &s
	}

	users, total, err := h.adminService.GetUsers(params, userType, status)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(users, total, params)
	utils.PaginatedResponse(c, result)
}

// PUT /admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req struct {
		Status models.UserStatus `json:"status" validate:"required,oneof=active suspended banned"`
		Reason string            `json:"reason,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.adminService.UpdateUserStatus(userID, adminID, req.Status, req.Reason); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAdminActionSuccess),
	})
}

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	action := c.Query("action")

	logs, total, err := h.adminService.GetAuditLogs(params, action)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(logs, total, params)
	utils.PaginatedResponse(c, result)
}
