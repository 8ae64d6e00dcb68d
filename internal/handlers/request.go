// internal/handlers/request.go
package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campolink/campolink-backend/internal/i18n"
	"github.com/campolink/campolink-backend/internal/services"
	"github.com/campolink/campolink-backend/internal/utils"
)

type RequestHandler struct {
	requestService *services.RequestService
}

func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
	}
}

// POST /requests/create-cooperative
func (h *RequestHandler) SubmitCreate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	requesterID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.SubmitCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.requestService.SubmitCreate(requesterID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestSubmitted),
		"request": request,
	})
}

// POST /requests/join-cooperative
func (h *RequestHandler) SubmitJoin(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	requesterID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.SubmitJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.requestService.SubmitJoin(requesterID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestSubmitted),
		"request": request,
	})
}

// GET /requests/mine
func (h *RequestHandler) ListMine(c *gin.Context) {
	requesterID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := h.requestService.ListByRequester(requesterID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"requests": requests,
	})
}

// GET /requests/:id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID", nil)
		return
	}

	request, err := h.requestService.GetRequest(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Requesters see their own requests; anyone allowed to resolve a
	// request may also read it.
	if request.RequesterID != userID && !h.requestService.CanReview(request, userID) {
		utils.ForbiddenResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"request": request,
	})
}

// PUT /requests/:id/review
func (h *RequestHandler) MarkInReview(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID", nil)
		return
	}

	request, err := h.requestService.MarkInReview(id, reviewerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestInReview),
		"request": request,
	})
}

// PUT /requests/:id/approve
func (h *RequestHandler) Approve(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID", nil)
		return
	}

	// Notes are optional, so a bare approve with no body is fine.
	var req services.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	result, err := h.requestService.Approve(id, reviewerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyRequestApproved),
		"request":     result.Request,
		"cooperative": result.Cooperative,
		"membership":  result.Membership,
	})
}

// PUT /requests/:id/reject
func (h *RequestHandler) Reject(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID", nil)
		return
	}

	var req services.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.requestService.Reject(id, reviewerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRequestRejected),
		"request": request,
	})
}
