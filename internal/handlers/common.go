// internal/handlers/common.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campolink/campolink-backend/internal/repository"
	"github.com/campolink/campolink-backend/internal/services"
	"github.com/campolink/campolink-backend/internal/utils"
)

// currentUserID pulls the authenticated user out of the gin context. It
// writes the error response itself so handlers can bail with a bare return.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}
	return userID, true
}

// respondServiceError maps the workflow error taxonomy onto HTTP statuses:
// validation 400, state conflict 409, missing record 404, persistence 500.
func respondServiceError(c *gin.Context, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		utils.ErrorResponse(c, 400, "VALIDATION_ERROR", ve.Message, gin.H{"field": ve.Field})
		return
	}

	var sc *services.StateConflictError
	if errors.As(err, &sc) {
		utils.ConflictResponse(c, sc.Error())
		return
	}

	if errors.Is(err, repository.ErrNotFound) {
		utils.NotFoundResponse(c, "request")
		return
	}

	if services.IsPersistence(err) {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.BadRequestResponse(c, err.Error(), nil)
}
