package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/hoops-oracle/internal/analytics"
	"github.com/stitts-dev/hoops-oracle/internal/draft"
	"github.com/stitts-dev/hoops-oracle/internal/providers"
	"github.com/stitts-dev/hoops-oracle/pkg/utils"
)

// respondError maps domain errors onto the response envelope
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, draft.ErrSessionNotFound):
		utils.SendNotFound(c, "Draft session not found")
	case errors.Is(err, analytics.ErrPlayerNotFound), errors.Is(err, utils.ErrNotFound):
		utils.SendError(c, http.StatusNotFound, utils.NewAppError(utils.ErrCodeNotFound, "Player not found", err.Error()))
	case errors.Is(err, analytics.ErrEmptyCohort):
		utils.SendError(c, http.StatusUnprocessableEntity, utils.NewAppError(utils.ErrCodeValidation, "No players meet the games played minimum", err.Error()))
	case errors.Is(err, draft.ErrSessionClosed):
		utils.SendError(c, http.StatusConflict, utils.NewAppError(utils.ErrCodeDraftClosed, "Draft session is closed"))
	case errors.Is(err, draft.ErrVersionConflict), errors.Is(err, draft.ErrPlayerDrafted), errors.Is(err, utils.ErrConflict):
		utils.SendConflict(c, "Draft session conflict", err.Error())
	case errors.Is(err, draft.ErrInvalidSession), errors.Is(err, utils.ErrInvalidInput):
		utils.SendValidationError(c, "Invalid request", err.Error())
	case errors.Is(err, providers.ErrNotAuthorized), errors.Is(err, utils.ErrUnauthorized):
		utils.SendUnauthorized(c, "Yahoo authorization required")
	case errors.Is(err, utils.ErrUpstream):
		utils.SendUpstreamError(c, "Player data provider unavailable", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		utils.SendError(c, http.StatusGatewayTimeout, utils.NewAppError(utils.ErrCodeUpstream, "Request timed out"))
	default:
		utils.SendInternalError(c, "Internal server error")
	}
}
