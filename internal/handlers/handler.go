package handlers

import (
	"net/http"

	"github.com/Yasvanth-2005/chat-backend/internal/services"
	apperrors "github.com/Yasvanth-2005/chat-backend/pkg/errors"
	"github.com/Yasvanth-2005/chat-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Handler bundles the visibility engine and the fan-out dispatcher for the
// HTTP surface. Both are constructor-injected; handlers hold no ambient
// realtime state.
type Handler struct {
	Vis      *services.Visibility
	Dispatch *services.Dispatcher
}

func New(vis *services.Visibility, dispatch *services.Dispatcher) *Handler {
	return &Handler{Vis: vis, Dispatch: dispatch}
}

// errSendLimit is returned when the per-user Redis send throttle trips.
var errSendLimit = apperrors.NewAppError(http.StatusTooManyRequests, "Sending too fast, slow down")

// respondError maps service errors onto the HTTP taxonomy:
// NotFound 404, Forbidden 403, Unauthorized 401, InvalidInput 400,
// everything else (store failures) 500.
func respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
		return
	}
	logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
}
