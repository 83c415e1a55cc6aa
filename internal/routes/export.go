package routes

import (
	"github.com/Yasvanth-2005/chat-backend/internal/handlers"
	"github.com/Yasvanth-2005/chat-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterExportRoutes mounts the chat-export endpoint behind its own
// (tighter) rate limit.
func RegisterExportRoutes(r gin.IRouter, h *handlers.Handler) {
	r.POST("/export", middleware.RateLimitMiddleware(middleware.ExportLimiter), h.ExportChat)
}
