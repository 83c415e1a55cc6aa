package routes

import (
	"github.com/Yasvanth-2005/chat-backend/internal/handlers"
	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes mounts the chat API surface.
func RegisterChatRoutes(r gin.IRouter, h *handlers.Handler) {
	chats := r.Group("/chats")
	{
		chats.GET("/users", h.ListChatUsers)
		chats.POST("/users", h.CreateChatUser)
		chats.GET("/users/:userId/chats", h.GetUserChats)

		chats.POST("", h.CreateDirectChat)
		chats.POST("/multiple", h.CreateGroupChat)
		chats.POST("/teams", h.CreateTeamChat)

		chats.GET("/:chatId/messages/:userId", h.GetChatMessages)
		chats.PUT("/:chatId/messages/:messageId", h.EditMessage)
		chats.POST("/:chatId/reactions/:messageId", h.AddReaction)
		chats.POST("/:chatId/exit", h.ExitChat)
		chats.DELETE("/:chatId/:userId", h.DeleteChat)
	}

	r.DELETE("/messages/:messageId", h.DeleteMessage)
}
