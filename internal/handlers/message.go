package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Yasvanth-2005/chat-backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// EditMessage rewrites a message's body/attachments (sender only), flags it
// as edited and broadcasts the possibly-changed lastMessage.
func (h *Handler) EditMessage(c *gin.Context) {
	chatID := c.Param("chatId")
	messageID := c.Param("messageId")

	var req struct {
		UserID      string              `json:"userId" binding:"required"`
		Body        string              `json:"body"`
		Attachments []models.Attachment `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}

	var blob datatypes.JSON
	if len(req.Attachments) > 0 {
		raw, err := json.Marshal(req.Attachments)
		if err != nil {
			respondError(c, err)
			return
		}
		blob = datatypes.JSON(raw)
	}

	msg, last, err := h.Vis.EditMessage(chatID, messageID, req.UserID, req.Body, blob)
	if err != nil {
		respondError(c, err)
		return
	}

	chat, err := h.Vis.GetChat(chatID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Dispatch.FanOut(chat.ParticipantIDs(), "messageEdited", gin.H{
		"chatId":      chatID,
		"messageId":   messageID,
		"content":     msg.Body,
		"attachments": msg.Attachments,
		"lastMessage": last,
	})

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// DeleteMessage removes a message for everyone (sender only) or hides it
// for the caller. Fan-out depends on the mode: everyone hears about a
// forEveryone delete, only the deleter hears about a forMe delete.
func (h *Handler) DeleteMessage(c *gin.Context) {
	messageID := c.Param("messageId")

	var req struct {
		ChatID string `json:"chatId" binding:"required"`
		UserID string `json:"userId" binding:"required"`
		Mode   string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chatId, userId and mode required"})
		return
	}

	mode, err := models.ParseDeleteMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.Vis.DeleteMessage(req.ChatID, messageID, req.UserID, mode)
	if err != nil {
		respondError(c, err)
		return
	}

	for _, pid := range outcome.Recipients {
		h.Dispatch.ToUser(pid, "messageDeleted", gin.H{
			"chatId":      outcome.ChatID,
			"messageId":   outcome.MessageID,
			"mode":        outcome.Mode.String(),
			"lastMessage": outcome.PerViewer[pid],
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AddReaction sets (or clears, with an empty emoji) the caller's reaction.
func (h *Handler) AddReaction(c *gin.Context) {
	chatID := c.Param("chatId")
	messageID := c.Param("messageId")

	var req struct {
		UserID string `json:"userId" binding:"required"`
		Emoji  string `json:"emoji"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}

	msg, err := h.Vis.SetReaction(chatID, messageID, req.UserID, req.Emoji)
	if err != nil {
		respondError(c, err)
		return
	}

	chat, err := h.Vis.GetChat(chatID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Dispatch.FanOut(chat.ParticipantIDs(), "messageReaction", gin.H{
		"chatId":  chatID,
		"message": msg,
	})

	c.JSON(http.StatusOK, gin.H{"message": msg})
}
