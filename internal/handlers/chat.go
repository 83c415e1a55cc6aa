package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Yasvanth-2005/chat-backend/internal/database"
	"github.com/Yasvanth-2005/chat-backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// GetUserChats returns the requesting user's visible chat list, most recent
// activity first.
func (h *Handler) GetUserChats(c *gin.Context) {
	userID := c.Param("userId")

	chats, err := h.Vis.ListChats(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": chats})
}

// GetChatMessages returns one page of the chat's history as seen by the
// user. The page window grows with the page number; see Visibility.
func (h *Handler) GetChatMessages(c *gin.Context) {
	chatID := c.Param("chatId")
	userID := c.Param("userId")

	page := 1
	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}

	chat, err := h.Vis.GetChat(chatID)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.Vis.ListMessages(chatID, userID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":     result.Messages,
		"participants": chat.Participants,
		"total":        result.Total,
		"hasMore":      result.HasMore,
		"currentPage":  result.CurrentPage,
	})
}

// CreateDirectChat finds or creates the direct chat between sender and
// recipient and optionally sends an opening message.
func (h *Handler) CreateDirectChat(c *gin.Context) {
	var req struct {
		SenderID    string              `json:"senderId" binding:"required"`
		RecipientID string              `json:"recipientId" binding:"required"`
		Body        string              `json:"body"`
		Type        string              `json:"type"`
		Attachments []models.Attachment `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "senderId and recipientId required"})
		return
	}

	chat, created, err := h.Vis.FindOrCreateDirectChat(req.SenderID, req.RecipientID)
	if err != nil {
		respondError(c, err)
		return
	}

	var msg *models.Message
	if req.Body != "" || len(req.Attachments) > 0 {
		msg, chat, err = h.sendToChat(chat.ID, req.SenderID, req.Body, req.Type, req.Attachments, nil)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	if created {
		h.Dispatch.FanOut(chat.ParticipantIDs(), "chatStarted", gin.H{"chat": chat})
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"chat": chat, "message": msg})
}

// CreateGroupChat finds or creates a group chat with at least two
// recipients, optionally named and optionally seeded with a message.
func (h *Handler) CreateGroupChat(c *gin.Context) {
	var req struct {
		SenderID     string              `json:"senderId" binding:"required"`
		RecipientIDs []string            `json:"recipientIds" binding:"required"`
		Name         string              `json:"name"`
		Body         string              `json:"body"`
		Type         string              `json:"type"`
		Attachments  []models.Attachment `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "senderId and recipientIds required"})
		return
	}

	chat, created, err := h.Vis.CreateGroupChat(req.SenderID, req.RecipientIDs, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	var msg *models.Message
	if req.Body != "" || len(req.Attachments) > 0 {
		msg, chat, err = h.sendToChat(chat.ID, req.SenderID, req.Body, req.Type, req.Attachments, nil)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	if created {
		h.Dispatch.FanOut(chat.ParticipantIDs(), "chatStarted", gin.H{"chat": chat})
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"chat": chat, "message": msg})
}

// CreateTeamChat creates a named team chat or extends an existing one.
func (h *Handler) CreateTeamChat(c *gin.Context) {
	var req struct {
		Name      string   `json:"name" binding:"required"`
		MemberIDs []string `json:"memberIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and memberIds required"})
		return
	}

	chat, created, err := h.Vis.UpsertTeamChat(req.Name, req.MemberIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	if created {
		h.Dispatch.FanOut(chat.ParticipantIDs(), "roomCreated", gin.H{"chat": chat})
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"chat": chat})
}

// DeleteChat soft-deletes the chat for one user. The chat reappears for them
// as soon as someone sends something new.
func (h *Handler) DeleteChat(c *gin.Context) {
	chatID := c.Param("chatId")
	userID := c.Param("userId")

	if err := h.Vis.DeleteChat(chatID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExitChat removes the caller from a group chat and posts the departure as
// a system message.
func (h *Handler) ExitChat(c *gin.Context) {
	chatID := c.Param("chatId")

	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}

	sysMsg, chat, err := h.Vis.ExitChat(chatID, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	recipients := append(chat.ParticipantIDs(), req.UserID)
	h.Dispatch.FanOut(recipients, "userLeft", gin.H{
		"chatId":  chatID,
		"userId":  req.UserID,
		"message": sysMsg,
	})
	h.Dispatch.FanOut(chat.ParticipantIDs(), "messageSent", gin.H{
		"chatId":  chatID,
		"message": sysMsg,
	})

	c.JSON(http.StatusOK, gin.H{"chat": chat, "message": sysMsg})
}

// sendToChat persists a message, advances the chat pointer and fans the
// messageSent event out to connected participants. Shared by the HTTP and
// socket paths.
func (h *Handler) sendToChat(chatID, senderID, body, kind string, attachments []models.Attachment, replyToID *string) (*models.Message, *models.Chat, error) {
	if ok, _ := database.CheckSendLimit(senderID, 30, 10*time.Second); !ok {
		return nil, nil, errSendLimit
	}

	var blob datatypes.JSON
	if len(attachments) > 0 {
		raw, err := json.Marshal(attachments)
		if err != nil {
			return nil, nil, err
		}
		blob = datatypes.JSON(raw)
	}

	msg, chat, err := h.Vis.SendMessage(chatID, senderID, body, models.MessageKind(kind), blob, replyToID)
	if err != nil {
		return nil, nil, err
	}

	h.Dispatch.FanOut(chat.ParticipantIDs(), "messageSent", gin.H{
		"chatId":  chatID,
		"message": msg,
	})
	return msg, chat, nil
}
