package handlers

import (
	"net/http"
	"time"

	"github.com/Yasvanth-2005/chat-backend/internal/database"
	"github.com/Yasvanth-2005/chat-backend/internal/models"
	"github.com/Yasvanth-2005/chat-backend/pkg/logger"
	"github.com/Yasvanth-2005/chat-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

const contactsCacheKey = "chat:contacts"

// ListChatUsers returns the contact directory. Cached briefly in Redis since
// every client pulls it on startup.
func (h *Handler) ListChatUsers(c *gin.Context) {
	var users []models.User

	if err := database.CacheGet(contactsCacheKey, &users); err == nil {
		c.JSON(http.StatusOK, gin.H{"users": users})
		return
	}

	if err := database.DB.Order("display_name asc").Find(&users).Error; err != nil {
		respondError(c, err)
		return
	}

	// Persisted socket ids go stale; liveness comes from the registry.
	for i := range users {
		users[i].Active = h.Dispatch.Registry().Online(users[i].ID)
	}

	if err := database.CacheSet(contactsCacheKey, users, 30*time.Second); err != nil {
		logger.Warn().Err(err).Msg("contacts cache write failed")
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// CreateChatUser registers (or refreshes) a chat user. Display names are
// unique; re-posting an existing id updates the profile.
func (h *Handler) CreateChatUser(c *gin.Context) {
	var req struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName" binding:"required"`
		PhotoURL    string `json:"photoURL"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phoneNumber"`
		Country     string `json:"country"`
		Address     string `json:"address"`
		State       string `json:"state"`
		City        string `json:"city"`
		ZipCode     string `json:"zipCode"`
		About       string `json:"about"`
		Role        string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "displayName required"})
		return
	}

	if req.ID != "" && !utils.IsUUID(req.ID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	if req.ID != "" {
		var existing models.User
		if err := database.DB.First(&existing, "id = ?", req.ID).Error; err == nil {
			updates := map[string]interface{}{
				"display_name": req.DisplayName,
				"photo_url":    req.PhotoURL,
				"email":        req.Email,
				"phone_number": req.PhoneNumber,
				"country":      req.Country,
				"address":      req.Address,
				"state":        req.State,
				"city":         req.City,
				"zip_code":     req.ZipCode,
				"about":        req.About,
				"role":         req.Role,
				"last_active":  time.Now(),
			}
			if err := database.DB.Model(&existing).Updates(updates).Error; err != nil {
				respondError(c, err)
				return
			}
			database.CacheInvalidate(contactsCacheKey)
			c.JSON(http.StatusOK, gin.H{"user": existing})
			return
		}
	}

	user := models.User{
		ID:          req.ID,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Country:     req.Country,
		Address:     req.Address,
		State:       req.State,
		City:        req.City,
		ZipCode:     req.ZipCode,
		About:       req.About,
		Role:        req.Role,
		IsPublic:    true,
		CreatedAt:   time.Now(),
		LastActive:  time.Now(),
	}
	if user.ID == "" {
		user.ID = utils.NewID()
	}

	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Display name already taken"})
		return
	}

	database.CacheInvalidate(contactsCacheKey)
	c.JSON(http.StatusCreated, gin.H{"user": user})
}
