package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Daniel-Osman/nfd-express/internal/services"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

type AdminHandler struct {
	profileService services.ProfileService
	statsService   services.StatsService
}

func NewAdminHandler(profileService services.ProfileService, statsService services.StatsService) *AdminHandler {
	return &AdminHandler{
		profileService: profileService,
		statsService:   statsService,
	}
}

func (ah *AdminHandler) GetAllUsers(c *gin.Context) {
	users, err := ah.profileService.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (ah *AdminHandler) GetUserByMailbox(c *gin.Context) {
	user, err := ah.profileService.GetByMailboxID(c.Request.Context(), c.Param("mailboxId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "mailbox not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ah *AdminHandler) UpdateUserTier(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var req struct {
		Tier string `json:"tier"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := ah.profileService.UpdateTier(c.Request.Context(), profileID, types.SubscriptionTier(req.Tier)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}

func (ah *AdminHandler) Stats(c *gin.Context) {
	stats, err := ah.statsService.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
