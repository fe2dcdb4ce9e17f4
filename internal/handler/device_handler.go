package handler

import (
	"net/http"
	"time"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/middleware"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/repository"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	repo *repository.DeviceRepository
}

func NewDeviceHandler(repo *repository.DeviceRepository) *DeviceHandler {
	return &DeviceHandler{repo: repo}
}

type registerDeviceRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceType string `json:"device_type"`
	AppVersion string `json:"app_version"`
}

// Register upserts an FCM token. A token that moves to another account is
// reassigned, not duplicated.
func (h *DeviceHandler) Register(c *gin.Context) {
	var req registerDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	d := &models.PushDevice{
		UserID:     middleware.GetUserID(c),
		Token:      req.Token,
		DeviceType: req.DeviceType,
		AppVersion: req.AppVersion,
		LastSeenAt: time.Now().UTC(),
	}
	if err := h.repo.Upsert(d); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "register failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *DeviceHandler) Unregister(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}
	if err := h.repo.DeleteByToken(middleware.GetUserID(c), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unregister failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
