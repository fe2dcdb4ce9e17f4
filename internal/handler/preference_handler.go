package handler

import (
	"net/http"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/middleware"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/repository"

	"github.com/gin-gonic/gin"
)

type PreferenceHandler struct {
	repo *repository.PreferenceRepository
}

func NewPreferenceHandler(repo *repository.PreferenceRepository) *PreferenceHandler {
	return &PreferenceHandler{repo: repo}
}

func (h *PreferenceHandler) Get(c *gin.Context) {
	p, err := h.repo.GetOrDefault(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}

type updatePreferenceRequest struct {
	InAppEnabled    *bool           `json:"in_app_enabled"`
	EmailEnabled    *bool           `json:"email_enabled"`
	SMSEnabled      *bool           `json:"sms_enabled"`
	PushEnabled     *bool           `json:"push_enabled"`
	Categories      map[string]bool `json:"categories"`
	QuietHoursStart *string         `json:"quiet_hours_start"`
	QuietHoursEnd   *string         `json:"quiet_hours_end"`
	DigestEnabled   *bool           `json:"digest_enabled"`
}

func (h *PreferenceHandler) Update(c *gin.Context) {
	var req updatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID := middleware.GetUserID(c)
	p, err := h.repo.GetOrDefault(userID)
	if err != nil {
		p = models.DefaultPreference(userID)
	}
	applyBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	applyBool(&p.InAppEnabled, req.InAppEnabled)
	applyBool(&p.EmailEnabled, req.EmailEnabled)
	applyBool(&p.SMSEnabled, req.SMSEnabled)
	applyBool(&p.PushEnabled, req.PushEnabled)
	applyBool(&p.DigestEnabled, req.DigestEnabled)
	if req.Categories != nil {
		p.SetCategories(req.Categories)
	}
	if req.QuietHoursStart != nil {
		p.QuietHoursStart = *req.QuietHoursStart
	}
	if req.QuietHoursEnd != nil {
		p.QuietHoursEnd = *req.QuietHoursEnd
	}
	if err := h.repo.Upsert(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}
