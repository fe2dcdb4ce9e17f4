package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/middleware"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/repository"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	store *service.TemplateStore
}

func NewTemplateHandler(store *service.TemplateStore) *TemplateHandler {
	return &TemplateHandler{store: store}
}

func (h *TemplateHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	f := repository.TemplateFilter{
		Category:   c.Query("category"),
		ActiveOnly: c.DefaultQuery("active", "true") == "true",
		SystemOnly: c.Query("system") == "true",
		Limit:      limit,
		Offset:     offset,
	}
	list, err := h.store.List(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": list})
}

func (h *TemplateHandler) Get(c *gin.Context) {
	code := c.Param("code")
	t, err := h.store.Get(c.Request.Context(), code, middleware.GetBranchID(c))
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, t)
}

type createTemplateRequest struct {
	Code            string   `json:"code" binding:"required"`
	Name            string   `json:"name" binding:"required"`
	TitleTemplate   string   `json:"title_template" binding:"required"`
	BodyTemplate    string   `json:"body_template" binding:"required"`
	Category        string   `json:"category" binding:"required"`
	DefaultPriority string   `json:"default_priority"`
	DefaultChannels []string `json:"default_channels"`
	Variables       []string `json:"variables"`
	BranchIDs       []uint   `json:"branch_ids"`
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.DefaultPriority == "" {
		req.DefaultPriority = domain.PriorityNormal
	}
	if len(req.DefaultChannels) == 0 {
		req.DefaultChannels = []string{domain.ChannelInApp}
	}
	for _, ch := range req.DefaultChannels {
		if !domain.IsChannel(ch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown channel " + ch})
			return
		}
	}

	t := &models.NotificationTemplate{
		Code:            req.Code,
		Name:            req.Name,
		TitleTemplate:   req.TitleTemplate,
		BodyTemplate:    req.BodyTemplate,
		Category:        req.Category,
		DefaultPriority: req.DefaultPriority,
		Variables:       models.EncodeStringList(req.Variables),
	}
	t.SetChannelList(req.DefaultChannels)
	t.SetBranchList(req.BranchIDs)

	if err := h.store.CreateCustom(t, middleware.GetUserID(c), middleware.GetBranchID(c)); err != nil {
		if errors.Is(err, service.ErrDuplicateTemplateCode) {
			c.JSON(http.StatusConflict, gin.H{"error": "code already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, t)
}

type updateTemplateRequest struct {
	Name            *string  `json:"name"`
	TitleTemplate   *string  `json:"title_template"`
	BodyTemplate    *string  `json:"body_template"`
	Category        *string  `json:"category"`
	DefaultPriority *string  `json:"default_priority"`
	DefaultChannels []string `json:"default_channels"`
}

func (h *TemplateHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	for _, ch := range req.DefaultChannels {
		if !domain.IsChannel(ch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown channel " + ch})
			return
		}
	}
	t, err := h.store.Update(c.Request.Context(), uint(id), service.TemplatePatch{
		Name:            req.Name,
		TitleTemplate:   req.TitleTemplate,
		BodyTemplate:    req.BodyTemplate,
		Category:        req.Category,
		DefaultPriority: req.DefaultPriority,
		DefaultChannels: req.DefaultChannels,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		case errors.Is(err, service.ErrProtectedTemplate):
			c.JSON(http.StatusForbidden, gin.H{"error": "system templates cannot be modified"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		}
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TemplateHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.store.Deactivate(c.Request.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		case errors.Is(err, service.ErrProtectedTemplate):
			c.JSON(http.StatusForbidden, gin.H{"error": "system templates cannot be deactivated"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "deactivate failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Seed re-runs the system-template catalog sync.
func (h *TemplateHandler) Seed(c *gin.Context) {
	created, updated, err := h.store.SeedDefaults(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "seed failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created, "updated": updated})
}
