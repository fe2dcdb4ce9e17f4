package handler

import (
	"net/http"
	"strconv"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/middleware"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/repository"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifier *service.Notifier
	repo     *repository.NotificationRepository
	users    *repository.UserRepository
}

func NewNotificationHandler(notifier *service.Notifier, repo *repository.NotificationRepository, users *repository.UserRepository) *NotificationHandler {
	return &NotificationHandler{notifier: notifier, repo: repo, users: users}
}

// SendFromTemplate dispatches a templated notification. The response is
// always 200 with a result body; Success=false covers both pipeline faults
// and the empty-recipients case.
func (h *NotificationHandler) SendFromTemplate(c *gin.Context) {
	var req service.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.TemplateCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template_code is required"})
		return
	}
	h.stampSender(c, &req)
	c.JSON(http.StatusOK, h.notifier.SendFromTemplate(c.Request.Context(), req))
}

func (h *NotificationHandler) SendImmediate(c *gin.Context) {
	var req service.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.stampSender(c, &req)
	c.JSON(http.StatusOK, h.notifier.SendImmediate(c.Request.Context(), req))
}

// stampSender overwrites sender identity from the auth context so callers
// cannot spoof it. Non-superadmins are pinned to their own branch.
func (h *NotificationHandler) stampSender(c *gin.Context, req *service.SendRequest) {
	req.SenderID = middleware.GetUserID(c)
	req.SenderRole = middleware.GetRole(c)
	if u, err := h.users.GetByID(req.SenderID); err == nil {
		req.SenderName = u.FullName
	}
	if req.SenderRole != domain.RoleSuperadmin {
		branchID := middleware.GetBranchID(c)
		req.BranchID = &branchID
		req.Recipients.BranchID = &branchID
	}
}

func (h *NotificationHandler) Cancel(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	cancelled, err := h.notifier.CancelScheduled(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cancel failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled_jobs": cancelled})
}

func (h *NotificationHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	n, err := h.repo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) Recipients(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	list, err := h.repo.ListRecipients(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipients": list})
}

func (h *NotificationHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.repo.ListForUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.repo.UnreadCount(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.repo.MarkRead(uint(id), middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *NotificationHandler) MarkClicked(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.repo.MarkClicked(uint(id), middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
