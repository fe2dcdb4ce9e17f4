package handler

import (
	"net/http"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/config"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/auth"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/repository"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	cfg   *config.JWTConfig
	users *repository.UserRepository
}

func NewAuthHandler(cfg *config.JWTConfig, users *repository.UserRepository) *AuthHandler {
	return &AuthHandler{cfg: cfg, users: users}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	u, err := h.users.GetByEmail(req.Email)
	if err != nil || u == nil || !u.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	access, err := auth.GenerateAccessToken(h.cfg, u.ID, u.Email, u.Role, u.BranchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	refresh, _ := auth.GenerateRefreshToken(h.cfg, u.ID)
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"user": gin.H{
			"id":        u.ID,
			"full_name": u.FullName,
			"email":     u.Email,
			"role":      u.Role,
			"branch_id": u.BranchID,
		},
	})
}
