package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/service"
	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/e"
	"github.com/gin-gonic/gin"
)

// AuthHandler 注册/登录
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes 注册认证路由（无需token）
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, "")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.authService.Register(ctx, req.Username, req.Password, req.Email, req.Phone)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			Fail(c, http.StatusConflict, e.ERROR_USER_EXISTS, "")
			return
		}
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, gin.H{"user": user})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, "")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	token, user, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			Fail(c, http.StatusNotFound, e.ERROR_USER_NOT_EXISTS, "")
		case errors.Is(err, service.ErrBadPassword):
			Fail(c, http.StatusUnauthorized, e.ERROR_PASSWORD, "")
		default:
			Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		}
		return
	}
	OK(c, gin.H{
		"token": token,
		"user":  user,
	})
}
