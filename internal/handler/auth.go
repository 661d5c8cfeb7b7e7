package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/artfeed/backend/internal/model"
	"github.com/artfeed/backend/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// SignUp godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.SignInRequest true "Login and password"
// @Success 201 {object} model.AuthResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /auth/sign_up [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req model.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Login == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.svc.Register(c.Request.Context(), req.Login, req.Password, ""); err != nil {
		if errors.Is(err, service.ErrDuplicateLogin) {
			c.JSON(http.StatusConflict, gin.H{"error": "login already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	token, err := h.svc.IssueSession(req.Login)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusCreated, model.AuthResponse{
		Message: "user registered",
		Token:   token,
	})
}

// SignIn godoc
// @Summary Sign in with login and password
// @Description Checks login existence and the password as two separate steps.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.SignInRequest true "Login and password"
// @Success 200 {object} model.AuthResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /auth/sign_in [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req model.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Login == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ctx := c.Request.Context()

	// Existence and credential checks stay separate so the client can
	// tell an unknown login from a wrong password.
	exists, err := h.svc.LoginExists(ctx, req.Login)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "login not found"})
		return
	}

	ok, err := h.svc.Authenticate(ctx, req.Login, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong password"})
		return
	}

	token, err := h.svc.IssueSession(req.Login)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, model.AuthResponse{
		Message: "authenticated",
		Token:   token,
	})
}

// ChangePassword godoc
// @Summary Change the user's password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ChangePasswordRequest true "Login, old and new password"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /auth/change_password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Login == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.svc.ChangePassword(c.Request.Context(), req.Login, req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, model.MessageResponse{Message: "password changed"})
	case errors.Is(err, service.ErrIncorrectLogin):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login not found"})
	case errors.Is(err, service.ErrOldPasswordMismatch):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "old password mismatch"})
	case errors.Is(err, service.ErrSamePassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": "new password equals the old one"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
