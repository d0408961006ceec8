package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tonearm/tonearm/internal/application"
	"github.com/tonearm/tonearm/pkg/response"
	"github.com/tonearm/tonearm/pkg/validation"
)

type AuthHandler struct {
	Auth   *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Logger: logger}
}

type registerRequest struct {
	Username        string `json:"username" binding:"required,username"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirm_password" binding:"omitempty,eqfield=Password"`
}

type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.ToValidationError(err))
		return
	}
	user, err := h.Auth.Register(c.Request.Context(), application.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toUserOut(user))
}

// Verify always answers 200; the body tells the client which page to show.
func (h *AuthHandler) Verify(c *gin.Context) {
	outcome := h.Auth.VerifyEmail(c.Request.Context(), c.Query("token"))
	response.JSON(c, http.StatusOK, gin.H{"status": outcome})
}

// Login accepts form-encoded credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, validation.ToValidationError(err))
		return
	}
	pair, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
	})
}

// Refresh reads the refresh token as a bare JSON string body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var token string
	if err := c.ShouldBindJSON(&token); err != nil {
		response.Error(c, validation.ToValidationError(err))
		return
	}
	access, err := h.Auth.Refresh(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"access_token": access,
		"token_type":   "bearer",
	})
}
