package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth-service/internal/application"
	"github.com/oksasatya/go-ddd-auth-service/pkg/response"
	"github.com/oksasatya/go-ddd-auth-service/pkg/validation"
)

const MsgRegistered = "User Registered Successfully"

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	validation.Init()
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=100"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type tokenBody struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type tokenData struct {
	Token tokenBody `json:"token"`
}

// Register POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	err := h.Svc.SignUp(c.Request.Context(), application.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err, http.StatusNotFound)
		return
	}
	response.OK[any](c, http.StatusCreated, nil, MsgRegistered, nil)
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	pair, err := h.Svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err, http.StatusUnauthorized)
		return
	}
	writePair(c, pair, "login successful")
}

// Logout POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	response.OK[any](c, http.StatusOK, nil, h.Svc.SignOut(), nil)
}

// Refresh POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	pair, err := h.Svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err, http.StatusUnauthorized)
		return
	}
	writePair(c, pair, "token refreshed")
}

func writePair(c *gin.Context, pair application.TokenPair, message string) {
	data := tokenData{Token: tokenBody{
		TokenType:    pair.TokenType,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}}
	meta := map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	}
	response.OK(c, http.StatusOK, data, message, meta)
}
