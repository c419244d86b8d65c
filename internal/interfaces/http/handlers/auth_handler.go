package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wrapchain.backend/internal/interfaces/http/response"
	"wrapchain.backend/internal/usecases"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase *usecases.AuthUsecase
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUsecase *usecases.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

type challengeRequest struct {
	Address string `json:"address" binding:"required"`
}

type loginRequest struct {
	Address   string `json:"address" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Challenge issues the message to sign
// POST /api/v1/auth/challenge
func (h *AuthHandler) Challenge(c *gin.Context) {
	var input challengeRequest
	if !bindJSON(c, &input) {
		return
	}

	message, err := h.authUsecase.Challenge(c.Request.Context(), input.Address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": message})
}

// Login exchanges a signed challenge for a token pair
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input loginRequest
	if !bindJSON(c, &input) {
		return
	}

	pair, err := h.authUsecase.Login(c.Request.Context(), input.Address, input.Signature)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, pair)
}

// Refresh rotates a token pair
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var input refreshRequest
	if !bindJSON(c, &input) {
		return
	}

	pair, err := h.authUsecase.Refresh(c.Request.Context(), input.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, pair)
}
