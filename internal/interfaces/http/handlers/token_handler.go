package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wrapchain.backend/internal/interfaces/http/response"
	"wrapchain.backend/internal/usecases"
)

// TokenHandler handles token ledger endpoints
type TokenHandler struct {
	tokenUsecase *usecases.TokenUsecase
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(tokenUsecase *usecases.TokenUsecase) *TokenHandler {
	return &TokenHandler{tokenUsecase: tokenUsecase}
}

type createTokenRequest struct {
	ID            string `json:"id"`
	MintAuthority string `json:"mintAuthority"`
	Decimals      uint8  `json:"decimals"`
}

type openAccountRequest struct {
	Owner string `json:"owner"`
}

// CreateToken registers a wrapped token
// POST /api/v1/tokens
func (h *TokenHandler) CreateToken(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}
	var input createTokenRequest
	if !bindJSON(c, &input) {
		return
	}
	id, ok := optionalAddress(c, "id", input.ID)
	if !ok {
		return
	}
	authority, ok := optionalAddress(c, "mintAuthority", input.MintAuthority)
	if !ok {
		return
	}

	token, err := h.tokenUsecase.CreateToken(c.Request.Context(), principal, usecases.CreateTokenInput{
		ID:            id,
		MintAuthority: authority,
		Decimals:      input.Decimals,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, token)
}

// GetToken returns a token
// GET /api/v1/tokens/:id
func (h *TokenHandler) GetToken(c *gin.Context) {
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}

	token, err := h.tokenUsecase.GetToken(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, token)
}

// OpenAccount opens a token account, for the caller unless owner is given
// POST /api/v1/tokens/:id/accounts
func (h *TokenHandler) OpenAccount(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	var input openAccountRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &input) {
		return
	}
	owner, ok := optionalAddress(c, "owner", input.Owner)
	if !ok {
		return
	}
	if owner == nil {
		owner = &principal
	}

	account, err := h.tokenUsecase.OpenAccount(c.Request.Context(), id, *owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, account)
}

// GetAccount returns the token account of owner
// GET /api/v1/tokens/:id/accounts/:owner
func (h *TokenHandler) GetAccount(c *gin.Context) {
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	owner, ok := addressParam(c, "owner")
	if !ok {
		return
	}

	account, err := h.tokenUsecase.GetAccount(c.Request.Context(), id, owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, account)
}
