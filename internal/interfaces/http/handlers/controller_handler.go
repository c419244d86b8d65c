package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wrapchain.backend/internal/interfaces/http/response"
	"wrapchain.backend/internal/usecases"
)

// ControllerHandler handles controller endpoints
type ControllerHandler struct {
	controllerUsecase *usecases.ControllerUsecase
}

// NewControllerHandler creates a new controller handler
func NewControllerHandler(controllerUsecase *usecases.ControllerUsecase) *ControllerHandler {
	return &ControllerHandler{controllerUsecase: controllerUsecase}
}

type initializeControllerRequest struct {
	TokenID string `json:"tokenId" binding:"required"`
}

type setMembersRequest struct {
	MembersID string `json:"membersId" binding:"required"`
}

type setFactoryRequest struct {
	FactoryID string `json:"factoryId" binding:"required"`
}

// Initialize creates the controller of a token owned by the caller
// POST /api/v1/controllers
func (h *ControllerHandler) Initialize(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}
	var input initializeControllerRequest
	if !bindJSON(c, &input) {
		return
	}
	tokenID, ok := addressField(c, "tokenId", input.TokenID)
	if !ok {
		return
	}

	controller, err := h.controllerUsecase.Initialize(c.Request.Context(), principal, tokenID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, controller)
}

// GetController returns a controller
// GET /api/v1/controllers/:id
func (h *ControllerHandler) GetController(c *gin.Context) {
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}

	controller, err := h.controllerUsecase.GetController(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, controller)
}

// SetMembers delegates merchant verification
// PUT /api/v1/controllers/:id/members
func (h *ControllerHandler) SetMembers(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	var input setMembersRequest
	if !bindJSON(c, &input) {
		return
	}
	membersID, ok := addressField(c, "membersId", input.MembersID)
	if !ok {
		return
	}

	controller, err := h.controllerUsecase.SetMembers(c.Request.Context(), principal, id, membersID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, controller)
}

// SetFactory delegates supply changes
// PUT /api/v1/controllers/:id/factory
func (h *ControllerHandler) SetFactory(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	var input setFactoryRequest
	if !bindJSON(c, &input) {
		return
	}
	factoryID, ok := addressField(c, "factoryId", input.FactoryID)
	if !ok {
		return
	}

	controller, err := h.controllerUsecase.SetFactory(c.Request.Context(), principal, id, factoryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, controller)
}
