package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wrapchain.backend/internal/interfaces/http/response"
	"wrapchain.backend/internal/usecases"
)

// MembersHandler handles membership registry endpoints
type MembersHandler struct {
	membersUsecase *usecases.MembersUsecase
}

// NewMembersHandler creates a new members handler
func NewMembersHandler(membersUsecase *usecases.MembersUsecase) *MembersHandler {
	return &MembersHandler{membersUsecase: membersUsecase}
}

type setCustodianRequest struct {
	Custodian string `json:"custodian" binding:"required"`
}

type merchantRequest struct {
	Merchant string `json:"merchant" binding:"required"`
}

// Initialize creates the registry administered by the caller
// POST /api/v1/members
func (h *MembersHandler) Initialize(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}

	members, err := h.membersUsecase.Initialize(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, members)
}

// GetRegistry returns a registry
// GET /api/v1/members/:id
func (h *MembersHandler) GetRegistry(c *gin.Context) {
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}

	members, err := h.membersUsecase.GetRegistry(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, members)
}

// SetCustodian replaces the custodian
// PUT /api/v1/members/:id/custodian
func (h *MembersHandler) SetCustodian(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	var input setCustodianRequest
	if !bindJSON(c, &input) {
		return
	}
	custodian, ok := addressField(c, "custodian", input.Custodian)
	if !ok {
		return
	}

	members, err := h.membersUsecase.SetCustodian(c.Request.Context(), principal, id, custodian)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, members)
}

// AddMerchant admits a merchant
// POST /api/v1/members/:id/merchants
func (h *MembersHandler) AddMerchant(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	var input merchantRequest
	if !bindJSON(c, &input) {
		return
	}
	merchant, ok := addressField(c, "merchant", input.Merchant)
	if !ok {
		return
	}

	record, err := h.membersUsecase.AddMerchant(c.Request.Context(), principal, id, merchant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, record)
}

// RemoveMerchant deactivates a merchant
// DELETE /api/v1/members/:id/merchants/:merchant
func (h *MembersHandler) RemoveMerchant(c *gin.Context) {
	h.setMerchantActive(c, false)
}

// ReactivateMerchant re-admits a removed merchant
// POST /api/v1/members/:id/merchants/:merchant/reactivate
func (h *MembersHandler) ReactivateMerchant(c *gin.Context) {
	h.setMerchantActive(c, true)
}

func (h *MembersHandler) setMerchantActive(c *gin.Context, active bool) {
	principal, ok := caller(c)
	if !ok {
		return
	}
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	merchant, ok := addressParam(c, "merchant")
	if !ok {
		return
	}

	change := h.membersUsecase.RemoveMerchant
	if active {
		change = h.membersUsecase.ReactivateMerchant
	}
	record, err := change(c.Request.Context(), principal, id, merchant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, record)
}

// GetMerchant returns a merchant record
// GET /api/v1/members/:id/merchants/:merchant
func (h *MembersHandler) GetMerchant(c *gin.Context) {
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	merchant, ok := addressParam(c, "merchant")
	if !ok {
		return
	}

	record, err := h.membersUsecase.GetMerchant(c.Request.Context(), id, merchant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, record)
}

// ListMerchants pages through the merchants of a registry
// GET /api/v1/members/:id/merchants
func (h *MembersHandler) ListMerchants(c *gin.Context) {
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	page, limit := pageQuery(c)

	items, meta, err := h.membersUsecase.ListMerchants(c.Request.Context(), id, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, items, meta)
}
