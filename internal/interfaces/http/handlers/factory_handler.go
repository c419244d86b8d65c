package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"wrapchain.backend/internal/domain/entities"
	domainerrors "wrapchain.backend/internal/domain/errors"
	"wrapchain.backend/internal/interfaces/http/response"
	"wrapchain.backend/internal/usecases"
)

// FactoryHandler handles mint and burn request endpoints
type FactoryHandler struct {
	factoryUsecase *usecases.FactoryUsecase
}

// NewFactoryHandler creates a new factory handler
func NewFactoryHandler(factoryUsecase *usecases.FactoryUsecase) *FactoryHandler {
	return &FactoryHandler{factoryUsecase: factoryUsecase}
}

type initializeFactoryRequest struct {
	ControllerID string `json:"controllerId" binding:"required"`
	Admin        string `json:"admin"`
}

type depositAddressRequest struct {
	Address string `json:"address"`
}

type mintRequestInput struct {
	Txid           string `json:"txid"`
	DepositAddress string `json:"depositAddress"`
	Amount         uint64 `json:"amount"`
}

type burnRequestInput struct {
	Amount uint64 `json:"amount"`
}

type confirmBurnInput struct {
	Txid string `json:"txid"`
}

// Initialize creates the factory of a controller
// POST /api/v1/factories
func (h *FactoryHandler) Initialize(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}
	var input initializeFactoryRequest
	if !bindJSON(c, &input) {
		return
	}
	controllerID, ok := addressField(c, "controllerId", input.ControllerID)
	if !ok {
		return
	}
	admin, ok := optionalAddress(c, "admin", input.Admin)
	if !ok {
		return
	}
	var adminAddr common.Address
	if admin != nil {
		adminAddr = *admin
	}

	factory, err := h.factoryUsecase.Initialize(c.Request.Context(), principal, controllerID, adminAddr)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, factory)
}

// GetFactory returns a factory
// GET /api/v1/factories/:id
func (h *FactoryHandler) GetFactory(c *gin.Context) {
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}

	factory, err := h.factoryUsecase.GetFactory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, factory)
}

// SetCustodianDepositAddress binds the custodian address of a merchant
// PUT /api/v1/factories/:id/custodian-deposit-addresses/:merchant
func (h *FactoryHandler) SetCustodianDepositAddress(c *gin.Context) {
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
	var input depositAddressRequest
	if !bindJSON(c, &input) {
		return
	}

	deposit, err := h.factoryUsecase.SetCustodianDepositAddress(c.Request.Context(), principal, id, merchant, input.Address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, deposit)
}

// SetMerchantDepositAddress binds the caller's redemption address
// PUT /api/v1/factories/:id/merchant-deposit-address
func (h *FactoryHandler) SetMerchantDepositAddress(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	var input depositAddressRequest
	if !bindJSON(c, &input) {
		return
	}

	deposit, err := h.factoryUsecase.SetMerchantDepositAddress(c.Request.Context(), principal, id, input.Address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, deposit)
}

// GetDepositAddress returns a deposit address binding
// GET /api/v1/factories/:id/deposit-addresses/:kind/:merchant
func (h *FactoryHandler) GetDepositAddress(c *gin.Context) {
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	merchant, ok := addressParam(c, "merchant")
	if !ok {
		return
	}

	kind := entities.DepositAddressKind(c.Param("kind"))
	deposit, err := h.factoryUsecase.GetDepositAddress(c.Request.Context(), id, kind, merchant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, deposit)
}

// AddMintRequest records a backing asset deposit
// POST /api/v1/factories/:id/mint-requests
func (h *FactoryHandler) AddMintRequest(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	var input mintRequestInput
	if !bindJSON(c, &input) {
		return
	}

	request, err := h.factoryUsecase.AddMintRequest(c.Request.Context(), principal, id, input.Txid, input.DepositAddress, input.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, request)
}

// GetMintRequest returns a mint request by txid
// GET /api/v1/factories/:id/mint-requests/:txid
func (h *FactoryHandler) GetMintRequest(c *gin.Context) {
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}

	request, err := h.factoryUsecase.GetMintRequest(c.Request.Context(), id, c.Param("txid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, request)
}

type mintTransition func(ctx context.Context, caller, factoryID common.Address, txid string) (*entities.Request, error)

func (h *FactoryHandler) transitionMint(c *gin.Context, apply mintTransition) {
	principal, ok := caller(c)
	if !ok {
		return
	}
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}

	request, err := apply(c.Request.Context(), principal, id, c.Param("txid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, request)
}

// CancelMintRequest withdraws the caller's mint request
// POST /api/v1/factories/:id/mint-requests/:txid/cancel
func (h *FactoryHandler) CancelMintRequest(c *gin.Context) {
	h.transitionMint(c, h.factoryUsecase.CancelMintRequest)
}

// ConfirmMintRequest approves a pending mint and credits the merchant
// POST /api/v1/factories/:id/mint-requests/:txid/confirm
func (h *FactoryHandler) ConfirmMintRequest(c *gin.Context) {
	h.transitionMint(c, h.factoryUsecase.ConfirmMintRequest)
}

// RejectMintRequest declines a pending mint
// POST /api/v1/factories/:id/mint-requests/:txid/reject
func (h *FactoryHandler) RejectMintRequest(c *gin.Context) {
	h.transitionMint(c, h.factoryUsecase.RejectMintRequest)
}

// AddBurnRequest burns tokens and records the redemption
// POST /api/v1/factories/:id/burn-requests
func (h *FactoryHandler) AddBurnRequest(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	var input burnRequestInput
	if !bindJSON(c, &input) {
		return
	}

	request, err := h.factoryUsecase.AddBurnRequest(c.Request.Context(), principal, id, input.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, request)
}

func nonceParam(c *gin.Context) (uint64, bool) {
	nonce, err := strconv.ParseUint(c.Param("nonce"), 10, 64)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("nonce must be an unsigned integer"))
		return 0, false
	}
	return nonce, true
}

// GetBurnRequest returns a burn request by nonce
// GET /api/v1/factories/:id/burn-requests/:nonce
func (h *FactoryHandler) GetBurnRequest(c *gin.Context) {
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	nonce, ok := nonceParam(c)
	if !ok {
		return
	}

	request, err := h.factoryUsecase.GetBurnRequest(c.Request.Context(), id, nonce)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, request)
}

// ConfirmBurnRequest records the redemption txid
// POST /api/v1/factories/:id/burn-requests/:nonce/confirm
func (h *FactoryHandler) ConfirmBurnRequest(c *gin.Context) {
	principal, ok := caller(c)
	if !ok {
		return
	}
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	nonce, ok := nonceParam(c)
	if !ok {
		return
	}
	var input confirmBurnInput
	if !bindJSON(c, &input) {
		return
	}

	request, err := h.factoryUsecase.ConfirmBurnRequest(c.Request.Context(), principal, id, nonce, input.Txid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, request)
}

// ListRequests pages through the requests of a factory
// GET /api/v1/factories/:id/requests
func (h *FactoryHandler) ListRequests(c *gin.Context) {
	id, ok := addressParam(c, "id")
	if !ok {
		return
	}
	requester, ok := optionalAddress(c, "requester", c.Query("requester"))
	if !ok {
		return
	}
	page, limit := pageQuery(c)

	items, meta, err := h.factoryUsecase.ListRequests(
		c.Request.Context(),
		id,
		entities.RequestKind(c.Query("kind")),
		entities.RequestStatus(c.Query("status")),
		requester,
		page,
		limit,
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, items, meta)
}
