package usecases

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"wrapchain.backend/internal/domain/entities"
	domainerrors "wrapchain.backend/internal/domain/errors"
	"wrapchain.backend/internal/domain/repositories"
	"wrapchain.backend/pkg/derive"
	"wrapchain.backend/pkg/logger"
	"wrapchain.backend/pkg/metrics"
	"wrapchain.backend/pkg/utils"
)

// FactoryDeps groups the collaborators of FactoryUsecase
type FactoryDeps struct {
	UnitOfWork     repositories.UnitOfWork
	FactoryRepo    repositories.FactoryRepository
	DepositRepo    repositories.DepositAddressRepository
	RequestRepo    repositories.RequestRepository
	ControllerRepo repositories.ControllerRepository
	MembersRepo    repositories.MembersRepository
	MerchantRepo   repositories.MerchantRepository
	Ledger         repositories.TokenLedger
	Controller     *ControllerUsecase
	Programs       derive.Programs
	// StrictCancel rejects cancellation of requests that are no longer pending.
	StrictCancel bool
}

// FactoryUsecase runs the mint and burn request lifecycle
type FactoryUsecase struct {
	FactoryDeps
}

// NewFactoryUsecase creates a new factory usecase
func NewFactoryUsecase(deps FactoryDeps) *FactoryUsecase {
	return &FactoryUsecase{FactoryDeps: deps}
}

// Initialize creates the factory of controllerID. Only the controller owner
// may do so; admin defaults to the caller.
func (u *FactoryUsecase) Initialize(ctx context.Context, caller, controllerID, admin common.Address) (*entities.FactoryState, error) {
	if isZero(admin) {
		admin = caller
	}
	id, _ := u.Programs.FactoryID(controllerID)

	var factory *entities.FactoryState
	err := u.UnitOfWork.Exclusive(ctx, []common.Address{id}, func(ctx context.Context) error {
		controller, err := u.ControllerRepo.GetByID(ctx, controllerID)
		if err != nil {
			return mapStoreErr(err, "controller")
		}
		if controller.Owner != caller {
			return domainerrors.Unauthorized("sender is not the controller owner")
		}
		factory = &entities.FactoryState{
			ID:           id,
			Admin:        admin,
			ControllerID: controllerID,
			TokenID:      controller.TokenID,
		}
		return mapStoreErr(u.FactoryRepo.Create(ctx, factory), "factory")
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "factory initialized",
		zap.String("factory_id", id.Hex()),
		zap.String("controller_id", controllerID.Hex()),
		zap.String("admin", admin.Hex()),
	)
	return factory, nil
}

// SetCustodianDepositAddress binds where merchant sends the backing asset.
// The merchant or the registry custodian may set it.
func (u *FactoryUsecase) SetCustodianDepositAddress(ctx context.Context, caller, factoryID, merchant common.Address, address string) (*entities.DepositAddress, error) {
	id, proof := u.Programs.CustodianDepositID(factoryID, merchant)
	deposit := &entities.DepositAddress{
		ID:        id,
		FactoryID: factoryID,
		Merchant:  merchant,
		Kind:      entities.DepositAddressCustodian,
		Address:   address,
		Proof:     proof.Hex(),
	}

	err := u.UnitOfWork.Exclusive(ctx, []common.Address{id}, func(ctx context.Context) error {
		factory, err := u.factory(ctx, factoryID)
		if err != nil {
			return err
		}
		members, err := u.verifiedMerchant(ctx, factory, merchant)
		if err != nil {
			return err
		}
		if caller != merchant && !(members.HasCustodian() && caller == members.Custodian) {
			return domainerrors.Unauthorized("sender is neither the merchant nor the custodian")
		}
		if blank(address) {
			return domainerrors.InvalidDepositAddress("deposit address is empty")
		}
		return mapStoreErr(u.DepositRepo.Upsert(ctx, deposit), "deposit address")
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "custodian deposit address set",
		zap.String("factory_id", factoryID.Hex()),
		zap.String("merchant", merchant.Hex()),
	)
	return deposit, nil
}

// SetMerchantDepositAddress binds where the custodian returns the asset to caller
func (u *FactoryUsecase) SetMerchantDepositAddress(ctx context.Context, caller, factoryID common.Address, address string) (*entities.DepositAddress, error) {
	id, proof := u.Programs.MerchantDepositID(factoryID, caller)
	deposit := &entities.DepositAddress{
		ID:        id,
		FactoryID: factoryID,
		Merchant:  caller,
		Kind:      entities.DepositAddressMerchant,
		Address:   address,
		Proof:     proof.Hex(),
	}

	err := u.UnitOfWork.Exclusive(ctx, []common.Address{id}, func(ctx context.Context) error {
		factory, err := u.factory(ctx, factoryID)
		if err != nil {
			return err
		}
		if _, err := u.verifiedMerchant(ctx, factory, caller); err != nil {
			return err
		}
		if blank(address) {
			return domainerrors.InvalidDepositAddress("deposit address is empty")
		}
		return mapStoreErr(u.DepositRepo.Upsert(ctx, deposit), "deposit address")
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "merchant deposit address set",
		zap.String("factory_id", factoryID.Hex()),
		zap.String("merchant", caller.Hex()),
	)
	return deposit, nil
}

// AddMintRequest records that caller sent amount of the backing asset in txid
func (u *FactoryUsecase) AddMintRequest(ctx context.Context, caller, factoryID common.Address, txid, depositAddress string, amount uint64) (*entities.Request, error) {
	id, proof := u.Programs.MintRequestID(factoryID, txid)

	var request *entities.Request
	err := u.UnitOfWork.Exclusive(ctx, []common.Address{factoryID, id}, func(ctx context.Context) error {
		factory, err := u.factory(ctx, factoryID)
		if err != nil {
			return err
		}
		if _, err := u.verifiedMerchant(ctx, factory, caller); err != nil {
			return err
		}

		depositID, _ := u.Programs.CustodianDepositID(factoryID, caller)
		deposit, err := u.DepositRepo.GetByID(ctx, depositID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return domainerrors.InvalidDepositAddress("no custodian deposit address is bound")
			}
			return mapStoreErr(err, "deposit address")
		}
		if deposit.Address != depositAddress {
			return domainerrors.InvalidDepositAddress("deposit address does not match the bound custodian address")
		}
		if blank(txid) {
			return domainerrors.InvalidTxid("txid is empty")
		}
		if err := checkAmount(amount); err != nil {
			return err
		}

		factory.MintRequestCount++
		request = &entities.Request{
			ID:             id,
			FactoryID:      factoryID,
			Kind:           entities.RequestKindMint,
			Requester:      caller,
			Amount:         amount,
			DepositAddress: depositAddress,
			Txid:           txid,
			Nonce:          factory.MintRequestCount,
			Timestamp:      nowUnix(),
			Status:         entities.RequestStatusPending,
			Proof:          proof.Hex(),
		}
		if err := u.RequestRepo.Create(ctx, request); err != nil {
			return mapStoreErr(err, "mint request")
		}
		return mapStoreErr(u.FactoryRepo.Update(ctx, factory), "factory")
	})
	if err != nil {
		return nil, err
	}

	u.transitioned(ctx, request)
	return request, nil
}

// CancelMintRequest withdraws a mint request of caller
func (u *FactoryUsecase) CancelMintRequest(ctx context.Context, caller, factoryID common.Address, txid string) (*entities.Request, error) {
	id, _ := u.Programs.MintRequestID(factoryID, txid)

	var request *entities.Request
	err := u.UnitOfWork.Exclusive(ctx, []common.Address{id}, func(ctx context.Context) error {
		factory, err := u.factory(ctx, factoryID)
		if err != nil {
			return err
		}
		if _, err := u.verifiedMerchant(ctx, factory, caller); err != nil {
			return err
		}
		request, err = u.request(ctx, id, "mint request")
		if err != nil {
			return err
		}
		if request.Requester != caller {
			return domainerrors.Unauthorized("sender did not create this request")
		}
		if u.StrictCancel && request.Status != entities.RequestStatusPending {
			return domainerrors.InvalidStatus("request is not pending")
		}
		return u.resolve(ctx, request, entities.RequestStatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	u.transitioned(ctx, request)
	return request, nil
}

// ConfirmMintRequest approves a pending mint and credits the requester's
// token account through the controller, all in one unit.
func (u *FactoryUsecase) ConfirmMintRequest(ctx context.Context, caller, factoryID common.Address, txid string) (*entities.Request, error) {
	id, _ := u.Programs.MintRequestID(factoryID, txid)

	var request *entities.Request
	err := u.UnitOfWork.Exclusive(ctx, []common.Address{id}, func(ctx context.Context) error {
		factory, err := u.adminFactory(ctx, caller, factoryID)
		if err != nil {
			return err
		}
		request, err = u.pendingRequest(ctx, id, "mint request")
		if err != nil {
			return err
		}

		destination, _ := u.Programs.TokenAccountID(factory.TokenID, request.Requester)
		account, err := u.Ledger.GetAccount(ctx, destination)
		if err != nil {
			return mapStoreErr(err, "requester token account")
		}
		if account.Owner != request.Requester {
			return domainerrors.Unauthorized("destination account is not owned by the requester")
		}

		if err := u.resolve(ctx, request, entities.RequestStatusApproved); err != nil {
			return err
		}
		return u.Controller.Mint(ctx, factory.ID, factory.ControllerID, factory.TokenID, destination, request.Amount)
	})
	if err != nil {
		return nil, err
	}

	u.transitioned(ctx, request)
	return request, nil
}

// RejectMintRequest declines a pending mint
func (u *FactoryUsecase) RejectMintRequest(ctx context.Context, caller, factoryID common.Address, txid string) (*entities.Request, error) {
	id, _ := u.Programs.MintRequestID(factoryID, txid)

	var request *entities.Request
	err := u.UnitOfWork.Exclusive(ctx, []common.Address{id}, func(ctx context.Context) error {
		if _, err := u.adminFactory(ctx, caller, factoryID); err != nil {
			return err
		}
		var err error
		request, err = u.pendingRequest(ctx, id, "mint request")
		if err != nil {
			return err
		}
		return u.resolve(ctx, request, entities.RequestStatusRejected)
	})
	if err != nil {
		return nil, err
	}

	u.transitioned(ctx, request)
	return request, nil
}

// AddBurnRequest burns amount from caller's token account right away and
// records the redemption for the custodian to settle off-ledger.
func (u *FactoryUsecase) AddBurnRequest(ctx context.Context, caller, factoryID common.Address, amount uint64) (*entities.Request, error) {
	var request *entities.Request
	err := u.UnitOfWork.Exclusive(ctx, []common.Address{factoryID}, func(ctx context.Context) error {
		factory, err := u.factory(ctx, factoryID)
		if err != nil {
			return err
		}
		if _, err := u.verifiedMerchant(ctx, factory, caller); err != nil {
			return err
		}
		if err := checkAmount(amount); err != nil {
			return err
		}

		depositID, _ := u.Programs.MerchantDepositID(factoryID, caller)
		deposit, err := u.DepositRepo.GetByID(ctx, depositID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return domainerrors.InvalidDepositAddress("no merchant deposit address is bound")
			}
			return mapStoreErr(err, "deposit address")
		}

		nonce := factory.BurnRequestCount + 1
		id, proof := u.Programs.BurnRequestID(factoryID, nonce)
		source, _ := u.Programs.TokenAccountID(factory.TokenID, caller)

		return u.UnitOfWork.Exclusive(ctx, []common.Address{id, factory.TokenID, source}, func(ctx context.Context) error {
			if err := u.Ledger.Burn(ctx, factory.TokenID, source, caller, amount); err != nil {
				return mapStoreErr(err, "merchant token account")
			}

			factory.BurnRequestCount = nonce
			request = &entities.Request{
				ID:             id,
				FactoryID:      factoryID,
				Kind:           entities.RequestKindBurn,
				Requester:      caller,
				Amount:         amount,
				DepositAddress: deposit.Address,
				Nonce:          nonce,
				Timestamp:      nowUnix(),
				Status:         entities.RequestStatusPending,
				Proof:          proof.Hex(),
			}
			if err := u.RequestRepo.Create(ctx, request); err != nil {
				return mapStoreErr(err, "burn request")
			}
			return mapStoreErr(u.FactoryRepo.Update(ctx, factory), "factory")
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveSupply(SupplyOpBurn, amount)
	u.transitioned(ctx, request)
	return request, nil
}

// ConfirmBurnRequest records the off-ledger redemption txid of a pending burn
func (u *FactoryUsecase) ConfirmBurnRequest(ctx context.Context, caller, factoryID common.Address, nonce uint64, txid string) (*entities.Request, error) {
	id, _ := u.Programs.BurnRequestID(factoryID, nonce)

	var request *entities.Request
	err := u.UnitOfWork.Exclusive(ctx, []common.Address{id}, func(ctx context.Context) error {
		if _, err := u.adminFactory(ctx, caller, factoryID); err != nil {
			return err
		}
		if blank(txid) {
			return domainerrors.InvalidTxid("txid is empty")
		}
		var err error
		request, err = u.pendingRequest(ctx, id, "burn request")
		if err != nil {
			return err
		}
		request.Txid = txid
		return u.resolve(ctx, request, entities.RequestStatusApproved)
	})
	if err != nil {
		return nil, err
	}

	u.transitioned(ctx, request)
	return request, nil
}

// GetFactory returns a factory by id
func (u *FactoryUsecase) GetFactory(ctx context.Context, factoryID common.Address) (*entities.FactoryState, error) {
	return u.factory(ctx, factoryID)
}

// GetMintRequest returns the mint request keyed by txid
func (u *FactoryUsecase) GetMintRequest(ctx context.Context, factoryID common.Address, txid string) (*entities.Request, error) {
	id, _ := u.Programs.MintRequestID(factoryID, txid)
	return u.request(ctx, id, "mint request")
}

// GetBurnRequest returns the burn request with nonce
func (u *FactoryUsecase) GetBurnRequest(ctx context.Context, factoryID common.Address, nonce uint64) (*entities.Request, error) {
	id, _ := u.Programs.BurnRequestID(factoryID, nonce)
	return u.request(ctx, id, "burn request")
}

// GetDepositAddress returns the binding of kind for merchant
func (u *FactoryUsecase) GetDepositAddress(ctx context.Context, factoryID common.Address, kind entities.DepositAddressKind, merchant common.Address) (*entities.DepositAddress, error) {
	var id common.Address
	switch kind {
	case entities.DepositAddressCustodian:
		id, _ = u.Programs.CustodianDepositID(factoryID, merchant)
	case entities.DepositAddressMerchant:
		id, _ = u.Programs.MerchantDepositID(factoryID, merchant)
	default:
		return nil, domainerrors.BadRequest("unknown deposit address kind")
	}
	deposit, err := u.DepositRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, "deposit address")
	}
	return deposit, nil
}

// ListRequests pages through the requests of a factory
func (u *FactoryUsecase) ListRequests(ctx context.Context, factoryID common.Address, kind entities.RequestKind, status entities.RequestStatus, requester *common.Address, page, limit int) ([]*entities.Request, utils.PaginationMeta, error) {
	if kind != "" && !kind.IsValid() {
		return nil, utils.PaginationMeta{}, domainerrors.BadRequest("unknown request kind")
	}
	if status != "" && !status.IsValid() {
		return nil, utils.PaginationMeta{}, domainerrors.BadRequest("unknown request status")
	}
	if _, err := u.factory(ctx, factoryID); err != nil {
		return nil, utils.PaginationMeta{}, err
	}

	params := pageParams(page, limit)
	items, total, err := u.RequestRepo.List(ctx, entities.RequestFilter{
		FactoryID: factoryID,
		Kind:      kind,
		Status:    status,
		Requester: requester,
		Limit:     params.Limit,
		Offset:    params.CalculateOffset(),
	})
	if err != nil {
		return nil, utils.PaginationMeta{}, mapStoreErr(err, "request")
	}
	return items, utils.CalculateMeta(int64(total), params.Page, params.Limit), nil
}

func (u *FactoryUsecase) factory(ctx context.Context, factoryID common.Address) (*entities.FactoryState, error) {
	factory, err := u.FactoryRepo.GetByID(ctx, factoryID)
	if err != nil {
		return nil, mapStoreErr(err, "factory")
	}
	return factory, nil
}

func (u *FactoryUsecase) adminFactory(ctx context.Context, caller, factoryID common.Address) (*entities.FactoryState, error) {
	factory, err := u.factory(ctx, factoryID)
	if err != nil {
		return nil, err
	}
	if factory.Admin != caller {
		return nil, domainerrors.Unauthorized("sender is not the factory admin")
	}
	return factory, nil
}

// verifiedMerchant checks that merchant is an active member of the registry
// delegated by the factory's controller and returns that registry.
func (u *FactoryUsecase) verifiedMerchant(ctx context.Context, factory *entities.FactoryState, merchant common.Address) (*entities.MembersState, error) {
	controller, err := u.ControllerRepo.GetByID(ctx, factory.ControllerID)
	if err != nil {
		return nil, mapStoreErr(err, "controller")
	}
	if isZero(controller.MembersID) {
		return nil, domainerrors.Unauthorized("controller has no members registry")
	}
	members, err := u.MembersRepo.GetByID(ctx, controller.MembersID)
	if err != nil {
		return nil, mapStoreErr(err, "members registry")
	}

	id, proof := u.Programs.MerchantID(members.ID, merchant)
	record, err := u.MerchantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthorized("sender is not a merchant")
		}
		return nil, mapStoreErr(err, "merchant")
	}
	if !record.Active || record.Merchant != merchant || derive.ProofFromHex(record.Proof) != proof {
		return nil, domainerrors.Unauthorized("merchant is not active")
	}
	return members, nil
}

func (u *FactoryUsecase) request(ctx context.Context, id common.Address, what string) (*entities.Request, error) {
	request, err := u.RequestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, what)
	}
	return request, nil
}

func (u *FactoryUsecase) pendingRequest(ctx context.Context, id common.Address, what string) (*entities.Request, error) {
	request, err := u.request(ctx, id, what)
	if err != nil {
		return nil, err
	}
	if request.Status != entities.RequestStatusPending {
		return nil, domainerrors.InvalidStatus(what + " is not pending")
	}
	return request, nil
}

func (u *FactoryUsecase) resolve(ctx context.Context, request *entities.Request, status entities.RequestStatus) error {
	request.Status = status
	request.ResolvedAt = null.TimeFrom(nowTime().UTC())
	return mapStoreErr(u.RequestRepo.Update(ctx, request), "request")
}

func (u *FactoryUsecase) transitioned(ctx context.Context, request *entities.Request) {
	metrics.ObserveTransition(string(request.Kind), string(request.Status))
	logger.Info(ctx, "request transitioned",
		zap.String("request_id", request.ID.Hex()),
		zap.String("factory_id", request.FactoryID.Hex()),
		zap.String("kind", string(request.Kind)),
		zap.String("status", string(request.Status)),
		zap.Uint64("nonce", request.Nonce),
		zap.Uint64("amount", request.Amount),
	)
}
