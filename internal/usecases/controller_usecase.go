package usecases

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"wrapchain.backend/internal/domain/entities"
	domainerrors "wrapchain.backend/internal/domain/errors"
	"wrapchain.backend/internal/domain/repositories"
	"wrapchain.backend/pkg/derive"
	"wrapchain.backend/pkg/logger"
	"wrapchain.backend/pkg/metrics"
)

// ControllerUsecase gates supply changes of the wrapped token. It is the
// token's mint authority and only obeys its delegated factory.
type ControllerUsecase struct {
	uow            repositories.UnitOfWork
	controllerRepo repositories.ControllerRepository
	membersRepo    repositories.MembersRepository
	factoryRepo    repositories.FactoryRepository
	ledger         repositories.TokenLedger
	programs       derive.Programs
}

// NewControllerUsecase creates a new controller usecase
func NewControllerUsecase(
	uow repositories.UnitOfWork,
	controllerRepo repositories.ControllerRepository,
	membersRepo repositories.MembersRepository,
	factoryRepo repositories.FactoryRepository,
	ledger repositories.TokenLedger,
	programs derive.Programs,
) *ControllerUsecase {
	return &ControllerUsecase{
		uow:            uow,
		controllerRepo: controllerRepo,
		membersRepo:    membersRepo,
		factoryRepo:    factoryRepo,
		ledger:         ledger,
		programs:       programs,
	}
}

// Initialize creates the controller of tokenID owned by caller
func (u *ControllerUsecase) Initialize(ctx context.Context, caller, tokenID common.Address) (*entities.ControllerState, error) {
	id, _ := u.programs.ControllerID(caller, tokenID)
	controller := &entities.ControllerState{ID: id, Owner: caller, TokenID: tokenID}

	err := u.uow.Exclusive(ctx, []common.Address{id}, func(ctx context.Context) error {
		token, err := u.ledger.GetToken(ctx, tokenID)
		if err != nil {
			return mapStoreErr(err, "token")
		}
		if token.MintAuthority != id {
			return domainerrors.Unauthorized("token mint authority is not the controller")
		}
		return mapStoreErr(u.controllerRepo.Create(ctx, controller), "controller")
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "controller initialized",
		zap.String("controller_id", id.Hex()),
		zap.String("owner", caller.Hex()),
		zap.String("token_id", tokenID.Hex()),
	)
	return controller, nil
}

// SetMembers delegates merchant verification to a registry
func (u *ControllerUsecase) SetMembers(ctx context.Context, caller, controllerID, membersID common.Address) (*entities.ControllerState, error) {
	return u.update(ctx, caller, controllerID, func(ctx context.Context, controller *entities.ControllerState) error {
		if _, err := u.membersRepo.GetByID(ctx, membersID); err != nil {
			return mapStoreErr(err, "members registry")
		}
		controller.MembersID = membersID
		return nil
	})
}

// SetFactory delegates the right to mint and burn to a factory
func (u *ControllerUsecase) SetFactory(ctx context.Context, caller, controllerID, factoryID common.Address) (*entities.ControllerState, error) {
	return u.update(ctx, caller, controllerID, func(ctx context.Context, controller *entities.ControllerState) error {
		if _, err := u.factoryRepo.GetByID(ctx, factoryID); err != nil {
			return mapStoreErr(err, "factory")
		}
		controller.FactoryID = factoryID
		return nil
	})
}

func (u *ControllerUsecase) update(ctx context.Context, caller, controllerID common.Address, apply func(context.Context, *entities.ControllerState) error) (*entities.ControllerState, error) {
	var controller *entities.ControllerState
	err := u.uow.Exclusive(ctx, []common.Address{controllerID}, func(ctx context.Context) error {
		var err error
		controller, err = u.controllerRepo.GetByID(ctx, controllerID)
		if err != nil {
			return mapStoreErr(err, "controller")
		}
		if controller.Owner != caller {
			return domainerrors.Unauthorized("sender is not the controller owner")
		}
		if err := apply(ctx, controller); err != nil {
			return err
		}
		return mapStoreErr(u.controllerRepo.Update(ctx, controller), "controller")
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "controller updated",
		zap.String("controller_id", controllerID.Hex()),
		zap.String("members_id", controller.MembersID.Hex()),
		zap.String("factory_id", controller.FactoryID.Hex()),
	)
	return controller, nil
}

// Mint credits destination on behalf of the delegated factory
func (u *ControllerUsecase) Mint(ctx context.Context, caller, controllerID, tokenID, destination common.Address, amount uint64) error {
	return u.changeSupply(ctx, SupplyOpMint, caller, controllerID, tokenID, destination, amount)
}

// Burn debits source on behalf of the delegated factory
func (u *ControllerUsecase) Burn(ctx context.Context, caller, controllerID, tokenID, source common.Address, amount uint64) error {
	return u.changeSupply(ctx, SupplyOpBurn, caller, controllerID, tokenID, source, amount)
}

func (u *ControllerUsecase) changeSupply(ctx context.Context, op string, caller, controllerID, tokenID, account common.Address, amount uint64) error {
	err := u.uow.Exclusive(ctx, []common.Address{tokenID, account}, func(ctx context.Context) error {
		controller, err := u.controllerRepo.GetByID(ctx, controllerID)
		if err != nil {
			return mapStoreErr(err, "controller")
		}
		if isZero(controller.FactoryID) || controller.FactoryID != caller {
			return domainerrors.Unauthorized("sender is not the delegated factory")
		}
		if controller.TokenID != tokenID {
			return domainerrors.TokenMismatch("token is not managed by this controller")
		}

		if op == SupplyOpMint {
			err = u.ledger.Mint(ctx, tokenID, account, controller.ID, amount)
		} else {
			err = u.ledger.Burn(ctx, tokenID, account, controller.ID, amount)
		}
		return mapStoreErr(err, "token account")
	})
	if err != nil {
		return err
	}

	metrics.ObserveSupply(op, amount)
	logger.Info(ctx, "supply changed",
		zap.String("op", op),
		zap.String("controller_id", controllerID.Hex()),
		zap.String("account", account.Hex()),
		zap.Uint64("amount", amount),
	)
	return nil
}

// GetController returns a controller by id
func (u *ControllerUsecase) GetController(ctx context.Context, controllerID common.Address) (*entities.ControllerState, error) {
	controller, err := u.controllerRepo.GetByID(ctx, controllerID)
	if err != nil {
		return nil, mapStoreErr(err, "controller")
	}
	return controller, nil
}
