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
	"wrapchain.backend/pkg/utils"
)

// MembersUsecase administers the membership registry
type MembersUsecase struct {
	uow          repositories.UnitOfWork
	membersRepo  repositories.MembersRepository
	merchantRepo repositories.MerchantRepository
	programs     derive.Programs
}

// NewMembersUsecase creates a new members usecase
func NewMembersUsecase(
	uow repositories.UnitOfWork,
	membersRepo repositories.MembersRepository,
	merchantRepo repositories.MerchantRepository,
	programs derive.Programs,
) *MembersUsecase {
	return &MembersUsecase{
		uow:          uow,
		membersRepo:  membersRepo,
		merchantRepo: merchantRepo,
		programs:     programs,
	}
}

// Initialize creates the registry administered by caller
func (u *MembersUsecase) Initialize(ctx context.Context, caller common.Address) (*entities.MembersState, error) {
	id, _ := u.programs.MembersID(caller)
	members := &entities.MembersState{ID: id, Admin: caller}

	err := u.uow.Exclusive(ctx, []common.Address{id}, func(ctx context.Context) error {
		return mapStoreErr(u.membersRepo.Create(ctx, members), "members registry")
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "members registry initialized",
		zap.String("members_id", id.Hex()),
		zap.String("admin", caller.Hex()),
	)
	return members, nil
}

// SetCustodian replaces the custodian of the registry
func (u *MembersUsecase) SetCustodian(ctx context.Context, caller, membersID, custodian common.Address) (*entities.MembersState, error) {
	if isZero(custodian) {
		return nil, domainerrors.BadRequest("custodian is required")
	}

	var members *entities.MembersState
	err := u.uow.Exclusive(ctx, []common.Address{membersID}, func(ctx context.Context) error {
		var err error
		members, err = u.adminRegistry(ctx, caller, membersID)
		if err != nil {
			return err
		}
		members.Custodian = custodian
		return mapStoreErr(u.membersRepo.Update(ctx, members), "members registry")
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "custodian set",
		zap.String("members_id", membersID.Hex()),
		zap.String("custodian", custodian.Hex()),
	)
	return members, nil
}

// AddMerchant admits a merchant; the derived record id is the duplicate guard
func (u *MembersUsecase) AddMerchant(ctx context.Context, caller, membersID, merchant common.Address) (*entities.Merchant, error) {
	if isZero(merchant) {
		return nil, domainerrors.BadRequest("merchant is required")
	}

	id, proof := u.programs.MerchantID(membersID, merchant)
	record := &entities.Merchant{
		ID:        id,
		MembersID: membersID,
		Merchant:  merchant,
		Active:    true,
		Proof:     proof.Hex(),
	}

	err := u.uow.Exclusive(ctx, []common.Address{id}, func(ctx context.Context) error {
		if _, err := u.adminRegistry(ctx, caller, membersID); err != nil {
			return err
		}
		return mapStoreErr(u.merchantRepo.Create(ctx, record), "merchant")
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "merchant added",
		zap.String("members_id", membersID.Hex()),
		zap.String("merchant", merchant.Hex()),
	)
	return record, nil
}

// RemoveMerchant deactivates a merchant. The record is kept.
func (u *MembersUsecase) RemoveMerchant(ctx context.Context, caller, membersID, merchant common.Address) (*entities.Merchant, error) {
	return u.setMerchantActive(ctx, caller, membersID, merchant, false)
}

// ReactivateMerchant re-admits a previously removed merchant
func (u *MembersUsecase) ReactivateMerchant(ctx context.Context, caller, membersID, merchant common.Address) (*entities.Merchant, error) {
	return u.setMerchantActive(ctx, caller, membersID, merchant, true)
}

func (u *MembersUsecase) setMerchantActive(ctx context.Context, caller, membersID, merchant common.Address, active bool) (*entities.Merchant, error) {
	id, _ := u.programs.MerchantID(membersID, merchant)

	var record *entities.Merchant
	err := u.uow.Exclusive(ctx, []common.Address{id}, func(ctx context.Context) error {
		if _, err := u.adminRegistry(ctx, caller, membersID); err != nil {
			return err
		}
		var err error
		record, err = u.merchantRepo.GetByID(ctx, id)
		if err != nil {
			return mapStoreErr(err, "merchant")
		}
		record.Active = active
		return mapStoreErr(u.merchantRepo.Update(ctx, record), "merchant")
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "merchant status changed",
		zap.String("members_id", membersID.Hex()),
		zap.String("merchant", merchant.Hex()),
		zap.Bool("active", active),
	)
	return record, nil
}

// GetRegistry returns a registry by id
func (u *MembersUsecase) GetRegistry(ctx context.Context, membersID common.Address) (*entities.MembersState, error) {
	members, err := u.membersRepo.GetByID(ctx, membersID)
	if err != nil {
		return nil, mapStoreErr(err, "members registry")
	}
	return members, nil
}

// GetMerchant returns the merchant record of merchant in the registry
func (u *MembersUsecase) GetMerchant(ctx context.Context, membersID, merchant common.Address) (*entities.Merchant, error) {
	id, _ := u.programs.MerchantID(membersID, merchant)
	record, err := u.merchantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, "merchant")
	}
	return record, nil
}

// ListMerchants pages through the merchants of a registry
func (u *MembersUsecase) ListMerchants(ctx context.Context, membersID common.Address, page, limit int) ([]*entities.Merchant, utils.PaginationMeta, error) {
	if _, err := u.GetRegistry(ctx, membersID); err != nil {
		return nil, utils.PaginationMeta{}, err
	}

	params := pageParams(page, limit)
	items, total, err := u.merchantRepo.ListByMembers(ctx, membersID, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, mapStoreErr(err, "merchant")
	}
	return items, utils.CalculateMeta(int64(total), params.Page, params.Limit), nil
}

// adminRegistry loads the registry and checks that caller administers it.
func (u *MembersUsecase) adminRegistry(ctx context.Context, caller, membersID common.Address) (*entities.MembersState, error) {
	members, err := u.membersRepo.GetByID(ctx, membersID)
	if err != nil {
		return nil, mapStoreErr(err, "members registry")
	}
	if members.Admin != caller {
		return nil, domainerrors.Unauthorized("sender is not the registry admin")
	}
	return members, nil
}
