package usecases

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"wrapchain.backend/internal/domain/entities"
	domainerrors "wrapchain.backend/internal/domain/errors"
	"wrapchain.backend/internal/domain/repositories"
	"wrapchain.backend/pkg/derive"
	"wrapchain.backend/pkg/logger"
)

// CreateTokenInput describes a new wrapped token. A nil ID is generated; a
// nil MintAuthority makes the controller owned by the caller the authority.
type CreateTokenInput struct {
	ID            *common.Address
	MintAuthority *common.Address
	Decimals      uint8
}

// TokenUsecase exposes the token ledger
type TokenUsecase struct {
	uow      repositories.UnitOfWork
	ledger   repositories.TokenLedger
	programs derive.Programs
}

// NewTokenUsecase creates a new token usecase
func NewTokenUsecase(uow repositories.UnitOfWork, ledger repositories.TokenLedger, programs derive.Programs) *TokenUsecase {
	return &TokenUsecase{uow: uow, ledger: ledger, programs: programs}
}

// CreateToken registers a token with zero supply
func (u *TokenUsecase) CreateToken(ctx context.Context, caller common.Address, input CreateTokenInput) (*entities.Token, error) {
	var id common.Address
	if input.ID != nil {
		id = *input.ID
	} else {
		seed := uuid.New()
		id, _ = derive.Address(u.programs.Token, "token", caller.Bytes(), seed[:])
	}
	if isZero(id) {
		return nil, domainerrors.BadRequest("token id is required")
	}

	authority, _ := u.programs.ControllerID(caller, id)
	if input.MintAuthority != nil {
		authority = *input.MintAuthority
	}

	token := &entities.Token{ID: id, MintAuthority: authority, Decimals: input.Decimals}
	err := u.uow.Exclusive(ctx, []common.Address{id}, func(ctx context.Context) error {
		return mapStoreErr(u.ledger.CreateToken(ctx, token), "token")
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "token created",
		zap.String("token_id", id.Hex()),
		zap.String("mint_authority", authority.Hex()),
	)
	return token, nil
}

// OpenAccount opens the token account of owner. Opening it again is a no-op.
func (u *TokenUsecase) OpenAccount(ctx context.Context, tokenID, owner common.Address) (*entities.TokenAccount, error) {
	if isZero(owner) {
		return nil, domainerrors.BadRequest("owner is required")
	}
	id, _ := u.programs.TokenAccountID(tokenID, owner)
	account := &entities.TokenAccount{ID: id, TokenID: tokenID, Owner: owner}

	err := u.uow.Exclusive(ctx, []common.Address{id}, func(ctx context.Context) error {
		return mapStoreErr(u.ledger.OpenAccount(ctx, account), "token account")
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetToken returns a token by id
func (u *TokenUsecase) GetToken(ctx context.Context, tokenID common.Address) (*entities.Token, error) {
	token, err := u.ledger.GetToken(ctx, tokenID)
	if err != nil {
		return nil, mapStoreErr(err, "token")
	}
	return token, nil
}

// GetAccount returns the token account of owner
func (u *TokenUsecase) GetAccount(ctx context.Context, tokenID, owner common.Address) (*entities.TokenAccount, error) {
	id, _ := u.programs.TokenAccountID(tokenID, owner)
	account, err := u.ledger.GetAccount(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, "token account")
	}
	return account, nil
}
