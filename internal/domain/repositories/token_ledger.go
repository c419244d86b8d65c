package repositories

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"wrapchain.backend/internal/domain/entities"
)

// TokenLedger owns balances and the primitive supply operations
type TokenLedger interface {
	CreateToken(ctx context.Context, token *entities.Token) error
	GetToken(ctx context.Context, id common.Address) (*entities.Token, error)
	OpenAccount(ctx context.Context, account *entities.TokenAccount) error
	GetAccount(ctx context.Context, id common.Address) (*entities.TokenAccount, error)
	// Mint credits destination; authority must be the token's mint authority.
	Mint(ctx context.Context, tokenID, destination, authority common.Address, amount uint64) error
	// Burn debits source; authority must own the account or be the mint authority.
	Burn(ctx context.Context, tokenID, source, authority common.Address, amount uint64) error
}
