// Package ledger keeps wrapped token balances and supply in the database.
package ledger

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wrapchain.backend/internal/domain/entities"
	domainerrors "wrapchain.backend/internal/domain/errors"
	"wrapchain.backend/internal/infrastructure/models"
	"wrapchain.backend/internal/infrastructure/repositories"
)

// TokenLedger implements repositories.TokenLedger on GORM
type TokenLedger struct {
	db *gorm.DB
}

// NewTokenLedger creates a new token ledger
func NewTokenLedger(db *gorm.DB) *TokenLedger {
	return &TokenLedger{db: db}
}

func (l *TokenLedger) CreateToken(ctx context.Context, token *entities.Token) error {
	now := time.Now()
	m := &models.LedgerToken{
		ID:            token.ID.Hex(),
		MintAuthority: token.MintAuthority.Hex(),
		Decimals:      token.Decimals,
		Supply:        0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	res := repositories.GetDB(ctx, l.db).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrAlreadyExists
	}
	token.Supply = 0
	token.CreatedAt = now
	token.UpdatedAt = now
	return nil
}

func (l *TokenLedger) GetToken(ctx context.Context, id common.Address) (*entities.Token, error) {
	m, err := l.token(ctx, id)
	if err != nil {
		return nil, err
	}
	return &entities.Token{
		ID:            common.HexToAddress(m.ID),
		MintAuthority: common.HexToAddress(m.MintAuthority),
		Decimals:      m.Decimals,
		Supply:        m.Supply,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

// OpenAccount creates the account if it does not exist yet. Opening an
// existing account for the same token and owner is a no-op.
func (l *TokenLedger) OpenAccount(ctx context.Context, account *entities.TokenAccount) error {
	if _, err := l.token(ctx, account.TokenID); err != nil {
		return err
	}

	existing, err := l.account(ctx, account.ID)
	switch {
	case err == nil:
		if existing.TokenID != account.TokenID.Hex() || existing.Owner != account.Owner.Hex() {
			return domainerrors.ErrAlreadyExists
		}
		*account = *toAccountEntity(existing)
		return nil
	case !errors.Is(err, domainerrors.ErrNotFound):
		return err
	}

	now := time.Now()
	m := &models.TokenAccount{
		ID:        account.ID.Hex(),
		TokenID:   account.TokenID.Hex(),
		Owner:     account.Owner.Hex(),
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repositories.GetDB(ctx, l.db).Create(m).Error; err != nil {
		return err
	}
	*account = *toAccountEntity(m)
	return nil
}

func (l *TokenLedger) GetAccount(ctx context.Context, id common.Address) (*entities.TokenAccount, error) {
	m, err := l.account(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAccountEntity(m), nil
}

func (l *TokenLedger) Mint(ctx context.Context, tokenID, destination, authority common.Address, amount uint64) error {
	token, err := l.token(ctx, tokenID)
	if err != nil {
		return err
	}
	if token.MintAuthority != authority.Hex() {
		return domainerrors.Unauthorized("signer is not the mint authority")
	}

	account, err := l.account(ctx, destination)
	if err != nil {
		return err
	}
	if account.TokenID != token.ID {
		return domainerrors.TokenMismatch("destination account holds a different token")
	}
	// supply and balances are stored as signed bigint columns
	if amount > math.MaxInt64-token.Supply {
		return domainerrors.BadRequest("mint would overflow the token supply")
	}

	now := time.Now()
	db := repositories.GetDB(ctx, l.db)
	if err := db.Model(&models.LedgerToken{}).Where("id = ?", token.ID).
		Updates(map[string]interface{}{"supply": token.Supply + amount, "updated_at": now}).Error; err != nil {
		return err
	}
	return db.Model(&models.TokenAccount{}).Where("id = ?", account.ID).
		Updates(map[string]interface{}{"balance": account.Balance + amount, "updated_at": now}).Error
}

func (l *TokenLedger) Burn(ctx context.Context, tokenID, source, authority common.Address, amount uint64) error {
	token, err := l.token(ctx, tokenID)
	if err != nil {
		return err
	}

	account, err := l.account(ctx, source)
	if err != nil {
		return err
	}
	if account.TokenID != token.ID {
		return domainerrors.TokenMismatch("source account holds a different token")
	}
	if account.Owner != authority.Hex() && token.MintAuthority != authority.Hex() {
		return domainerrors.Unauthorized("signer may not burn from this account")
	}
	if account.Balance < amount {
		return domainerrors.InsufficientFunds("balance is lower than the burn amount")
	}

	now := time.Now()
	db := repositories.GetDB(ctx, l.db)
	if err := db.Model(&models.TokenAccount{}).Where("id = ?", account.ID).
		Updates(map[string]interface{}{"balance": account.Balance - amount, "updated_at": now}).Error; err != nil {
		return err
	}
	return db.Model(&models.LedgerToken{}).Where("id = ?", token.ID).
		Updates(map[string]interface{}{"supply": token.Supply - amount, "updated_at": now}).Error
}

func (l *TokenLedger) token(ctx context.Context, id common.Address) (*models.LedgerToken, error) {
	var m models.LedgerToken
	if err := repositories.GetDB(ctx, l.db).Where("id = ?", id.Hex()).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (l *TokenLedger) account(ctx context.Context, id common.Address) (*models.TokenAccount, error) {
	var m models.TokenAccount
	if err := repositories.GetDB(ctx, l.db).Where("id = ?", id.Hex()).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func toAccountEntity(m *models.TokenAccount) *entities.TokenAccount {
	return &entities.TokenAccount{
		ID:        common.HexToAddress(m.ID),
		TokenID:   common.HexToAddress(m.TokenID),
		Owner:     common.HexToAddress(m.Owner),
		Balance:   m.Balance,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
