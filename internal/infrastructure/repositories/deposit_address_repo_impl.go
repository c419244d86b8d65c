package repositories

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wrapchain.backend/internal/domain/entities"
	"wrapchain.backend/internal/infrastructure/models"
)

// DepositAddressRepository implements deposit address data operations
type DepositAddressRepository struct {
	db *gorm.DB
}

// NewDepositAddressRepository creates a new deposit address repository
func NewDepositAddressRepository(db *gorm.DB) *DepositAddressRepository {
	return &DepositAddressRepository{db: db}
}

// Upsert binds the address, replacing the previous value of an existing binding
func (r *DepositAddressRepository) Upsert(ctx context.Context, deposit *entities.DepositAddress) error {
	now := time.Now()
	m := &models.DepositAddress{
		ID:        addressKey(deposit.ID),
		FactoryID: addressKey(deposit.FactoryID),
		Merchant:  addressKey(deposit.Merchant),
		Kind:      string(deposit.Kind),
		Address:   deposit.Address,
		Proof:     deposit.Proof,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"address", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	deposit.UpdatedAt = now
	return nil
}

func (r *DepositAddressRepository) GetByID(ctx context.Context, id common.Address) (*entities.DepositAddress, error) {
	var m models.DepositAddress
	if err := GetDB(ctx, r.db).Where("id = ?", addressKey(id)).First(&m).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &entities.DepositAddress{
		ID:        parseAddress(m.ID),
		FactoryID: parseAddress(m.FactoryID),
		Merchant:  parseAddress(m.Merchant),
		Kind:      entities.DepositAddressKind(m.Kind),
		Address:   m.Address,
		Proof:     m.Proof,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}
