package repositories

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"

	"wrapchain.backend/internal/domain/entities"
	"wrapchain.backend/internal/infrastructure/models"
)

// MerchantRepository implements merchant data operations
type MerchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository creates a new merchant repository
func NewMerchantRepository(db *gorm.DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

// Create creates a new merchant record
func (r *MerchantRepository) Create(ctx context.Context, merchant *entities.Merchant) error {
	now := time.Now()
	m := &models.Merchant{
		ID:        addressKey(merchant.ID),
		MembersID: addressKey(merchant.MembersID),
		Merchant:  addressKey(merchant.Merchant),
		Active:    merchant.Active,
		Proof:     merchant.Proof,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := createOnce(GetDB(ctx, r.db), m); err != nil {
		return err
	}
	merchant.CreatedAt = now
	merchant.UpdatedAt = now
	return nil
}

// GetByID gets a merchant by its derived identifier
func (r *MerchantRepository) GetByID(ctx context.Context, id common.Address) (*entities.Merchant, error) {
	var m models.Merchant
	if err := GetDB(ctx, r.db).Where("id = ?", addressKey(id)).First(&m).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return r.toEntity(&m), nil
}

// Update persists the active flag of a merchant
func (r *MerchantRepository) Update(ctx context.Context, merchant *entities.Merchant) error {
	merchant.UpdatedAt = time.Now()
	return updateByID(GetDB(ctx, r.db), &models.Merchant{}, addressKey(merchant.ID), map[string]interface{}{
		"active":     merchant.Active,
		"updated_at": merchant.UpdatedAt,
	})
}

// ListByMembers lists the merchants of one registry, newest first
func (r *MerchantRepository) ListByMembers(ctx context.Context, membersID common.Address, limit, offset int) ([]*entities.Merchant, int, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&models.Merchant{}).
		Where("members_id = ?", addressKey(membersID)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Merchant
	if err := db.Where("members_id = ?", addressKey(membersID)).
		Order("created_at DESC, id").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	merchants := make([]*entities.Merchant, 0, len(ms))
	for i := range ms {
		merchants = append(merchants, r.toEntity(&ms[i]))
	}
	return merchants, int(total), nil
}

func (r *MerchantRepository) toEntity(m *models.Merchant) *entities.Merchant {
	return &entities.Merchant{
		ID:        parseAddress(m.ID),
		MembersID: parseAddress(m.MembersID),
		Merchant:  parseAddress(m.Merchant),
		Active:    m.Active,
		Proof:     m.Proof,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
