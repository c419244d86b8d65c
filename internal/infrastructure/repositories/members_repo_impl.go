package repositories

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"

	"wrapchain.backend/internal/domain/entities"
	"wrapchain.backend/internal/infrastructure/models"
)

// MembersRepository implements membership registry data operations
type MembersRepository struct {
	db *gorm.DB
}

// NewMembersRepository creates a new members repository
func NewMembersRepository(db *gorm.DB) *MembersRepository {
	return &MembersRepository{db: db}
}

func (r *MembersRepository) Create(ctx context.Context, members *entities.MembersState) error {
	now := time.Now()
	m := &models.MembersState{
		ID:        addressKey(members.ID),
		Admin:     addressKey(members.Admin),
		Custodian: optionalAddressKey(members.Custodian),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := createOnce(GetDB(ctx, r.db), m); err != nil {
		return err
	}
	members.CreatedAt = now
	members.UpdatedAt = now
	return nil
}

func (r *MembersRepository) GetByID(ctx context.Context, id common.Address) (*entities.MembersState, error) {
	var m models.MembersState
	if err := GetDB(ctx, r.db).Where("id = ?", addressKey(id)).First(&m).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return r.toEntity(&m), nil
}

func (r *MembersRepository) Update(ctx context.Context, members *entities.MembersState) error {
	members.UpdatedAt = time.Now()
	return updateByID(GetDB(ctx, r.db), &models.MembersState{}, addressKey(members.ID), map[string]interface{}{
		"admin":      addressKey(members.Admin),
		"custodian":  optionalAddressKey(members.Custodian),
		"updated_at": members.UpdatedAt,
	})
}

func (r *MembersRepository) toEntity(m *models.MembersState) *entities.MembersState {
	return &entities.MembersState{
		ID:        parseAddress(m.ID),
		Admin:     parseAddress(m.Admin),
		Custodian: parseAddress(m.Custodian),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
