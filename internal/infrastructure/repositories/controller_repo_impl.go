package repositories

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"

	"wrapchain.backend/internal/domain/entities"
	"wrapchain.backend/internal/infrastructure/models"
)

// ControllerRepository implements controller data operations
type ControllerRepository struct {
	db *gorm.DB
}

// NewControllerRepository creates a new controller repository
func NewControllerRepository(db *gorm.DB) *ControllerRepository {
	return &ControllerRepository{db: db}
}

func (r *ControllerRepository) Create(ctx context.Context, controller *entities.ControllerState) error {
	now := time.Now()
	m := &models.ControllerState{
		ID:        addressKey(controller.ID),
		Owner:     addressKey(controller.Owner),
		TokenID:   addressKey(controller.TokenID),
		MembersID: optionalAddressKey(controller.MembersID),
		FactoryID: optionalAddressKey(controller.FactoryID),
		Paused:    controller.Paused,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := createOnce(GetDB(ctx, r.db), m); err != nil {
		return err
	}
	controller.CreatedAt = now
	controller.UpdatedAt = now
	return nil
}

func (r *ControllerRepository) GetByID(ctx context.Context, id common.Address) (*entities.ControllerState, error) {
	var m models.ControllerState
	if err := GetDB(ctx, r.db).Where("id = ?", addressKey(id)).First(&m).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &entities.ControllerState{
		ID:        parseAddress(m.ID),
		Owner:     parseAddress(m.Owner),
		TokenID:   parseAddress(m.TokenID),
		MembersID: parseAddress(m.MembersID),
		FactoryID: parseAddress(m.FactoryID),
		Paused:    m.Paused,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func (r *ControllerRepository) Update(ctx context.Context, controller *entities.ControllerState) error {
	controller.UpdatedAt = time.Now()
	return updateByID(GetDB(ctx, r.db), &models.ControllerState{}, addressKey(controller.ID), map[string]interface{}{
		"owner":      addressKey(controller.Owner),
		"members_id": optionalAddressKey(controller.MembersID),
		"factory_id": optionalAddressKey(controller.FactoryID),
		"paused":     controller.Paused,
		"updated_at": controller.UpdatedAt,
	})
}
