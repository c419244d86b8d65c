package repositories

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"

	"wrapchain.backend/internal/domain/entities"
	"wrapchain.backend/internal/infrastructure/models"
)

// FactoryRepository implements request ledger data operations
type FactoryRepository struct {
	db *gorm.DB
}

// NewFactoryRepository creates a new factory repository
func NewFactoryRepository(db *gorm.DB) *FactoryRepository {
	return &FactoryRepository{db: db}
}

func (r *FactoryRepository) Create(ctx context.Context, factory *entities.FactoryState) error {
	now := time.Now()
	m := &models.FactoryState{
		ID:               addressKey(factory.ID),
		Admin:            addressKey(factory.Admin),
		ControllerID:     addressKey(factory.ControllerID),
		TokenID:          addressKey(factory.TokenID),
		MintRequestCount: factory.MintRequestCount,
		BurnRequestCount: factory.BurnRequestCount,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := createOnce(GetDB(ctx, r.db), m); err != nil {
		return err
	}
	factory.CreatedAt = now
	factory.UpdatedAt = now
	return nil
}

func (r *FactoryRepository) GetByID(ctx context.Context, id common.Address) (*entities.FactoryState, error) {
	var m models.FactoryState
	if err := GetDB(ctx, r.db).Where("id = ?", addressKey(id)).First(&m).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &entities.FactoryState{
		ID:               parseAddress(m.ID),
		Admin:            parseAddress(m.Admin),
		ControllerID:     parseAddress(m.ControllerID),
		TokenID:          parseAddress(m.TokenID),
		MintRequestCount: m.MintRequestCount,
		BurnRequestCount: m.BurnRequestCount,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}, nil
}

// Update persists the admin and the request counters
func (r *FactoryRepository) Update(ctx context.Context, factory *entities.FactoryState) error {
	factory.UpdatedAt = time.Now()
	return updateByID(GetDB(ctx, r.db), &models.FactoryState{}, addressKey(factory.ID), map[string]interface{}{
		"admin":              addressKey(factory.Admin),
		"mint_request_count": factory.MintRequestCount,
		"burn_request_count": factory.BurnRequestCount,
		"updated_at":         factory.UpdatedAt,
	})
}
