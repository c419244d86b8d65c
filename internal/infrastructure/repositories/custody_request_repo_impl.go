package repositories

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"wrapchain.backend/internal/domain/entities"
	"wrapchain.backend/internal/infrastructure/models"
)

// RequestRepositoryImpl implements RequestRepository
type RequestRepositoryImpl struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepositoryImpl {
	return &RequestRepositoryImpl{db: db}
}

func (r *RequestRepositoryImpl) Create(ctx context.Context, req *entities.Request) error {
	now := time.Now()
	m := &models.Request{
		ID:             addressKey(req.ID),
		FactoryID:      addressKey(req.FactoryID),
		Kind:           string(req.Kind),
		Requester:      addressKey(req.Requester),
		Amount:         req.Amount,
		DepositAddress: req.DepositAddress,
		Txid:           req.Txid,
		Nonce:          req.Nonce,
		Timestamp:      req.Timestamp,
		Status:         string(req.Status),
		Proof:          req.Proof,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.ResolvedAt.Valid {
		m.ResolvedAt = &req.ResolvedAt.Time
	}
	if err := createOnce(GetDB(ctx, r.db), m); err != nil {
		return err
	}
	req.CreatedAt = now
	req.UpdatedAt = now
	return nil
}

func (r *RequestRepositoryImpl) GetByID(ctx context.Context, id common.Address) (*entities.Request, error) {
	var m models.Request
	if err := GetDB(ctx, r.db).Where("id = ?", addressKey(id)).First(&m).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return r.toEntity(&m), nil
}

// Update persists the mutable part of a request: its status and, for burns,
// the redemption txid.
func (r *RequestRepositoryImpl) Update(ctx context.Context, req *entities.Request) error {
	req.UpdatedAt = time.Now()
	fields := map[string]interface{}{
		"status":     string(req.Status),
		"txid":       req.Txid,
		"updated_at": req.UpdatedAt,
	}
	if req.ResolvedAt.Valid {
		fields["resolved_at"] = req.ResolvedAt.Time
	}
	return updateByID(GetDB(ctx, r.db), &models.Request{}, addressKey(req.ID), fields)
}

func (r *RequestRepositoryImpl) List(ctx context.Context, filter entities.RequestFilter) ([]*entities.Request, int, error) {
	query := GetDB(ctx, r.db).Model(&models.Request{}).Where("factory_id = ?", addressKey(filter.FactoryID))
	if filter.Kind != "" {
		query = query.Where("kind = ?", string(filter.Kind))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Requester != nil {
		query = query.Where("requester = ?", addressKey(*filter.Requester))
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}

	var ms []models.Request
	if err := query.Order("created_at DESC, nonce DESC").
		Limit(limit).Offset(filter.Offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	requests := make([]*entities.Request, 0, len(ms))
	for i := range ms {
		requests = append(requests, r.toEntity(&ms[i]))
	}
	return requests, int(total), nil
}

// CountPending counts pending requests per kind across all factories
func (r *RequestRepositoryImpl) CountPending(ctx context.Context) (map[entities.RequestKind]int64, error) {
	var rows []struct {
		Kind  string
		Total int64
	}
	if err := GetDB(ctx, r.db).Model(&models.Request{}).
		Select("kind, COUNT(*) AS total").
		Where("status = ?", string(entities.RequestStatusPending)).
		Group("kind").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[entities.RequestKind]int64{
		entities.RequestKindMint: 0,
		entities.RequestKindBurn: 0,
	}
	for _, row := range rows {
		counts[entities.RequestKind(row.Kind)] = row.Total
	}
	return counts, nil
}

func (r *RequestRepositoryImpl) toEntity(m *models.Request) *entities.Request {
	req := &entities.Request{
		ID:             parseAddress(m.ID),
		FactoryID:      parseAddress(m.FactoryID),
		Kind:           entities.RequestKind(m.Kind),
		Requester:      parseAddress(m.Requester),
		Amount:         m.Amount,
		DepositAddress: m.DepositAddress,
		Txid:           m.Txid,
		Nonce:          m.Nonce,
		Timestamp:      m.Timestamp,
		Status:         entities.RequestStatus(m.Status),
		Proof:          m.Proof,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.ResolvedAt != nil {
		req.ResolvedAt = null.TimeFrom(*m.ResolvedAt)
	}
	return req
}
