package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"wrapchain.backend/internal/domain/entities"
	domainerrors "wrapchain.backend/internal/domain/errors"
)

func TestMembersRepository_CreateGetUpdate(t *testing.T) {
	db := newMigratedDB(t)
	repo := NewMembersRepository(db)
	ctx := context.Background()

	m := &entities.MembersState{ID: addr(1), Admin: addr(2)}
	require.NoError(t, repo.Create(ctx, m))
	require.ErrorIs(t, repo.Create(ctx, &entities.MembersState{ID: addr(1), Admin: addr(9)}), domainerrors.ErrAlreadyExists)

	got, err := repo.GetByID(ctx, addr(1))
	require.NoError(t, err)
	require.Equal(t, addr(2), got.Admin)
	require.False(t, got.HasCustodian())

	got.Custodian = addr(3)
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, addr(1))
	require.NoError(t, err)
	require.Equal(t, addr(3), got.Custodian)
	require.True(t, got.HasCustodian())

	_, err = repo.GetByID(ctx, addr(7))
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.Update(ctx, &entities.MembersState{ID: addr(7), Admin: addr(2)}), domainerrors.ErrNotFound)
}

func TestMerchantRepository_CreateUpdateList(t *testing.T) {
	db := newMigratedDB(t)
	repo := NewMerchantRepository(db)
	ctx := context.Background()

	for i := byte(10); i < 13; i++ {
		require.NoError(t, repo.Create(ctx, &entities.Merchant{
			ID:        addr(i),
			MembersID: addr(1),
			Merchant:  addr(i + 100),
			Active:    true,
			Proof:     "0x01",
		}))
	}
	require.NoError(t, repo.Create(ctx, &entities.Merchant{ID: addr(20), MembersID: addr(2), Merchant: addr(120), Active: true}))
	require.ErrorIs(t, repo.Create(ctx, &entities.Merchant{ID: addr(10), MembersID: addr(1)}), domainerrors.ErrAlreadyExists)

	got, err := repo.GetByID(ctx, addr(10))
	require.NoError(t, err)
	require.Equal(t, addr(110), got.Merchant)
	require.True(t, got.Active)

	got.Active = false
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, addr(10))
	require.NoError(t, err)
	require.False(t, got.Active)

	items, total, err := repo.ListByMembers(ctx, addr(1), 2, 0)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, items, 2)

	items, total, err = repo.ListByMembers(ctx, addr(1), 2, 2)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, items, 1)

	_, err = repo.GetByID(ctx, addr(99))
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestControllerAndFactoryRepositories(t *testing.T) {
	db := newMigratedDB(t)
	controllers := NewControllerRepository(db)
	factories := NewFactoryRepository(db)
	ctx := context.Background()

	c := &entities.ControllerState{ID: addr(1), Owner: addr(2), TokenID: addr(3)}
	require.NoError(t, controllers.Create(ctx, c))
	require.ErrorIs(t, controllers.Create(ctx, c), domainerrors.ErrAlreadyExists)

	got, err := controllers.GetByID(ctx, addr(1))
	require.NoError(t, err)
	require.Equal(t, addr(3), got.TokenID)
	require.Zero(t, got.MembersID)
	require.Zero(t, got.FactoryID)

	got.MembersID = addr(4)
	got.FactoryID = addr(5)
	require.NoError(t, controllers.Update(ctx, got))
	got, err = controllers.GetByID(ctx, addr(1))
	require.NoError(t, err)
	require.Equal(t, addr(4), got.MembersID)
	require.Equal(t, addr(5), got.FactoryID)

	f := &entities.FactoryState{ID: addr(5), Admin: addr(2), ControllerID: addr(1), TokenID: addr(3)}
	require.NoError(t, factories.Create(ctx, f))
	require.ErrorIs(t, factories.Create(ctx, f), domainerrors.ErrAlreadyExists)

	f.MintRequestCount = 2
	f.BurnRequestCount = 1
	require.NoError(t, factories.Update(ctx, f))
	gotF, err := factories.GetByID(ctx, addr(5))
	require.NoError(t, err)
	require.Equal(t, uint64(2), gotF.MintRequestCount)
	require.Equal(t, uint64(1), gotF.BurnRequestCount)

	_, err = factories.GetByID(ctx, addr(6))
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = controllers.GetByID(ctx, addr(6))
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDepositAddressRepository_UpsertOverwrites(t *testing.T) {
	db := newMigratedDB(t)
	repo := NewDepositAddressRepository(db)
	ctx := context.Background()

	d := &entities.DepositAddress{
		ID:        addr(1),
		FactoryID: addr(2),
		Merchant:  addr(3),
		Kind:      entities.DepositAddressCustodian,
		Address:   "bc1qfirst",
		Proof:     "0x01",
	}
	require.NoError(t, repo.Upsert(ctx, d))

	d.Address = "bc1qsecond"
	require.NoError(t, repo.Upsert(ctx, d))

	got, err := repo.GetByID(ctx, addr(1))
	require.NoError(t, err)
	require.Equal(t, "bc1qsecond", got.Address)
	require.Equal(t, entities.DepositAddressCustodian, got.Kind)
	require.Equal(t, addr(3), got.Merchant)

	var count int64
	require.NoError(t, db.Table("deposit_addresses").Count(&count).Error)
	require.Equal(t, int64(1), count)

	_, err = repo.GetByID(ctx, addr(9))
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRequestRepository_CreateUpdateListCount(t *testing.T) {
	db := newMigratedDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	mint := &entities.Request{
		ID:             addr(1),
		FactoryID:      addr(50),
		Kind:           entities.RequestKindMint,
		Requester:      addr(7),
		Amount:         100,
		DepositAddress: "bc1q",
		Txid:           "tx-1",
		Nonce:          1,
		Timestamp:      1700000000,
		Status:         entities.RequestStatusPending,
		Proof:          "0x01",
	}
	require.NoError(t, repo.Create(ctx, mint))
	require.ErrorIs(t, repo.Create(ctx, mint), domainerrors.ErrAlreadyExists)

	burn := &entities.Request{
		ID:        addr(2),
		FactoryID: addr(50),
		Kind:      entities.RequestKindBurn,
		Requester: addr(8),
		Amount:    40,
		Nonce:     1,
		Status:    entities.RequestStatusPending,
	}
	require.NoError(t, repo.Create(ctx, burn))
	require.NoError(t, repo.Create(ctx, &entities.Request{
		ID: addr(3), FactoryID: addr(51), Kind: entities.RequestKindMint, Requester: addr(7), Amount: 1, Nonce: 1, Status: entities.RequestStatusPending,
	}))

	counts, err := repo.CountPending(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), counts[entities.RequestKindMint])
	require.Equal(t, int64(1), counts[entities.RequestKindBurn])

	resolved := time.Unix(1700000100, 0).UTC()
	burn.Status = entities.RequestStatusApproved
	burn.Txid = "redeem-1"
	burn.ResolvedAt = null.TimeFrom(resolved)
	require.NoError(t, repo.Update(ctx, burn))

	got, err := repo.GetByID(ctx, addr(2))
	require.NoError(t, err)
	require.Equal(t, entities.RequestStatusApproved, got.Status)
	require.Equal(t, "redeem-1", got.Txid)
	require.True(t, got.ResolvedAt.Valid)
	require.True(t, resolved.Equal(got.ResolvedAt.Time))

	items, total, err := repo.List(ctx, entities.RequestFilter{FactoryID: addr(50), Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, items, 2)

	requester := addr(7)
	items, total, err = repo.List(ctx, entities.RequestFilter{
		FactoryID: addr(50),
		Kind:      entities.RequestKindMint,
		Status:    entities.RequestStatusPending,
		Requester: &requester,
		Limit:     10,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, addr(1), items[0].ID)
	require.Equal(t, "tx-1", items[0].Txid)
	require.Equal(t, uint64(1700000000), items[0].Timestamp)

	_, err = repo.GetByID(ctx, addr(99))
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.Update(ctx, &entities.Request{ID: addr(99), Status: entities.RequestStatusCancelled}), domainerrors.ErrNotFound)
}

func TestRepositories_DBErrorBranches(t *testing.T) {
	db := newTestDB(t)
	// intentionally skip migrations
	ctx := context.Background()

	_, err := NewMembersRepository(db).GetByID(ctx, addr(1))
	require.Error(t, err)
	require.NotErrorIs(t, err, domainerrors.ErrNotFound)
	require.Error(t, NewMerchantRepository(db).Create(ctx, &entities.Merchant{ID: addr(1)}))
	_, _, err = NewMerchantRepository(db).ListByMembers(ctx, addr(1), 10, 0)
	require.Error(t, err)
	require.Error(t, NewControllerRepository(db).Update(ctx, &entities.ControllerState{ID: addr(1)}))
	require.Error(t, NewDepositAddressRepository(db).Upsert(ctx, &entities.DepositAddress{ID: addr(1)}))
	_, _, err = NewRequestRepository(db).List(ctx, entities.RequestFilter{FactoryID: addr(1)})
	require.Error(t, err)
	_, err = NewRequestRepository(db).CountPending(ctx)
	require.Error(t, err)
}
