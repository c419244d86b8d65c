package repositories

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"wrapchain.backend/internal/domain/entities"
)

// Every Create fails with ErrAlreadyExists when the identifier is taken and
// every Get fails with ErrNotFound when it is absent.

// MembersRepository stores membership registries
type MembersRepository interface {
	Create(ctx context.Context, members *entities.MembersState) error
	GetByID(ctx context.Context, id common.Address) (*entities.MembersState, error)
	Update(ctx context.Context, members *entities.MembersState) error
}

// MerchantRepository stores merchant records
type MerchantRepository interface {
	Create(ctx context.Context, merchant *entities.Merchant) error
	GetByID(ctx context.Context, id common.Address) (*entities.Merchant, error)
	Update(ctx context.Context, merchant *entities.Merchant) error
	ListByMembers(ctx context.Context, membersID common.Address, limit, offset int) ([]*entities.Merchant, int, error)
}

// ControllerRepository stores controller records
type ControllerRepository interface {
	Create(ctx context.Context, controller *entities.ControllerState) error
	GetByID(ctx context.Context, id common.Address) (*entities.ControllerState, error)
	Update(ctx context.Context, controller *entities.ControllerState) error
}

// FactoryRepository stores request ledger records
type FactoryRepository interface {
	Create(ctx context.Context, factory *entities.FactoryState) error
	GetByID(ctx context.Context, id common.Address) (*entities.FactoryState, error)
	Update(ctx context.Context, factory *entities.FactoryState) error
}

// DepositAddressRepository stores deposit address bindings
type DepositAddressRepository interface {
	// Upsert creates the binding or overwrites the address of an existing one.
	Upsert(ctx context.Context, deposit *entities.DepositAddress) error
	GetByID(ctx context.Context, id common.Address) (*entities.DepositAddress, error)
}

// RequestRepository stores mint and burn requests
type RequestRepository interface {
	Create(ctx context.Context, request *entities.Request) error
	GetByID(ctx context.Context, id common.Address) (*entities.Request, error)
	Update(ctx context.Context, request *entities.Request) error
	List(ctx context.Context, filter entities.RequestFilter) ([]*entities.Request, int, error)
	CountPending(ctx context.Context) (map[entities.RequestKind]int64, error)
}
