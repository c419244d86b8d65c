package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
)

// FactoryState is the request ledger of one controller
type FactoryState struct {
	ID               common.Address `json:"id"`
	Admin            common.Address `json:"admin"`
	ControllerID     common.Address `json:"controllerId"`
	TokenID          common.Address `json:"tokenId"`
	MintRequestCount uint64         `json:"mintRequestCount"`
	BurnRequestCount uint64         `json:"burnRequestCount"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// DepositAddressKind separates the two deposit address namespaces
type DepositAddressKind string

const (
	// DepositAddressCustodian is where a merchant sends the backing asset for a mint.
	DepositAddressCustodian DepositAddressKind = "custodian"
	// DepositAddressMerchant is where the custodian returns the asset after a burn.
	DepositAddressMerchant DepositAddressKind = "merchant"
)

// IsValid reports whether k is a known namespace.
func (k DepositAddressKind) IsValid() bool {
	return k == DepositAddressCustodian || k == DepositAddressMerchant
}

// DepositAddress binds an off-ledger address to a (factory, merchant) pair
type DepositAddress struct {
	ID        common.Address     `json:"id"`
	FactoryID common.Address     `json:"factoryId"`
	Merchant  common.Address     `json:"merchant"`
	Kind      DepositAddressKind `json:"kind"`
	Address   string             `json:"address"`
	Proof     string             `json:"proof"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// RequestKind represents the intent of a request
type RequestKind string

const (
	RequestKindMint RequestKind = "mint"
	RequestKindBurn RequestKind = "burn"
)

// IsValid reports whether k is a known request kind.
func (k RequestKind) IsValid() bool {
	return k == RequestKindMint || k == RequestKindBurn
}

// RequestStatus represents the status of a mint or burn request
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusCancelled RequestStatus = "cancelled"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
)

// IsValid reports whether s is a known status.
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusCancelled, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from s.
func (s RequestStatus) IsTerminal() bool {
	return s != RequestStatusPending
}

// Request is the append-only audit record of one mint or burn intent
type Request struct {
	ID             common.Address `json:"id"`
	FactoryID      common.Address `json:"factoryId"`
	Kind           RequestKind    `json:"kind"`
	Requester      common.Address `json:"requester"`
	Amount         uint64         `json:"amount"`
	DepositAddress string         `json:"depositAddress"`
	// Txid is empty for burn requests until the custodian redeems off-ledger.
	Txid       string        `json:"txid"`
	Nonce      uint64        `json:"nonce"`
	Timestamp  uint64        `json:"timestamp"`
	Status     RequestStatus `json:"status"`
	Proof      string        `json:"proof"`
	ResolvedAt null.Time     `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// RequestFilter narrows request listings
type RequestFilter struct {
	FactoryID common.Address
	Kind      RequestKind
	Status    RequestStatus
	Requester *common.Address
	Limit     int
	Offset    int
}
