package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// MembersState is the membership registry of one deployment
type MembersState struct {
	ID        common.Address `json:"id"`
	Admin     common.Address `json:"admin"`
	Custodian common.Address `json:"custodian"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// HasCustodian reports whether a custodian was ever set.
func (m *MembersState) HasCustodian() bool {
	return m.Custodian != (common.Address{})
}

// Merchant is a vetted entity allowed to request mints and burns
type Merchant struct {
	ID        common.Address `json:"id"`
	MembersID common.Address `json:"membersId"`
	Merchant  common.Address `json:"merchant"`
	Active    bool           `json:"active"`
	Proof     string         `json:"proof"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
