package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ControllerState holds the supply authority configuration of a token
type ControllerState struct {
	ID        common.Address `json:"id"`
	Owner     common.Address `json:"owner"`
	TokenID   common.Address `json:"tokenId"`
	MembersID common.Address `json:"membersId"`
	FactoryID common.Address `json:"factoryId"`
	// Paused is reserved; no operation reads it yet.
	Paused    bool      `json:"paused"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
