package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Token is a wrapped asset tracked by the token ledger
type Token struct {
	ID            common.Address `json:"id"`
	MintAuthority common.Address `json:"mintAuthority"`
	Decimals      uint8          `json:"decimals"`
	Supply        uint64         `json:"supply"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// TokenAccount holds the balance of one owner for one token
type TokenAccount struct {
	ID        common.Address `json:"id"`
	TokenID   common.Address `json:"tokenId"`
	Owner     common.Address `json:"owner"`
	Balance   uint64         `json:"balance"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
