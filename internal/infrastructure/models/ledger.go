package models

import "time"

type LedgerToken struct {
	ID            string `gorm:"type:varchar(42);primaryKey"`
	MintAuthority string `gorm:"type:varchar(42);not null"`
	Decimals      uint8  `gorm:"not null"`
	Supply        uint64 `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (LedgerToken) TableName() string {
	return "ledger_tokens"
}

type TokenAccount struct {
	ID        string `gorm:"type:varchar(42);primaryKey"`
	TokenID   string `gorm:"type:varchar(42);not null;index"`
	Owner     string `gorm:"type:varchar(42);not null;index"`
	Balance   uint64 `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// All returns every model for migrations.
func All() []interface{} {
	return []interface{}{
		&MembersState{},
		&Merchant{},
		&ControllerState{},
		&FactoryState{},
		&DepositAddress{},
		&Request{},
		&LedgerToken{},
		&TokenAccount{},
	}
}
