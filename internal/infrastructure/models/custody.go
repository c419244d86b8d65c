package models

import (
	"time"
)

type MembersState struct {
	ID        string `gorm:"type:varchar(42);primaryKey"`
	Admin     string `gorm:"type:varchar(42);not null;index"`
	Custodian string `gorm:"type:varchar(42)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MembersState) TableName() string {
	return "members_registries"
}

type Merchant struct {
	ID        string `gorm:"type:varchar(42);primaryKey"`
	MembersID string `gorm:"type:varchar(42);not null;index"`
	Merchant  string `gorm:"type:varchar(42);not null"`
	Active    bool   `gorm:"not null;default:false"`
	Proof     string `gorm:"type:varchar(66);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ControllerState struct {
	ID        string `gorm:"type:varchar(42);primaryKey"`
	Owner     string `gorm:"type:varchar(42);not null;index"`
	TokenID   string `gorm:"type:varchar(42);not null"`
	MembersID string `gorm:"type:varchar(42)"`
	FactoryID string `gorm:"type:varchar(42)"`
	Paused    bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ControllerState) TableName() string {
	return "controllers"
}

type FactoryState struct {
	ID               string `gorm:"type:varchar(42);primaryKey"`
	Admin            string `gorm:"type:varchar(42);not null"`
	ControllerID     string `gorm:"type:varchar(42);not null;uniqueIndex"`
	TokenID          string `gorm:"type:varchar(42);not null"`
	MintRequestCount uint64 `gorm:"not null;default:0"`
	BurnRequestCount uint64 `gorm:"not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (FactoryState) TableName() string {
	return "factories"
}

type DepositAddress struct {
	ID        string `gorm:"type:varchar(42);primaryKey"`
	FactoryID string `gorm:"type:varchar(42);not null;index"`
	Merchant  string `gorm:"type:varchar(42);not null"`
	Kind      string `gorm:"type:varchar(20);not null"`
	Address   string `gorm:"type:text;not null"`
	Proof     string `gorm:"type:varchar(66);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Request struct {
	ID             string `gorm:"type:varchar(42);primaryKey"`
	FactoryID      string `gorm:"type:varchar(42);not null;index"`
	Kind           string `gorm:"type:varchar(10);not null;index"`
	Requester      string `gorm:"type:varchar(42);not null;index"`
	Amount         uint64 `gorm:"not null"`
	DepositAddress string `gorm:"type:text"`
	Txid           string `gorm:"type:varchar(255)"`
	Nonce          uint64 `gorm:"not null"`
	Timestamp      uint64 `gorm:"not null"`
	Status         string `gorm:"type:varchar(20);not null;index"`
	Proof          string `gorm:"type:varchar(66);not null"`
	ResolvedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Request) TableName() string {
	return "custody_requests"
}
