package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TargetType string

const (
	TargetMonthly   TargetType = "MONTHLY"
	TargetQuarterly TargetType = "QUARTERLY"
	TargetYearly    TargetType = "YEARLY"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetMonthly, TargetQuarterly, TargetYearly:
		return true
	}
	return false
}

// Target: kullanıcıya (veya OwnerID nil ise şirkete) bir dönem için atanan satış hedefi.
// TargetPeriod formatı TargetType'a bağlı: MONTHLY "2025-07", QUARTERLY "2025-Q3", YEARLY "2025".
type Target struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OwnerID      *uint           `gorm:"index:idx_targets_owner_type_period" json:"owner_id"`
	Owner        *User           `gorm:"foreignKey:OwnerID" json:"-"`
	TargetType   TargetType      `gorm:"size:20;not null;index:idx_targets_owner_type_period" json:"target_type"`
	TargetPeriod string          `gorm:"size:20;not null;index:idx_targets_owner_type_period" json:"target_period"`
	TargetAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"target_amount"`
	IsActive     bool            `gorm:"not null" json:"is_active"`
	Notes        string          `gorm:"size:255" json:"notes"`
	CreatedBy    uint            `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsCompanyWide: sahibi olmayan hedefler şirket geneli sayılır.
func (t Target) IsCompanyWide() bool {
	return t.OwnerID == nil
}
