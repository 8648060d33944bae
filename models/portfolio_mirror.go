// models/portfolio_mirror.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// PortfolioMirror mirrors investment/net-worth snapshots from the hosted
// backend. The hosted schema stays external; this service only keeps the
// figures the life-buffer calculator needs.
// Table name: portfolio_mirror
type PortfolioMirror struct {
	ID              string    `gorm:"primaryKey;type:uuid;not null" json:"id"`
	UserID          string    `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"` // External user ID
	Currency        string    `gorm:"type:varchar(8);not null" json:"currency"`
	NetWorth        string    `gorm:"type:numeric(18,2);not null" json:"net_worth"`
	MonthlyIncome   string    `gorm:"type:numeric(18,2);not null" json:"monthly_income"`
	MonthlyExpenses string    `gorm:"type:numeric(18,2);not null" json:"monthly_expenses"`
	SnapshotAt      time.Time `gorm:"not null" json:"snapshot_at"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`

	DeletedAt gorm.DeletedAt `gorm:"index"`
}
