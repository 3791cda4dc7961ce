package models

import "time"

// Budget is the spending limit for one user and calendar month. The composite
// primary key is what makes saving a budget an atomic upsert.
type Budget struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Year      int       `gorm:"primaryKey;autoIncrement:false" json:"year"`
	Month     int       `gorm:"primaryKey;autoIncrement:false;check:chk_budgets_month,month BETWEEN 1 AND 12" json:"month"`
	Amount    int64     `gorm:"type:bigint;not null;check:chk_budgets_amount,amount >= 0" json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
