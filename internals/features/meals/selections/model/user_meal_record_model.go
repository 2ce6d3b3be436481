package model

import (
	"time"

	"gorm.io/datatypes"
)

// UserMealRecordModel = ledger pemilihan makan per (user, tanggal, slot).
// Upsert keyed unik; `ordered` = pilihan terakhir, `received` di-reset ke
// false setiap kali pilihan ditulis ulang.
type UserMealRecordModel struct {
	ID           int            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int            `gorm:"not null;uniqueIndex:idx_smps_user_meal" json:"user_id"`
	MealDate     string         `gorm:"size:10;not null;uniqueIndex:idx_smps_user_meal" json:"meal_date"`
	MealSlotID   int            `gorm:"not null;uniqueIndex:idx_smps_user_meal" json:"meal_slot_id"`
	CampusID     int            `gorm:"not null;index" json:"campus_id"`
	MenuSnapshot datatypes.JSON `json:"menu_snapshot,omitempty"`
	Ordered      bool           `gorm:"not null;default:false" json:"ordered"`
	Received     bool           `gorm:"not null;default:false" json:"received"`
	Reason       *string        `gorm:"size:500" json:"reason,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserMealRecordModel) TableName() string {
	return "smps_user_meal_record"
}
