package model

import "time"

// QrTokenModel = token harian per campus. Regenerate kalau sudah expired.
type QrTokenModel struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	CampusID  int       `gorm:"not null;uniqueIndex:idx_smps_qr_campus_date" json:"campus_id"`
	ValidDate string    `gorm:"size:10;not null;uniqueIndex:idx_smps_qr_campus_date" json:"valid_date"`
	Token     string    `gorm:"size:64;uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (QrTokenModel) TableName() string {
	return "smps_qr_tokens"
}

// MealReceiptModel = bukti ambil makan, write-once per (user, tanggal, slot).
type MealReceiptModel struct {
	ID         int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int       `gorm:"not null;uniqueIndex:idx_smps_receipt_user_meal" json:"user_id"`
	MealDate   string    `gorm:"size:10;not null;uniqueIndex:idx_smps_receipt_user_meal" json:"meal_date"`
	MealSlotID int       `gorm:"not null;uniqueIndex:idx_smps_receipt_user_meal" json:"meal_slot_id"`
	CampusID   int       `gorm:"not null;index" json:"campus_id"`
	QrTokenID  *int      `json:"qr_token_id,omitempty"`
	ReceivedAt time.Time `gorm:"autoCreateTime" json:"received_at"`
}

func (MealReceiptModel) TableName() string {
	return "smps_meal_receipts"
}
