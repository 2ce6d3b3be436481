package model

import "time"

// UserCampusModel = link user x campus.
// Invariant: maksimal SATU baris is_primary=true per user
// (aplikasi clear semua flag dulu sebelum set satu, dalam transaksi).
type UserCampusModel struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_smps_user_campus" json:"user_id"`
	CampusID  int       `gorm:"not null;uniqueIndex:idx_smps_user_campus" json:"campus_id"`
	IsPrimary bool      `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UserCampusModel) TableName() string {
	return "smps_user_campuses"
}
