package model

import "time"

// UserModel merepresentasikan tabel smps_users di database
type UserModel struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Address   *string   `gorm:"size:500" json:"address,omitempty"`
	GoogleID  *string   `gorm:"size:255" json:"google_id,omitempty"`
	CampusID  *int      `gorm:"index" json:"campus_id,omitempty"`
	Status    string    `gorm:"size:20;not null;default:active" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string {
	return "smps_users"
}

func (u *UserModel) IsActive() bool {
	return u.Status == "active"
}
