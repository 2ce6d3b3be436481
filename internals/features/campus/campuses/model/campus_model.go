package model

import "time"

type CampusModel struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Address   *string   `gorm:"size:500" json:"address,omitempty"`
	Status    string    `gorm:"size:20;not null;default:active" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (CampusModel) TableName() string {
	return "smps_campuses"
}
