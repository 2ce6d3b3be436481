package model

import "time"

// RoleModel = reference data, dibuat lazily lewat EnsureRole.
type RoleModel struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"size:255" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RoleModel) TableName() string {
	return "smps_roles"
}

// UserRoleModel = link user x role; set role aktif user = baris yang ada.
type UserRoleModel struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_smps_user_role" json:"user_id"`
	RoleID    int       `gorm:"not null;uniqueIndex:idx_smps_user_role" json:"role_id"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserRoleModel) TableName() string {
	return "smps_user_role"
}
