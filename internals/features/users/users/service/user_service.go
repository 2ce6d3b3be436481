package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	userModel "mealku_backend/internals/features/users/users/model"
)

// EnsureRole: role reference data dibuat lazily, nama selalu uppercase.
func EnsureRole(tx *gorm.DB, name string) (*userModel.RoleModel, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	var role userModel.RoleModel
	err := tx.Where("name = ?", name).Take(&role).Error
	if err == nil {
		return &role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	role = userModel.RoleModel{Name: name}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&role).Error; err != nil {
		return nil, err
	}
	if role.ID == 0 {
		// Kalah race dengan insert lain, ambil baris yang menang.
		if err := tx.Where("name = ?", name).Take(&role).Error; err != nil {
			return nil, err
		}
	}
	return &role, nil
}

// GrantRole memasang role ke user (idempotent lewat unique index).
func GrantRole(tx *gorm.DB, userID int, roleName string) error {
	role, err := EnsureRole(tx, roleName)
	if err != nil {
		return err
	}
	link := userModel.UserRoleModel{UserID: userID, RoleID: role.ID}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "role_id"}},
		DoNothing: true,
	}).Create(&link).Error
}

// SetPrimaryCampus menjaga invariant: maksimal satu is_primary=true per user.
// Semua flag di-clear dulu, baru link target di-upsert dengan is_primary=true.
// Kolom campus_id langsung di users ikut disinkronkan.
func SetPrimaryCampus(tx *gorm.DB, userID, campusID int) error {
	if err := tx.Model(&userModel.UserCampusModel{}).
		Where("user_id = ?", userID).
		Update("is_primary", false).Error; err != nil {
		return err
	}
	link := userModel.UserCampusModel{
		UserID:    userID,
		CampusID:  campusID,
		IsPrimary: true,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "campus_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"is_primary": true}),
	}).Create(&link).Error; err != nil {
		return err
	}
	return tx.Model(&userModel.UserModel{}).
		Where("id = ?", userID).
		Update("campus_id", campusID).Error
}

// RoleNamesOf mengambil set nama role user (uppercase).
func RoleNamesOf(db *gorm.DB, userID int) ([]string, error) {
	var names []string
	err := db.Table("smps_user_role AS ur").
		Joins("JOIN smps_roles AS r ON r.id = ur.role_id").
		Where("ur.user_id = ?", userID).
		Pluck("r.name", &names).Error
	if err != nil {
		return nil, err
	}
	for i := range names {
		names[i] = strings.ToUpper(names[i])
	}
	return names, nil
}
