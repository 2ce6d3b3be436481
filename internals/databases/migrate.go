package database

import (
	"log"

	"gorm.io/gorm"

	campusModel "mealku_backend/internals/features/campus/campuses/model"
	changeModel "mealku_backend/internals/features/campus/change_requests/model"
	slotModel "mealku_backend/internals/features/campus/meal_slots/model"
	mealItemModel "mealku_backend/internals/features/meals/meal_items/model"
	menuModel "mealku_backend/internals/features/meals/menus/model"
	qrModel "mealku_backend/internals/features/meals/qr_tokens/model"
	selectionModel "mealku_backend/internals/features/meals/selections/model"
	userModel "mealku_backend/internals/features/users/users/model"
)

// Migrate menjalankan AutoMigrate semua tabel smps_* lalu seed slot tetap.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userModel.UserModel{},
		&userModel.RoleModel{},
		&userModel.UserRoleModel{},
		&userModel.UserCampusModel{},
		&campusModel.CampusModel{},
		&slotModel.MealSlotModel{},
		&slotModel.CampusMealSlotModel{},
		&changeModel.CampusChangeRequestModel{},
		&mealItemModel.MealItemModel{},
		&menuModel.DailyMenuModel{},
		&menuModel.DailyMenuItemModel{},
		&selectionModel.UserMealRecordModel{},
		&qrModel.QrTokenModel{},
		&qrModel.MealReceiptModel{},
	); err != nil {
		return err
	}
	return SeedMealSlots(db)
}

// SeedMealSlots memastikan empat slot tetap selalu ada.
func SeedMealSlots(db *gorm.DB) error {
	for _, name := range slotModel.CanonicalSlotOrder {
		slot := slotModel.MealSlotModel{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&slot).Error; err != nil {
			log.Println("[ERROR] Gagal seed meal slot:", name, err)
			return err
		}
	}
	return nil
}
