package model

import "time"

// DailyMenuModel = satu header menu per (campus, tanggal).
type DailyMenuModel struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	CampusID  int       `gorm:"not null;uniqueIndex:idx_smps_campus_menu_date" json:"campus_id"`
	MenuDate  string    `gorm:"size:10;not null;uniqueIndex:idx_smps_campus_menu_date" json:"menu_date"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (DailyMenuModel) TableName() string {
	return "smps_daily_menus"
}

// DailyMenuItemModel = assignment item per (menu, slot).
type DailyMenuItemModel struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	DailyMenuID int       `gorm:"not null;uniqueIndex:idx_smps_menu_slot" json:"daily_menu_id"`
	MealSlotID  int       `gorm:"not null;uniqueIndex:idx_smps_menu_slot" json:"meal_slot_id"`
	MealItemID  int       `gorm:"not null" json:"meal_item_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (DailyMenuItemModel) TableName() string {
	return "smps_daily_menu_items"
}
