package model

import "time"

// Nama slot = enumerasi tetap, unik global.
const (
	SlotBreakfast = "BREAKFAST"
	SlotLunch     = "LUNCH"
	SlotSnacks    = "SNACKS"
	SlotDinner    = "DINNER"
)

// CanonicalSlotOrder dipakai semua listing slot, terlepas dari urutan simpan.
var CanonicalSlotOrder = []string{SlotBreakfast, SlotLunch, SlotSnacks, SlotDinner}

func SlotRank(name string) int {
	for i, n := range CanonicalSlotOrder {
		if n == name {
			return i
		}
	}
	return len(CanonicalSlotOrder)
}

type MealSlotModel struct {
	ID   int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:30;uniqueIndex;not null" json:"name"`
}

func (MealSlotModel) TableName() string {
	return "smps_meal_slots"
}

// CampusMealSlotModel = jadwal slot per campus + offset deadline pemilihan.
// start/end disimpan "HH:MM:SS" agar range query lexicographic.
type CampusMealSlotModel struct {
	ID                           int       `gorm:"primaryKey;autoIncrement" json:"id"`
	CampusID                     int       `gorm:"not null;uniqueIndex:idx_smps_campus_slot" json:"campus_id"`
	MealSlotID                   int       `gorm:"not null;uniqueIndex:idx_smps_campus_slot" json:"meal_slot_id"`
	StartTime                    string    `gorm:"size:8;not null" json:"start_time"`
	EndTime                      string    `gorm:"size:8;not null" json:"end_time"`
	SelectionDeadlineOffsetHours int       `gorm:"not null;default:0" json:"selection_deadline_offset_hours"`
	CreatedAt                    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (CampusMealSlotModel) TableName() string {
	return "smps_campus_meal_slots"
}
