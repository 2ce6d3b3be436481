package dto

type SlotConfigInput struct {
	Slot                         string `json:"slot" validate:"required,oneof=BREAKFAST LUNCH SNACKS DINNER"`
	StartTime                    string `json:"start_time" validate:"required"`
	EndTime                      string `json:"end_time" validate:"required"`
	SelectionDeadlineOffsetHours int    `json:"selection_deadline_offset_hours"`
}

type UpsertCampusMealSlotsRequest struct {
	CampusID int               `json:"campus_id" validate:"required,gt=0"`
	Slots    []SlotConfigInput `json:"slots" validate:"required,min=1,dive"`
}

type CampusMealSlotResponse struct {
	Slot                         string `json:"slot"`
	MealSlotID                   int    `json:"meal_slot_id"`
	StartTime                    string `json:"start_time"`
	EndTime                      string `json:"end_time"`
	SelectionDeadlineOffsetHours int    `json:"selection_deadline_offset_hours"`
}
