package dto

type ScanRequest struct {
	Token string `json:"token" validate:"required"`
}

type MenuItemView struct {
	MealItemID  int     `json:"meal_item_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type ScanResponse struct {
	Date            string        `json:"date"`
	CurrentSlot     string        `json:"current_slot"`
	MealSlotID      int           `json:"meal_slot_id"`
	HasSelection    bool          `json:"has_selection"`
	AlreadyReceived bool          `json:"already_received"`
	MenuItem        *MenuItemView `json:"menu_item,omitempty"`
}

type TodayTokenResponse struct {
	CampusID  int    `json:"campus_id"`
	Date      string `json:"date"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}
