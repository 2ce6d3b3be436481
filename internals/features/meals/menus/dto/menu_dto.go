package dto

type MenuItemInput struct {
	Slot       string `json:"slot" validate:"required,oneof=BREAKFAST LUNCH SNACKS DINNER"`
	MealItemID int    `json:"meal_item_id" validate:"required,gt=0"`
}

type UpsertMenuRequest struct {
	CampusID int             `json:"campus_id" validate:"required,gt=0"`
	Date     string          `json:"date" validate:"required"`
	Items    []MenuItemInput `json:"items" validate:"required,min=1,dive"`
}

type MenuItemView struct {
	MealItemID  int     `json:"meal_item_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// date -> slot -> item
type MenuMap map[string]map[string]MenuItemView

// Status nilai: SELECTED | NOT_INTERESTED | CLOSED | NOT_SELECTED
type MenuWithSelection struct {
	Date        string        `json:"date"`
	Slot        string        `json:"slot"`
	MealItem    *MenuItemView `json:"meal_item,omitempty"`
	ServingTime string        `json:"serving_time,omitempty"`
	Deadline    string        `json:"deadline,omitempty"`
	Selected    bool          `json:"selected"`
	Ordered     bool          `json:"ordered"`
	Status      string        `json:"status"`
}
