package dto

type SlotSelection struct {
	Slot    string `json:"slot" validate:"required,oneof=BREAKFAST LUNCH SNACKS DINNER"`
	Ordered bool   `json:"ordered"`
}

// Terima satu tanggal ATAU range inklusif from/to.
type CreateSelectionRequest struct {
	Date       string          `json:"date" validate:"omitempty"`
	From       string          `json:"from" validate:"omitempty"`
	To         string          `json:"to" validate:"omitempty"`
	Selections []SlotSelection `json:"selections" validate:"required,min=1,dive"`
	Reason     *string         `json:"reason" validate:"omitempty,max=500"`
}

type SelectionState struct {
	Selected bool `json:"selected"`
	Received bool `json:"received"`
}

// date -> slot -> state
type SelectionMap map[string]map[string]SelectionState
