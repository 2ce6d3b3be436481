package dto

type SlotSummary struct {
	Slot     string `json:"slot"`
	Selected int64  `json:"selected"`
	Received int64  `json:"received"`
	Missed   int64  `json:"missed"`
}

type DailySummaryResponse struct {
	CampusID int           `json:"campus_id"`
	Date     string        `json:"date"`
	Slots    []SlotSummary `json:"slots"`
}

type CampusSlotAverages struct {
	CampusID         int     `json:"campus_id"`
	CampusName       string  `json:"campus_name"`
	Slot             string  `json:"slot"`
	AvgSelected      float64 `json:"avg_selected"`
	AvgReceived      float64 `json:"avg_received"`
	MissedPercentage float64 `json:"missed_percentage"`
}

type SuperSummaryResponse struct {
	From     string               `json:"from"`
	To       string               `json:"to"`
	DayCount int                  `json:"day_count"`
	Rows     []CampusSlotAverages `json:"rows"`
}
