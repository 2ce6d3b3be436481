package controller

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	campusModel "mealku_backend/internals/features/campus/campuses/model"
	slotModel "mealku_backend/internals/features/campus/meal_slots/model"
	"mealku_backend/internals/features/meals/kitchen/dto"
	qrModel "mealku_backend/internals/features/meals/qr_tokens/model"
	selectionModel "mealku_backend/internals/features/meals/selections/model"
	helper "mealku_backend/internals/helpers"
	helperAuth "mealku_backend/internals/helpers/auth"
	"mealku_backend/internals/helpers/mealclock"
)

type KitchenController struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewKitchenController(db *gorm.DB) *KitchenController {
	return &KitchenController{DB: db, Now: time.Now}
}

// Summary: GET /api/kitchen/summary (?campus_id&date)
// Per slot: jumlah ordered=true vs jumlah receipt; missed tidak pernah negatif.
func (ctrl *KitchenController) Summary(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	campusID := p.ResolveCampusID()
	if raw := strings.TrimSpace(c.Query("campus_id")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid campus_id")
		}
		if id != campusID && !p.CanAccessCampus(id) {
			return helper.JsonError(c, fiber.StatusForbidden, "You do not have access to this campus")
		}
		campusID = id
	}
	if campusID == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "No campus assigned to this account")
	}

	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		date = mealclock.Today(ctrl.Now())
	} else if _, err := mealclock.ParseDate(date); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var slots []slotModel.MealSlotModel
	if err := ctrl.DB.Find(&slots).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch meal slots")
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slotModel.SlotRank(slots[i].Name) < slotModel.SlotRank(slots[j].Name)
	})

	resp := dto.DailySummaryResponse{CampusID: campusID, Date: date}
	for _, slot := range slots {
		var selected, received int64
		if err := ctrl.DB.Model(&selectionModel.UserMealRecordModel{}).
			Where("campus_id = ? AND meal_date = ? AND meal_slot_id = ? AND ordered = ?",
				campusID, date, slot.ID, true).
			Count(&selected).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count selections")
		}
		if err := ctrl.DB.Model(&qrModel.MealReceiptModel{}).
			Where("campus_id = ? AND meal_date = ? AND meal_slot_id = ?", campusID, date, slot.ID).
			Count(&received).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count receipts")
		}
		missed := selected - received
		if missed < 0 {
			missed = 0
		}
		resp.Slots = append(resp.Slots, dto.SlotSummary{
			Slot:     slot.Name,
			Selected: selected,
			Received: received,
			Missed:   missed,
		})
	}
	return helper.JsonOK(c, "Kitchen summary fetched successfully", resp)
}

// SuperSummary: GET /api/kitchen/super/summary (?from&to)
// Rata-rata per campus x slot dalam range, plus persentase missed.
func (ctrl *KitchenController) SuperSummary(c *fiber.Ctx) error {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" {
		from = mealclock.Today(ctrl.Now())
	}
	if to == "" {
		to = from
	}
	dayCount, err := mealclock.DayCount(from, to)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var campuses []campusModel.CampusModel
	if err := ctrl.DB.Order("name ASC").Find(&campuses).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch campuses")
	}
	var slots []slotModel.MealSlotModel
	if err := ctrl.DB.Find(&slots).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch meal slots")
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slotModel.SlotRank(slots[i].Name) < slotModel.SlotRank(slots[j].Name)
	})

	resp := dto.SuperSummaryResponse{From: from, To: to, DayCount: dayCount}
	for _, campus := range campuses {
		for _, slot := range slots {
			var selected, received int64
			if err := ctrl.DB.Model(&selectionModel.UserMealRecordModel{}).
				Where("campus_id = ? AND meal_date BETWEEN ? AND ? AND meal_slot_id = ? AND ordered = ?",
					campus.ID, from, to, slot.ID, true).
				Count(&selected).Error; err != nil {
				return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count selections")
			}
			if err := ctrl.DB.Model(&qrModel.MealReceiptModel{}).
				Where("campus_id = ? AND meal_date BETWEEN ? AND ? AND meal_slot_id = ?",
					campus.ID, from, to, slot.ID).
				Count(&received).Error; err != nil {
				return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count receipts")
			}

			missed := selected - received
			if missed < 0 {
				missed = 0
			}
			var missedPct float64
			if selected > 0 {
				missedPct = float64(missed) / float64(selected)
			}
			resp.Rows = append(resp.Rows, dto.CampusSlotAverages{
				CampusID:         campus.ID,
				CampusName:       campus.Name,
				Slot:             slot.Name,
				AvgSelected:      float64(selected) / float64(dayCount),
				AvgReceived:      float64(received) / float64(dayCount),
				MissedPercentage: missedPct,
			})
		}
	}
	return helper.JsonOK(c, "Super summary fetched successfully", resp)
}
