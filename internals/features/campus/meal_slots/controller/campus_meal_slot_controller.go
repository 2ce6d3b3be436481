package controller

import (
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	campusModel "mealku_backend/internals/features/campus/campuses/model"
	"mealku_backend/internals/features/campus/meal_slots/dto"
	slotModel "mealku_backend/internals/features/campus/meal_slots/model"
	helper "mealku_backend/internals/helpers"
	helperAuth "mealku_backend/internals/helpers/auth"
	"mealku_backend/internals/helpers/mealclock"
)

type CampusMealSlotController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewCampusMealSlotController(db *gorm.DB) *CampusMealSlotController {
	return &CampusMealSlotController{DB: db, Validate: validator.New()}
}

// Upsert: POST /api/campus-meal-slots
// Satu conflict-upsert per (campus, slot); jam divalidasi sebagai HH:MM[:SS].
func (ctrl *CampusMealSlotController) Upsert(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.UpsertCampusMealSlotsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if !p.CanAccessCampus(req.CampusID) {
		return helper.JsonError(c, fiber.StatusForbidden, "You do not have access to this campus")
	}
	for _, s := range req.Slots {
		if _, err := mealclock.ClockMinutes(s.StartTime); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
		if _, err := mealclock.ClockMinutes(s.EndTime); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var campus campusModel.CampusModel
		if err := tx.Where("id = ?", req.CampusID).Take(&campus).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Campus not found")
			}
			return err
		}

		for _, s := range req.Slots {
			var slot slotModel.MealSlotModel
			if err := tx.Where("name = ?", s.Slot).Take(&slot).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusBadRequest, "Unknown meal slot: "+s.Slot)
				}
				return err
			}

			row := slotModel.CampusMealSlotModel{
				CampusID:                     req.CampusID,
				MealSlotID:                   slot.ID,
				StartTime:                    s.StartTime,
				EndTime:                      s.EndTime,
				SelectionDeadlineOffsetHours: s.SelectionDeadlineOffsetHours,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "campus_id"}, {Name: "meal_slot_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"start_time", "end_time", "selection_deadline_offset_hours",
				}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Campus meal slots saved successfully", fiber.Map{
		"campus_id": req.CampusID,
		"slots":     len(req.Slots),
	})
}

// GetByCampus: GET /api/campus-meal-slots/:campusId
// Selalu urut canonical BREAKFAST, LUNCH, SNACKS, DINNER.
func (ctrl *CampusMealSlotController) GetByCampus(c *fiber.Ctx) error {
	campusID, err := c.ParamsInt("campusId")
	if err != nil || campusID <= 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid campus id")
	}

	var rows []struct {
		slotModel.CampusMealSlotModel
		SlotName string
	}
	if err := ctrl.DB.Table("smps_campus_meal_slots AS cms").
		Select("cms.*, s.name AS slot_name").
		Joins("JOIN smps_meal_slots AS s ON s.id = cms.meal_slot_id").
		Where("cms.campus_id = ?", campusID).
		Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch campus meal slots")
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return slotModel.SlotRank(rows[i].SlotName) < slotModel.SlotRank(rows[j].SlotName)
	})

	out := make([]dto.CampusMealSlotResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.CampusMealSlotResponse{
			Slot:                         r.SlotName,
			MealSlotID:                   r.MealSlotID,
			StartTime:                    r.StartTime,
			EndTime:                      r.EndTime,
			SelectionDeadlineOffsetHours: r.SelectionDeadlineOffsetHours,
		})
	}
	return helper.JsonOK(c, "Campus meal slots fetched successfully", out)
}
