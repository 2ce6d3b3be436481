package controller

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	slotModel "mealku_backend/internals/features/campus/meal_slots/model"
	"mealku_backend/internals/features/meals/selections/dto"
	selectionModel "mealku_backend/internals/features/meals/selections/model"
	helper "mealku_backend/internals/helpers"
	helperAuth "mealku_backend/internals/helpers/auth"
	"mealku_backend/internals/helpers/mealclock"
)

type SelectionController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Now      func() time.Time
}

func NewSelectionController(db *gorm.DB) *SelectionController {
	return &SelectionController{DB: db, Validate: validator.New(), Now: time.Now}
}

type slotConfig struct {
	slotModel.CampusMealSlotModel
	SlotName string
}

func (ctrl *SelectionController) campusSlotConfigs(db *gorm.DB, campusID int) (map[string]slotConfig, error) {
	var rows []slotConfig
	if err := db.Table("smps_campus_meal_slots AS cms").
		Select("cms.*, s.name AS slot_name").
		Joins("JOIN smps_meal_slots AS s ON s.id = cms.meal_slot_id").
		Where("cms.campus_id = ?", campusID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]slotConfig, len(rows))
	for _, r := range rows {
		out[r.SlotName] = r
	}
	return out, nil
}

// menuSnapshotFor best-effort: item menu hari itu untuk slot, nil kalau belum ada.
func (ctrl *SelectionController) menuSnapshotFor(db *gorm.DB, campusID int, date string, slotID int) datatypes.JSON {
	var row struct {
		MealItemID  int     `json:"meal_item_id"`
		Name        string  `json:"name"`
		Description *string `json:"description,omitempty"`
	}
	err := db.Table("smps_daily_menus AS m").
		Select("mi.meal_item_id, i.name, i.description").
		Joins("JOIN smps_daily_menu_items AS mi ON mi.daily_menu_id = m.id").
		Joins("JOIN smps_meal_items AS i ON i.id = mi.meal_item_id").
		Where("m.campus_id = ? AND m.menu_date = ? AND mi.meal_slot_id = ?", campusID, date, slotID).
		Limit(1).
		Scan(&row).Error
	if err != nil || row.MealItemID == 0 {
		return nil
	}
	raw, err := sonic.Marshal(row)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// Create: POST /api/meal-selections
// Upsert per (user, tanggal, slot); ditolak kalau deadline slot sudah lewat.
// Menulis ulang pilihan selalu me-reset received ke false.
func (ctrl *SelectionController) Create(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	campusID := p.ResolveCampusID()
	if campusID == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "No campus assigned to this account")
	}

	var req dto.CreateSelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var dates []string
	switch {
	case req.Date != "":
		if _, err := mealclock.ParseDate(req.Date); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
		dates = []string{req.Date}
	case req.From != "" && req.To != "":
		dates, err = mealclock.DatesBetween(req.From, req.To)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
	default:
		return helper.JsonError(c, fiber.StatusBadRequest, "Provide either date or from/to")
	}

	now := ctrl.Now()
	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		cfgs, err := ctrl.campusSlotConfigs(tx, campusID)
		if err != nil {
			return err
		}
		for _, date := range dates {
			for _, sel := range req.Selections {
				cfg, ok := cfgs[sel.Slot]
				if !ok {
					return fiber.NewError(fiber.StatusBadRequest,
						"No slot configuration for "+sel.Slot+" on this campus")
				}
				deadline, err := mealclock.Deadline(date, cfg.StartTime, cfg.SelectionDeadlineOffsetHours)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, err.Error())
				}
				if now.After(deadline) {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("Selection window closed for %s %s", date, sel.Slot))
				}

				record := selectionModel.UserMealRecordModel{
					UserID:       p.ID,
					MealDate:     date,
					MealSlotID:   cfg.MealSlotID,
					CampusID:     campusID,
					MenuSnapshot: ctrl.menuSnapshotFor(tx, campusID, date, cfg.MealSlotID),
					Ordered:      sel.Ordered,
					Received:     false,
					Reason:       req.Reason,
				}
				if err := tx.Clauses(clause.OnConflict{
					Columns: []clause.Column{
						{Name: "user_id"}, {Name: "meal_date"}, {Name: "meal_slot_id"},
					},
					DoUpdates: clause.AssignmentColumns([]string{
						"ordered", "received", "campus_id", "menu_snapshot", "reason",
					}),
				}).Create(&record).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Meal selection saved successfully", fiber.Map{
		"dates": dates,
		"slots": len(req.Selections),
	})
}

// parseSlotFilter menerima nama slot ATAU id numerik; 0 = tanpa filter.
func parseSlotFilter(db *gorm.DB, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if id, err := strconv.Atoi(raw); err == nil {
		return id, nil
	}
	var slot slotModel.MealSlotModel
	if err := db.Where("name = ?", strings.ToUpper(raw)).Take(&slot).Error; err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Unknown meal slot: "+raw)
	}
	return slot.ID, nil
}

func (ctrl *SelectionController) buildHistory(userID int, from, to string, slotID int) (dto.SelectionMap, error) {
	slotNames := map[int]string{}
	var slots []slotModel.MealSlotModel
	if err := ctrl.DB.Find(&slots).Error; err != nil {
		return nil, err
	}
	for _, s := range slots {
		slotNames[s.ID] = s.Name
	}

	q := ctrl.DB.Where("user_id = ? AND meal_date BETWEEN ? AND ?", userID, from, to)
	if slotID != 0 {
		q = q.Where("meal_slot_id = ?", slotID)
	}
	var records []selectionModel.UserMealRecordModel
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}

	// Receipt adalah sumber kebenaran untuk "received".
	type receiptRow struct {
		MealDate   string
		MealSlotID int
	}
	var receipts []receiptRow
	rq := ctrl.DB.Table("smps_meal_receipts").
		Where("user_id = ? AND meal_date BETWEEN ? AND ?", userID, from, to)
	if slotID != 0 {
		rq = rq.Where("meal_slot_id = ?", slotID)
	}
	if err := rq.Scan(&receipts).Error; err != nil {
		return nil, err
	}
	receiptSet := map[string]bool{}
	for _, r := range receipts {
		receiptSet[r.MealDate+"#"+strconv.Itoa(r.MealSlotID)] = true
	}

	out := dto.SelectionMap{}
	for _, rec := range records {
		name, ok := slotNames[rec.MealSlotID]
		if !ok {
			continue
		}
		if out[rec.MealDate] == nil {
			out[rec.MealDate] = map[string]dto.SelectionState{}
		}
		out[rec.MealDate][name] = dto.SelectionState{
			Selected: rec.Ordered,
			Received: rec.Received || receiptSet[rec.MealDate+"#"+strconv.Itoa(rec.MealSlotID)],
		}
	}
	return out, nil
}

// GetMine: GET /api/meal-selections/me (?from&to&slot)
func (ctrl *SelectionController) GetMine(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" {
		from = mealclock.Today(ctrl.Now())
	}
	if to == "" {
		to = from
	}
	if _, err := mealclock.DatesBetween(from, to); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	slotID, err := parseSlotFilter(ctrl.DB, c.Query("slot"))
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	out, err := ctrl.buildHistory(p.ID, from, to, slotID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch selections")
	}
	return helper.JsonOK(c, "Selections fetched successfully", out)
}

// GetStudentHistory: GET /api/meal-selections/admin/students/:id/history
// Scope: admin hanya boleh lihat student di campus-nya.
func (ctrl *SelectionController) GetStudentHistory(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	targetID, err := c.ParamsInt("id")
	if err != nil || targetID <= 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid user id")
	}

	primary, err := helperAuth.PrimaryCampusID(ctrl.DB, targetID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to resolve campus")
	}
	if primary != 0 && !p.CanAccessCampus(primary) {
		return helper.JsonError(c, fiber.StatusForbidden, "You do not have access to this student's campus")
	}

	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" {
		from = mealclock.Today(ctrl.Now())
	}
	if to == "" {
		to = from
	}
	if _, err := mealclock.DatesBetween(from, to); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	slotID, err := parseSlotFilter(ctrl.DB, c.Query("slot"))
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	out, err := ctrl.buildHistory(targetID, from, to, slotID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch selections")
	}
	return helper.JsonOK(c, "Selection history fetched successfully", out)
}
