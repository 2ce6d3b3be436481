package controller

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	campusModel "mealku_backend/internals/features/campus/campuses/model"
	slotModel "mealku_backend/internals/features/campus/meal_slots/model"
	mealItemModel "mealku_backend/internals/features/meals/meal_items/model"
	"mealku_backend/internals/features/meals/menus/dto"
	menuModel "mealku_backend/internals/features/meals/menus/model"
	selectionModel "mealku_backend/internals/features/meals/selections/model"
	helper "mealku_backend/internals/helpers"
	helperAuth "mealku_backend/internals/helpers/auth"
	"mealku_backend/internals/helpers/mealclock"
)

type MenuController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Now      func() time.Time
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db, Validate: validator.New(), Now: time.Now}
}

// Upsert: POST /api/menus
// Header menu di-upsert per (campus, tanggal), lalu satu upsert per (menu, slot).
// Semua item harus ada dan aktif.
func (ctrl *MenuController) Upsert(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.UpsertMenuRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if _, err := mealclock.ParseDate(req.Date); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if !p.CanAccessCampus(req.CampusID) {
		return helper.JsonError(c, fiber.StatusForbidden, "You do not have access to this campus")
	}

	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var campus campusModel.CampusModel
		if err := tx.Where("id = ?", req.CampusID).Take(&campus).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Campus not found")
			}
			return err
		}

		menu := menuModel.DailyMenuModel{
			CampusID: req.CampusID,
			MenuDate: req.Date,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "campus_id"}, {Name: "menu_date"}},
			DoNothing: true,
		}).Create(&menu).Error; err != nil {
			return err
		}
		if menu.ID == 0 {
			if err := tx.Where("campus_id = ? AND menu_date = ?", req.CampusID, req.Date).
				Take(&menu).Error; err != nil {
				return err
			}
		}

		for _, it := range req.Items {
			var slot slotModel.MealSlotModel
			if err := tx.Where("name = ?", it.Slot).Take(&slot).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusBadRequest, "Unknown meal slot: "+it.Slot)
				}
				return err
			}
			var item mealItemModel.MealItemModel
			if err := tx.Where("id = ? AND is_active = ?", it.MealItemID, true).
				Take(&item).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusBadRequest,
						"Meal item not found or inactive: "+strconv.Itoa(it.MealItemID))
				}
				return err
			}

			row := menuModel.DailyMenuItemModel{
				DailyMenuID: menu.ID,
				MealSlotID:  slot.ID,
				MealItemID:  it.MealItemID,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "daily_menu_id"}, {Name: "meal_slot_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"meal_item_id"}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Menu saved successfully", fiber.Map{
		"campus_id": req.CampusID,
		"date":      req.Date,
		"items":     len(req.Items),
	})
}

type menuRow struct {
	MenuDate    string
	SlotName    string
	MealSlotID  int
	MealItemID  int
	ItemName    string
	Description *string
}

func (ctrl *MenuController) fetchMenuRows(campusID int, from, to string) ([]menuRow, error) {
	var rows []menuRow
	err := ctrl.DB.Table("smps_daily_menus AS m").
		Select("m.menu_date, s.name AS slot_name, mi.meal_slot_id, mi.meal_item_id, i.name AS item_name, i.description").
		Joins("JOIN smps_daily_menu_items AS mi ON mi.daily_menu_id = m.id").
		Joins("JOIN smps_meal_slots AS s ON s.id = mi.meal_slot_id").
		Joins("JOIN smps_meal_items AS i ON i.id = mi.meal_item_id").
		Where("m.campus_id = ? AND m.menu_date BETWEEN ? AND ?", campusID, from, to).
		Order("m.menu_date ASC").
		Scan(&rows).Error
	return rows, err
}

func dateRangeFromQuery(c *fiber.Ctx, now time.Time) (string, string, error) {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" {
		from = mealclock.Today(now)
	}
	if to == "" {
		to = from
	}
	if _, err := mealclock.DatesBetween(from, to); err != nil {
		return "", "", err
	}
	return from, to, nil
}

// GetMenus: GET /api/menus (?campus_id&from&to) → date -> slot -> item.
func (ctrl *MenuController) GetMenus(c *fiber.Ctx) error {
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

	from, to, err := dateRangeFromQuery(c, ctrl.Now())
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	rows, err := ctrl.fetchMenuRows(campusID, from, to)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch menus")
	}

	out := dto.MenuMap{}
	for _, r := range rows {
		if out[r.MenuDate] == nil {
			out[r.MenuDate] = map[string]dto.MenuItemView{}
		}
		out[r.MenuDate][r.SlotName] = dto.MenuItemView{
			MealItemID:  r.MealItemID,
			Name:        r.ItemName,
			Description: r.Description,
		}
	}
	return helper.JsonOK(c, "Menus fetched successfully", out)
}

// GetMine: GET /api/menus/me (?from&to)
// Menu campus si pemanggil + status pilihan per (tanggal, slot):
// SELECTED kalau ordered; NOT_INTERESTED kalau respon tapi menolak;
// CLOSED kalau deadline lewat; sisanya NOT_SELECTED.
func (ctrl *MenuController) GetMine(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	campusID := p.ResolveCampusID()
	if campusID == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "No campus assigned to this account")
	}

	from, to, err := dateRangeFromQuery(c, ctrl.Now())
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	rows, err := ctrl.fetchMenuRows(campusID, from, to)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch menus")
	}

	var slotCfgs []slotModel.CampusMealSlotModel
	if err := ctrl.DB.Where("campus_id = ?", campusID).Find(&slotCfgs).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch slot configuration")
	}
	cfgBySlot := make(map[int]slotModel.CampusMealSlotModel, len(slotCfgs))
	for _, cfg := range slotCfgs {
		cfgBySlot[cfg.MealSlotID] = cfg
	}

	var selections []selectionModel.UserMealRecordModel
	if err := ctrl.DB.Where(
		"user_id = ? AND meal_date BETWEEN ? AND ?", p.ID, from, to,
	).Find(&selections).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch selections")
	}
	selByKey := map[string]selectionModel.UserMealRecordModel{}
	for _, s := range selections {
		selByKey[s.MealDate+"#"+strconv.Itoa(s.MealSlotID)] = s
	}

	now := ctrl.Now()
	out := make([]dto.MenuWithSelection, 0, len(rows))
	for _, r := range rows {
		entry := dto.MenuWithSelection{
			Date: r.MenuDate,
			Slot: r.SlotName,
			MealItem: &dto.MenuItemView{
				MealItemID:  r.MealItemID,
				Name:        r.ItemName,
				Description: r.Description,
			},
		}

		var deadline *time.Time
		if cfg, ok := cfgBySlot[r.MealSlotID]; ok {
			entry.ServingTime = cfg.StartTime
			if d, err := mealclock.Deadline(r.MenuDate, cfg.StartTime, cfg.SelectionDeadlineOffsetHours); err == nil {
				deadline = &d
				entry.Deadline = mealclock.FormatIST(d)
			}
		}

		sel, responded := selByKey[r.MenuDate+"#"+strconv.Itoa(r.MealSlotID)]
		switch {
		case responded && sel.Ordered:
			entry.Selected = true
			entry.Ordered = true
			entry.Status = "SELECTED"
		case responded:
			entry.Status = "NOT_INTERESTED"
		case deadline != nil && now.After(*deadline):
			entry.Status = "CLOSED"
		default:
			entry.Status = "NOT_SELECTED"
		}
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return slotModel.SlotRank(out[i].Slot) < slotModel.SlotRank(out[j].Slot)
	})
	return helper.JsonOK(c, "Menu with selection fetched successfully", out)
}
