package controller

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mealku_backend/internals/features/meals/qr_tokens/dto"
	qrModel "mealku_backend/internals/features/meals/qr_tokens/model"
	selectionModel "mealku_backend/internals/features/meals/selections/model"
	helper "mealku_backend/internals/helpers"
	helperAuth "mealku_backend/internals/helpers/auth"
	"mealku_backend/internals/helpers/mealclock"
)

type QrTokenController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Now      func() time.Time
}

func NewQrTokenController(db *gorm.DB) *QrTokenController {
	return &QrTokenController{DB: db, Validate: validator.New(), Now: time.Now}
}

// Today: GET /api/qr-token/today (?campus_id)
// Kembalikan token hari ini yang belum expired, atau mint yang baru
// (expiry = akhir hari kalender IST). Upsert keyed (campus, tanggal).
func (ctrl *QrTokenController) Today(c *fiber.Ctx) error {
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

	now := ctrl.Now()
	today := mealclock.Today(now)

	var token qrModel.QrTokenModel
	err = ctrl.DB.Where("campus_id = ? AND valid_date = ?", campusID, today).Take(&token).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch QR token")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || now.After(token.ExpiresAt) {
		expiry, err := mealclock.EndOfDay(today)
		if err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to compute token expiry")
		}
		token = qrModel.QrTokenModel{
			CampusID:  campusID,
			ValidDate: today,
			Token:     uuid.NewString(),
			ExpiresAt: expiry,
		}
		if err := ctrl.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "campus_id"}, {Name: "valid_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at"}),
		}).Create(&token).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to issue QR token")
		}
	}

	return helper.JsonOK(c, "QR token fetched successfully", dto.TodayTokenResponse{
		CampusID:  campusID,
		Date:      today,
		Token:     token.Token,
		ExpiresAt: mealclock.FormatIST(token.ExpiresAt),
	})
}

type currentSlot struct {
	MealSlotID int
	SlotName   string
}

// resolveCurrentSlot cari slot campus yang window [start, end) memuat "now" IST.
func (ctrl *QrTokenController) resolveCurrentSlot(campusID int, now time.Time) (*currentSlot, error) {
	var rows []struct {
		MealSlotID int
		SlotName   string
		StartTime  string
		EndTime    string
	}
	if err := ctrl.DB.Table("smps_campus_meal_slots AS cms").
		Select("cms.meal_slot_id, s.name AS slot_name, cms.start_time, cms.end_time").
		Joins("JOIN smps_meal_slots AS s ON s.id = cms.meal_slot_id").
		Where("cms.campus_id = ?", campusID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	minutes := mealclock.MinutesOfDay(now)
	for _, r := range rows {
		start, err := mealclock.ClockMinutes(r.StartTime)
		if err != nil {
			continue
		}
		end, err := mealclock.ClockMinutes(r.EndTime)
		if err != nil {
			continue
		}
		if minutes >= start && minutes < end {
			return &currentSlot{MealSlotID: r.MealSlotID, SlotName: r.SlotName}, nil
		}
	}
	return nil, nil
}

// validateScan = precondition bersama scan & receive.
func (ctrl *QrTokenController) validateScan(c *fiber.Ctx) (*helperAuth.Principal, *qrModel.QrTokenModel, *currentSlot, string, error) {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return nil, nil, nil, "", err
	}
	campusID := p.ResolveCampusID()
	if campusID == 0 {
		return nil, nil, nil, "", fiber.NewError(fiber.StatusBadRequest, "No campus assigned to this account")
	}

	var req dto.ScanRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, nil, nil, "", fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return nil, nil, nil, "", fiber.NewError(fiber.StatusBadRequest, "Token is required")
	}

	now := ctrl.Now()
	today := mealclock.Today(now)

	var token qrModel.QrTokenModel
	if err := ctrl.DB.Where(
		"token = ? AND campus_id = ? AND valid_date = ?", req.Token, campusID, today,
	).Take(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, "", fiber.NewError(fiber.StatusNotFound, "Invalid QR token")
		}
		return nil, nil, nil, "", err
	}
	if now.After(token.ExpiresAt) {
		return nil, nil, nil, "", fiber.NewError(fiber.StatusBadRequest, "QR token expired")
	}

	slot, err := ctrl.resolveCurrentSlot(campusID, now)
	if err != nil {
		return nil, nil, nil, "", err
	}
	if slot == nil {
		return nil, nil, nil, "", fiber.NewError(fiber.StatusBadRequest, "No active meal slot right now")
	}
	return p, &token, slot, today, nil
}

func (ctrl *QrTokenController) scanState(p *helperAuth.Principal, slot *currentSlot, today string) (*dto.ScanResponse, error) {
	var receiptCount int64
	if err := ctrl.DB.Model(&qrModel.MealReceiptModel{}).
		Where("user_id = ? AND meal_date = ? AND meal_slot_id = ?", p.ID, today, slot.MealSlotID).
		Count(&receiptCount).Error; err != nil {
		return nil, err
	}

	var record selectionModel.UserMealRecordModel
	hasSelection := false
	err := ctrl.DB.Where(
		"user_id = ? AND meal_date = ? AND meal_slot_id = ?", p.ID, today, slot.MealSlotID,
	).Take(&record).Error
	if err == nil {
		hasSelection = record.Ordered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	resp := &dto.ScanResponse{
		Date:            today,
		CurrentSlot:     slot.SlotName,
		MealSlotID:      slot.MealSlotID,
		HasSelection:    hasSelection,
		AlreadyReceived: receiptCount > 0,
	}

	var item struct {
		MealItemID  int
		Name        string
		Description *string
	}
	campusID := p.ResolveCampusID()
	if err := ctrl.DB.Table("smps_daily_menus AS m").
		Select("mi.meal_item_id, i.name, i.description").
		Joins("JOIN smps_daily_menu_items AS mi ON mi.daily_menu_id = m.id").
		Joins("JOIN smps_meal_items AS i ON i.id = mi.meal_item_id").
		Where("m.campus_id = ? AND m.menu_date = ? AND mi.meal_slot_id = ?", campusID, today, slot.MealSlotID).
		Limit(1).
		Scan(&item).Error; err == nil && item.MealItemID != 0 {
		resp.MenuItem = &dto.MenuItemView{
			MealItemID:  item.MealItemID,
			Name:        item.Name,
			Description: item.Description,
		}
	}
	return resp, nil
}

// Scan: POST /api/qr-token/scan — preview tanpa side effect.
func (ctrl *QrTokenController) Scan(c *fiber.Ctx) error {
	p, _, slot, today, err := ctrl.validateScan(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	resp, err := ctrl.scanState(p, slot, today)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to resolve scan state")
	}
	return helper.JsonOK(c, "Scan successful", resp)
}

// Receive: POST /api/qr-token/receive
// Insert receipt kalau belum ada; pemanggilan ulang idempotent dan hanya
// melaporkan already_received=true.
func (ctrl *QrTokenController) Receive(c *fiber.Ctx) error {
	p, token, slot, today, err := ctrl.validateScan(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	resp, err := ctrl.scanState(p, slot, today)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to resolve scan state")
	}
	if resp.AlreadyReceived {
		return helper.JsonOK(c, "Meal already received", resp)
	}

	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		receipt := qrModel.MealReceiptModel{
			UserID:     p.ID,
			MealDate:   today,
			MealSlotID: slot.MealSlotID,
			CampusID:   token.CampusID,
			QrTokenID:  &token.ID,
			ReceivedAt: ctrl.Now(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "meal_date"}, {Name: "meal_slot_id"},
			},
			DoNothing: true,
		}).Create(&receipt).Error; err != nil {
			return err
		}
		// Flag di ledger ikut disinkronkan (kalau barisnya ada).
		return tx.Model(&selectionModel.UserMealRecordModel{}).
			Where("user_id = ? AND meal_date = ? AND meal_slot_id = ?", p.ID, today, slot.MealSlotID).
			Update("received", true).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	resp.AlreadyReceived = false
	return helper.JsonOK(c, "Meal receipt confirmed", resp)
}
