package controller

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	database "mealku_backend/internals/databases"
	campusModel "mealku_backend/internals/features/campus/campuses/model"
	slotModel "mealku_backend/internals/features/campus/meal_slots/model"
	"mealku_backend/internals/features/meals/kitchen/dto"
	qrModel "mealku_backend/internals/features/meals/qr_tokens/model"
	selectionModel "mealku_backend/internals/features/meals/selections/model"
	helperAuth "mealku_backend/internals/helpers/auth"
	"mealku_backend/internals/helpers/mealclock"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func kitchenApp(ctrl *KitchenController, p *helperAuth.Principal) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(helperAuth.LocPrincipal, p)
		return c.Next()
	})
	app.Get("/api/kitchen/summary", ctrl.Summary)
	app.Get("/api/kitchen/super/summary", ctrl.SuperSummary)
	return app
}

func slotID(t *testing.T, db *gorm.DB, name string) int {
	t.Helper()
	var slot slotModel.MealSlotModel
	if err := db.Where("name = ?", name).Take(&slot).Error; err != nil {
		t.Fatalf("slot %s: %v", name, err)
	}
	return slot.ID
}

func seedRecord(t *testing.T, db *gorm.DB, userID, campusID, slotID int, date string, ordered bool) {
	t.Helper()
	rec := selectionModel.UserMealRecordModel{
		UserID: userID, MealDate: date, MealSlotID: slotID,
		CampusID: campusID, Ordered: ordered,
	}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("seed record: %v", err)
	}
}

func seedReceipt(t *testing.T, db *gorm.DB, userID, campusID, slotID int, date string) {
	t.Helper()
	rcpt := qrModel.MealReceiptModel{
		UserID: userID, MealDate: date, MealSlotID: slotID, CampusID: campusID,
	}
	if err := db.Create(&rcpt).Error; err != nil {
		t.Fatalf("seed receipt: %v", err)
	}
}

func TestSummaryCountsAndClampsMissed(t *testing.T) {
	db := newTestDB(t)
	campus := campusModel.CampusModel{Name: "Kampus Timur", Status: "active"}
	if err := db.Create(&campus).Error; err != nil {
		t.Fatal(err)
	}
	lunch := slotID(t, db, "LUNCH")
	dinner := slotID(t, db, "DINNER")
	date := "2030-01-02"

	// Lunch: 3 pilih, 2 terima -> missed 1
	for _, uid := range []int{1, 2, 3} {
		seedRecord(t, db, uid, campus.ID, lunch, date, true)
	}
	seedRecord(t, db, 4, campus.ID, lunch, date, false) // menolak, tidak dihitung
	seedReceipt(t, db, 1, campus.ID, lunch, date)
	seedReceipt(t, db, 2, campus.ID, lunch, date)

	// Dinner: 0 pilih tapi 1 walk-in terima -> missed harus 0, bukan -1
	seedReceipt(t, db, 5, campus.ID, dinner, date)

	cid := campus.ID
	ctrl := NewKitchenController(db)
	ctrl.Now = func() time.Time { return time.Date(2030, 1, 2, 10, 0, 0, 0, mealclock.IST) }
	app := kitchenApp(ctrl, &helperAuth.Principal{
		ID: 9, Status: "active", CampusID: &cid, CampusIDs: []int{cid},
		Roles: []string{"KITCHEN_STAFF"},
	})

	req := httptest.NewRequest("GET", "/api/kitchen/summary?date="+date, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Data dto.DailySummaryResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Date != date || body.Data.CampusID != campus.ID {
		t.Fatalf("scope = %+v", body.Data)
	}
	if len(body.Data.Slots) != 4 {
		t.Fatalf("slots = %d, want 4", len(body.Data.Slots))
	}
	bySlot := map[string]dto.SlotSummary{}
	for _, s := range body.Data.Slots {
		bySlot[s.Slot] = s
	}
	if s := bySlot["LUNCH"]; s.Selected != 3 || s.Received != 2 || s.Missed != 1 {
		t.Errorf("LUNCH = %+v", s)
	}
	if s := bySlot["DINNER"]; s.Selected != 0 || s.Received != 1 || s.Missed != 0 {
		t.Errorf("DINNER missed must clamp at 0: %+v", s)
	}
	if body.Data.Slots[0].Slot != "BREAKFAST" || body.Data.Slots[3].Slot != "DINNER" {
		t.Errorf("slot order not canonical: %+v", body.Data.Slots)
	}
}

func TestSuperSummaryAveragesAcrossRange(t *testing.T) {
	db := newTestDB(t)
	campus := campusModel.CampusModel{Name: "Kampus Selatan", Status: "active"}
	if err := db.Create(&campus).Error; err != nil {
		t.Fatal(err)
	}
	lunch := slotID(t, db, "LUNCH")

	// 2 hari: hari pertama 2 pilih 1 terima, hari kedua 2 pilih 1 terima
	for _, date := range []string{"2030-01-01", "2030-01-02"} {
		seedRecord(t, db, 1, campus.ID, lunch, date, true)
		seedRecord(t, db, 2, campus.ID, lunch, date, true)
		seedReceipt(t, db, 1, campus.ID, lunch, date)
	}

	ctrl := NewKitchenController(db)
	app := kitchenApp(ctrl, &helperAuth.Principal{ID: 1, Status: "active", Roles: []string{"SUPER_ADMIN"}})

	req := httptest.NewRequest("GET", "/api/kitchen/super/summary?from=2030-01-01&to=2030-01-02", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Data dto.SuperSummaryResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.DayCount != 2 {
		t.Fatalf("day_count = %d, want 2", body.Data.DayCount)
	}

	var lunchRow *dto.CampusSlotAverages
	for i := range body.Data.Rows {
		if body.Data.Rows[i].CampusID == campus.ID && body.Data.Rows[i].Slot == "LUNCH" {
			lunchRow = &body.Data.Rows[i]
		}
	}
	if lunchRow == nil {
		t.Fatalf("no LUNCH row for campus: %+v", body.Data.Rows)
	}
	if lunchRow.AvgSelected != 2 || lunchRow.AvgReceived != 1 {
		t.Errorf("averages = %+v, want avg_selected 2 avg_received 1", lunchRow)
	}
	if lunchRow.MissedPercentage != 0.5 {
		t.Errorf("missed_percentage = %v, want 0.5", lunchRow.MissedPercentage)
	}
}

func TestSummaryRejectsForeignCampus(t *testing.T) {
	db := newTestDB(t)
	mine := campusModel.CampusModel{Name: "Kampus A", Status: "active"}
	other := campusModel.CampusModel{Name: "Kampus B", Status: "active"}
	if err := db.Create(&mine).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatal(err)
	}

	cid := mine.ID
	ctrl := NewKitchenController(db)
	app := kitchenApp(ctrl, &helperAuth.Principal{
		ID: 7, Status: "active", CampusID: &cid, CampusIDs: []int{cid},
		Roles: []string{"KITCHEN_STAFF"},
	})

	req := httptest.NewRequest("GET", "/api/kitchen/summary?campus_id="+strconv.Itoa(other.ID), nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}
