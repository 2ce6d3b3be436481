package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	database "mealku_backend/internals/databases"
	slotModel "mealku_backend/internals/features/campus/meal_slots/model"
	selectionModel "mealku_backend/internals/features/meals/selections/model"
	userModel "mealku_backend/internals/features/users/users/model"
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

func seedStudent(t *testing.T, db *gorm.DB, campusID int) *helperAuth.Principal {
	t.Helper()
	cid := campusID
	user := userModel.UserModel{Name: "Siswa Uji", Email: "siswa@test.local", CampusID: &cid, Status: "active"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &helperAuth.Principal{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Status:    user.Status,
		CampusID:  &cid,
		CampusIDs: []int{cid},
		Roles:     []string{"STUDENT"},
	}
}

func seedSlotConfig(t *testing.T, db *gorm.DB, campusID int, slotName, start, end string, offset int) int {
	t.Helper()
	var slot slotModel.MealSlotModel
	if err := db.Where("name = ?", slotName).Take(&slot).Error; err != nil {
		t.Fatalf("slot %s not seeded: %v", slotName, err)
	}
	cfg := slotModel.CampusMealSlotModel{
		CampusID:                     campusID,
		MealSlotID:                   slot.ID,
		StartTime:                    start,
		EndTime:                      end,
		SelectionDeadlineOffsetHours: offset,
	}
	if err := db.Create(&cfg).Error; err != nil {
		t.Fatalf("seed slot config: %v", err)
	}
	return slot.ID
}

func selectionApp(db *gorm.DB, ctrl *SelectionController, p *helperAuth.Principal) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(helperAuth.LocPrincipal, p)
		return c.Next()
	})
	app.Post("/api/meal-selections", ctrl.Create)
	app.Get("/api/meal-selections/me", ctrl.GetMine)
	app.Get("/api/meal-selections/admin/students/:id/history", ctrl.GetStudentHistory)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestCreateSelectionBeforeDeadline(t *testing.T) {
	db := newTestDB(t)
	p := seedStudent(t, db, 1)
	slotID := seedSlotConfig(t, db, 1, "LUNCH", "12:30:00", "14:00:00", -4)

	ctrl := NewSelectionController(db)
	// 05:00 IST, deadline 08:30 IST -> masih terbuka
	ctrl.Now = func() time.Time {
		return time.Date(2030, 1, 2, 5, 0, 0, 0, mealclock.IST)
	}
	app := selectionApp(db, ctrl, p)

	resp := doJSON(t, app, "POST", "/api/meal-selections", map[string]interface{}{
		"date":       "2030-01-02",
		"selections": []map[string]interface{}{{"slot": "LUNCH", "ordered": true}},
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var rec selectionModel.UserMealRecordModel
	if err := db.Where("user_id = ? AND meal_date = ? AND meal_slot_id = ?", p.ID, "2030-01-02", slotID).
		Take(&rec).Error; err != nil {
		t.Fatalf("record not written: %v", err)
	}
	if !rec.Ordered || rec.Received {
		t.Errorf("record = ordered %v received %v, want ordered=true received=false", rec.Ordered, rec.Received)
	}
}

func TestCreateSelectionAfterDeadlineRejected(t *testing.T) {
	db := newTestDB(t)
	p := seedStudent(t, db, 1)
	seedSlotConfig(t, db, 1, "LUNCH", "12:30:00", "14:00:00", -4)

	ctrl := NewSelectionController(db)
	// 09:00 IST > deadline 08:30 IST
	ctrl.Now = func() time.Time {
		return time.Date(2030, 1, 2, 9, 0, 0, 0, mealclock.IST)
	}
	app := selectionApp(db, ctrl, p)

	resp := doJSON(t, app, "POST", "/api/meal-selections", map[string]interface{}{
		"date":       "2030-01-02",
		"selections": []map[string]interface{}{{"slot": "LUNCH", "ordered": true}},
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var count int64
	db.Model(&selectionModel.UserMealRecordModel{}).Count(&count)
	if count != 0 {
		t.Errorf("no record should be written after deadline, got %d", count)
	}
}

func TestCreateSelectionUpsertResetsReceived(t *testing.T) {
	db := newTestDB(t)
	p := seedStudent(t, db, 1)
	slotID := seedSlotConfig(t, db, 1, "DINNER", "19:00:00", "21:00:00", -2)

	ctrl := NewSelectionController(db)
	ctrl.Now = func() time.Time {
		return time.Date(2030, 1, 2, 8, 0, 0, 0, mealclock.IST)
	}
	app := selectionApp(db, ctrl, p)

	body := map[string]interface{}{
		"date":       "2030-01-02",
		"selections": []map[string]interface{}{{"slot": "DINNER", "ordered": true}},
	}
	if resp := doJSON(t, app, "POST", "/api/meal-selections", body); resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("first write: status %d", resp.StatusCode)
	}

	// Simulasikan sudah diterima, lalu tulis ulang pilihan
	if err := db.Model(&selectionModel.UserMealRecordModel{}).
		Where("user_id = ?", p.ID).
		Update("received", true).Error; err != nil {
		t.Fatalf("flag received: %v", err)
	}
	body["selections"] = []map[string]interface{}{{"slot": "DINNER", "ordered": false}}
	if resp := doJSON(t, app, "POST", "/api/meal-selections", body); resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("second write: status %d", resp.StatusCode)
	}

	var count int64
	db.Model(&selectionModel.UserMealRecordModel{}).
		Where("user_id = ? AND meal_date = ? AND meal_slot_id = ?", p.ID, "2030-01-02", slotID).
		Count(&count)
	if count != 1 {
		t.Fatalf("upsert must keep exactly one row, got %d", count)
	}

	var rec selectionModel.UserMealRecordModel
	db.Where("user_id = ?", p.ID).Take(&rec)
	if rec.Ordered {
		t.Error("ordered should be false after opt-out rewrite")
	}
	if rec.Received {
		t.Error("received must be reset to false on rewrite")
	}
}

func TestCreateSelectionDateRangeExpansion(t *testing.T) {
	db := newTestDB(t)
	p := seedStudent(t, db, 1)
	seedSlotConfig(t, db, 1, "BREAKFAST", "08:00:00", "09:30:00", -12)

	ctrl := NewSelectionController(db)
	ctrl.Now = func() time.Time {
		return time.Date(2030, 1, 1, 6, 0, 0, 0, mealclock.IST)
	}
	app := selectionApp(db, ctrl, p)

	resp := doJSON(t, app, "POST", "/api/meal-selections", map[string]interface{}{
		"from":       "2030-01-03",
		"to":         "2030-01-05",
		"selections": []map[string]interface{}{{"slot": "BREAKFAST", "ordered": true}},
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var count int64
	db.Model(&selectionModel.UserMealRecordModel{}).Where("user_id = ?", p.ID).Count(&count)
	if count != 3 {
		t.Errorf("range 3 hari harus jadi 3 baris, got %d", count)
	}
}

func TestGetMineReturnsSlotStates(t *testing.T) {
	db := newTestDB(t)
	p := seedStudent(t, db, 1)
	seedSlotConfig(t, db, 1, "LUNCH", "12:30:00", "14:00:00", -4)

	ctrl := NewSelectionController(db)
	ctrl.Now = func() time.Time {
		return time.Date(2030, 1, 2, 5, 0, 0, 0, mealclock.IST)
	}
	app := selectionApp(db, ctrl, p)

	doJSON(t, app, "POST", "/api/meal-selections", map[string]interface{}{
		"date":       "2030-01-02",
		"selections": []map[string]interface{}{{"slot": "LUNCH", "ordered": true}},
	})

	resp := doJSON(t, app, "GET", "/api/meal-selections/me?from=2030-01-02&to=2030-01-02", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("data bukan map: %v", body["data"])
	}
	day, ok := data["2030-01-02"].(map[string]interface{})
	if !ok {
		t.Fatalf("tanggal tidak ada di response: %v", data)
	}
	lunch, ok := day["LUNCH"].(map[string]interface{})
	if !ok {
		t.Fatalf("slot LUNCH tidak ada: %v", day)
	}
	if lunch["selected"] != true {
		t.Errorf("selected = %v, want true", lunch["selected"])
	}
	if lunch["received"] != false {
		t.Errorf("received = %v, want false", lunch["received"])
	}
}

func TestGetMineSlotFilterByNameAndID(t *testing.T) {
	db := newTestDB(t)
	p := seedStudent(t, db, 1)
	lunchID := seedSlotConfig(t, db, 1, "LUNCH", "12:30:00", "14:00:00", -4)
	seedSlotConfig(t, db, 1, "DINNER", "19:00:00", "21:00:00", -2)

	ctrl := NewSelectionController(db)
	ctrl.Now = func() time.Time {
		return time.Date(2030, 1, 2, 5, 0, 0, 0, mealclock.IST)
	}
	app := selectionApp(db, ctrl, p)

	doJSON(t, app, "POST", "/api/meal-selections", map[string]interface{}{
		"date": "2030-01-02",
		"selections": []map[string]interface{}{
			{"slot": "LUNCH", "ordered": true},
			{"slot": "DINNER", "ordered": true},
		},
	})

	for _, filter := range []string{"LUNCH", strconv.Itoa(lunchID)} {
		resp := doJSON(t, app, "GET", "/api/meal-selections/me?from=2030-01-02&to=2030-01-02&slot="+filter, nil)
		body := decodeBody(t, resp)
		day := body["data"].(map[string]interface{})["2030-01-02"].(map[string]interface{})
		if len(day) != 1 {
			t.Errorf("filter %q: got %d slots, want 1", filter, len(day))
		}
		if _, ok := day["LUNCH"]; !ok {
			t.Errorf("filter %q: LUNCH missing", filter)
		}
	}
}
