package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	database "mealku_backend/internals/databases"
	slotModel "mealku_backend/internals/features/campus/meal_slots/model"
	qrModel "mealku_backend/internals/features/meals/qr_tokens/model"
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

func seedPrincipal(t *testing.T, db *gorm.DB, campusID int, roles ...string) *helperAuth.Principal {
	t.Helper()
	cid := campusID
	user := userModel.UserModel{Name: "Uji", Email: "uji@test.local", CampusID: &cid, Status: "active"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &helperAuth.Principal{
		ID: user.ID, Name: user.Name, Email: user.Email, Status: user.Status,
		CampusID: &cid, CampusIDs: []int{cid}, Roles: roles,
	}
}

func seedSlotWindow(t *testing.T, db *gorm.DB, campusID int, slotName, start, end string) int {
	t.Helper()
	var slot slotModel.MealSlotModel
	if err := db.Where("name = ?", slotName).Take(&slot).Error; err != nil {
		t.Fatalf("slot %s: %v", slotName, err)
	}
	cfg := slotModel.CampusMealSlotModel{
		CampusID: campusID, MealSlotID: slot.ID, StartTime: start, EndTime: end,
	}
	if err := db.Create(&cfg).Error; err != nil {
		t.Fatalf("seed slot window: %v", err)
	}
	return slot.ID
}

func qrApp(ctrl *QrTokenController, p *helperAuth.Principal) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(helperAuth.LocPrincipal, p)
		return c.Next()
	})
	app.Get("/api/qr-token/today", ctrl.Today)
	app.Post("/api/qr-token/scan", ctrl.Scan)
	app.Post("/api/qr-token/receive", ctrl.Receive)
	return app
}

func request(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp, out
}

func fixedNow() time.Time {
	// 13:00 IST, dalam window LUNCH 12:30-14:00
	return time.Date(2030, 1, 2, 13, 0, 0, 0, mealclock.IST)
}

func TestTodayMintsThenReusesToken(t *testing.T) {
	db := newTestDB(t)
	p := seedPrincipal(t, db, 1, "KITCHEN_STAFF")
	ctrl := NewQrTokenController(db)
	ctrl.Now = fixedNow
	app := qrApp(ctrl, p)

	resp, body := request(t, app, "GET", "/api/qr-token/today", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	first := body["data"].(map[string]interface{})["token"].(string)
	if first == "" {
		t.Fatal("empty token minted")
	}

	_, body2 := request(t, app, "GET", "/api/qr-token/today", nil)
	second := body2["data"].(map[string]interface{})["token"].(string)
	if first != second {
		t.Errorf("unexpired token harus dipakai ulang: %s != %s", first, second)
	}

	var count int64
	db.Model(&qrModel.QrTokenModel{}).Count(&count)
	if count != 1 {
		t.Errorf("token rows = %d, want 1", count)
	}
}

func TestTodayRegeneratesExpiredToken(t *testing.T) {
	db := newTestDB(t)
	p := seedPrincipal(t, db, 1, "INCHARGE")
	ctrl := NewQrTokenController(db)
	ctrl.Now = fixedNow
	app := qrApp(ctrl, p)

	// Token lama untuk hari yang sama tapi sudah expired
	stale := qrModel.QrTokenModel{
		CampusID:  1,
		ValidDate: mealclock.Today(fixedNow()),
		Token:     "stale-token",
		ExpiresAt: fixedNow().Add(-time.Hour),
	}
	if err := db.Create(&stale).Error; err != nil {
		t.Fatalf("seed stale token: %v", err)
	}

	_, body := request(t, app, "GET", "/api/qr-token/today", nil)
	fresh := body["data"].(map[string]interface{})["token"].(string)
	if fresh == "stale-token" {
		t.Error("expired token must be regenerated")
	}

	var count int64
	db.Model(&qrModel.QrTokenModel{}).Count(&count)
	if count != 1 {
		t.Errorf("regenerate must upsert, rows = %d", count)
	}
}

func setupScanFixture(t *testing.T, db *gorm.DB) (*helperAuth.Principal, string, int) {
	t.Helper()
	p := seedPrincipal(t, db, 1, "STUDENT")
	slotID := seedSlotWindow(t, db, 1, "LUNCH", "12:30:00", "14:00:00")

	today := mealclock.Today(fixedNow())
	expiry, _ := mealclock.EndOfDay(today)
	token := qrModel.QrTokenModel{
		CampusID: 1, ValidDate: today, Token: "tok-123", ExpiresAt: expiry,
	}
	if err := db.Create(&token).Error; err != nil {
		t.Fatalf("seed token: %v", err)
	}
	return p, token.Token, slotID
}

func TestScanReportsSelectionState(t *testing.T) {
	db := newTestDB(t)
	p, token, slotID := setupScanFixture(t, db)

	// Student sudah memilih LUNCH hari ini
	rec := selectionModel.UserMealRecordModel{
		UserID: p.ID, MealDate: mealclock.Today(fixedNow()), MealSlotID: slotID,
		CampusID: 1, Ordered: true,
	}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("seed selection: %v", err)
	}

	ctrl := NewQrTokenController(db)
	ctrl.Now = fixedNow
	app := qrApp(ctrl, p)

	resp, body := request(t, app, "POST", "/api/qr-token/scan", map[string]string{"token": token})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data := body["data"].(map[string]interface{})
	if data["current_slot"] != "LUNCH" {
		t.Errorf("current_slot = %v, want LUNCH", data["current_slot"])
	}
	if data["has_selection"] != true {
		t.Errorf("has_selection = %v, want true", data["has_selection"])
	}
	if data["already_received"] != false {
		t.Errorf("already_received = %v, want false", data["already_received"])
	}

	// Scan tidak boleh menulis receipt
	var count int64
	db.Model(&qrModel.MealReceiptModel{}).Count(&count)
	if count != 0 {
		t.Errorf("scan wrote %d receipts, want 0", count)
	}
}

func TestScanOutsideSlotWindowRejected(t *testing.T) {
	db := newTestDB(t)
	p, token, _ := setupScanFixture(t, db)

	ctrl := NewQrTokenController(db)
	// 16:00 IST: di luar semua window
	ctrl.Now = func() time.Time {
		return time.Date(2030, 1, 2, 16, 0, 0, 0, mealclock.IST)
	}
	app := qrApp(ctrl, p)

	resp, _ := request(t, app, "POST", "/api/qr-token/scan", map[string]string{"token": token})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestScanUnknownTokenRejected(t *testing.T) {
	db := newTestDB(t)
	p, _, _ := setupScanFixture(t, db)

	ctrl := NewQrTokenController(db)
	ctrl.Now = fixedNow
	app := qrApp(ctrl, p)

	resp, _ := request(t, app, "POST", "/api/qr-token/scan", map[string]string{"token": "bukan-token"})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestReceiveIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	p, token, slotID := setupScanFixture(t, db)

	rec := selectionModel.UserMealRecordModel{
		UserID: p.ID, MealDate: mealclock.Today(fixedNow()), MealSlotID: slotID,
		CampusID: 1, Ordered: true,
	}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("seed selection: %v", err)
	}

	ctrl := NewQrTokenController(db)
	ctrl.Now = fixedNow
	app := qrApp(ctrl, p)

	resp, body := request(t, app, "POST", "/api/qr-token/receive", map[string]string{"token": token})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("first receive: status %d", resp.StatusCode)
	}
	if body["data"].(map[string]interface{})["already_received"] != false {
		t.Error("first receive must not report already_received")
	}

	resp2, body2 := request(t, app, "POST", "/api/qr-token/receive", map[string]string{"token": token})
	if resp2.StatusCode != fiber.StatusOK {
		t.Fatalf("second receive: status %d", resp2.StatusCode)
	}
	if body2["data"].(map[string]interface{})["already_received"] != true {
		t.Error("second receive must report already_received=true")
	}

	var count int64
	db.Model(&qrModel.MealReceiptModel{}).
		Where("user_id = ? AND meal_slot_id = ?", p.ID, slotID).
		Count(&count)
	if count != 1 {
		t.Errorf("receipt rows = %d, want exactly 1", count)
	}

	// Flag ledger ikut tersinkron
	var after selectionModel.UserMealRecordModel
	db.Where("user_id = ?", p.ID).Take(&after)
	if !after.Received {
		t.Error("selection ledger received flag should be true after receive")
	}
}
