package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	database "mealku_backend/internals/databases"
	campusModel "mealku_backend/internals/features/campus/campuses/model"
	"mealku_backend/internals/features/campus/meal_slots/dto"
	slotModel "mealku_backend/internals/features/campus/meal_slots/model"
	helperAuth "mealku_backend/internals/helpers/auth"
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

func slotApp(ctrl *CampusMealSlotController, p *helperAuth.Principal) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(helperAuth.LocPrincipal, p)
		return c.Next()
	})
	app.Post("/api/campus-meal-slots", ctrl.Upsert)
	app.Get("/api/campus-meal-slots/:campusId", ctrl.GetByCampus)
	return app
}

func postSlots(t *testing.T, app *fiber.App, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode: %v", err)
	}
	req := httptest.NewRequest("POST", "/api/campus-meal-slots", &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestUpsertSlotConfigReplacesExistingRow(t *testing.T) {
	db := newTestDB(t)
	campus := campusModel.CampusModel{Name: "Kampus Barat", Status: "active"}
	if err := db.Create(&campus).Error; err != nil {
		t.Fatal(err)
	}

	cid := campus.ID
	ctrl := NewCampusMealSlotController(db)
	app := slotApp(ctrl, &helperAuth.Principal{
		ID: 1, Status: "active", CampusID: &cid, CampusIDs: []int{cid}, Roles: []string{"ADMIN"},
	})

	first := map[string]interface{}{
		"campus_id": campus.ID,
		"slots": []map[string]interface{}{{
			"slot": "LUNCH", "start_time": "12:00:00", "end_time": "13:30:00",
			"selection_deadline_offset_hours": -4,
		}},
	}
	resp := postSlots(t, app, first)
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("first upsert: status = %d", resp.StatusCode)
	}

	second := map[string]interface{}{
		"campus_id": campus.ID,
		"slots": []map[string]interface{}{{
			"slot": "LUNCH", "start_time": "12:30:00", "end_time": "14:00:00",
			"selection_deadline_offset_hours": -2,
		}},
	}
	resp = postSlots(t, app, second)
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("second upsert: status = %d", resp.StatusCode)
	}

	var rows []slotModel.CampusMealSlotModel
	if err := db.Where("campus_id = ?", campus.ID).Find(&rows).Error; err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].StartTime != "12:30:00" || rows[0].EndTime != "14:00:00" ||
		rows[0].SelectionDeadlineOffsetHours != -2 {
		t.Errorf("row not updated: %+v", rows[0])
	}
}

func TestUpsertSlotConfigRejectsBadClock(t *testing.T) {
	db := newTestDB(t)
	campus := campusModel.CampusModel{Name: "Kampus Barat", Status: "active"}
	if err := db.Create(&campus).Error; err != nil {
		t.Fatal(err)
	}

	cid := campus.ID
	ctrl := NewCampusMealSlotController(db)
	app := slotApp(ctrl, &helperAuth.Principal{
		ID: 1, Status: "active", CampusID: &cid, CampusIDs: []int{cid}, Roles: []string{"ADMIN"},
	})

	resp := postSlots(t, app, map[string]interface{}{
		"campus_id": campus.ID,
		"slots": []map[string]interface{}{{
			"slot": "LUNCH", "start_time": "siang", "end_time": "13:30:00",
		}},
	})
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetByCampusReturnsCanonicalOrder(t *testing.T) {
	db := newTestDB(t)
	campus := campusModel.CampusModel{Name: "Kampus Barat", Status: "active"}
	if err := db.Create(&campus).Error; err != nil {
		t.Fatal(err)
	}

	cid := campus.ID
	ctrl := NewCampusMealSlotController(db)
	app := slotApp(ctrl, &helperAuth.Principal{
		ID: 1, Status: "active", CampusID: &cid, CampusIDs: []int{cid}, Roles: []string{"ADMIN"},
	})

	// Sengaja insert dengan urutan kacau
	resp := postSlots(t, app, map[string]interface{}{
		"campus_id": campus.ID,
		"slots": []map[string]interface{}{
			{"slot": "DINNER", "start_time": "19:00:00", "end_time": "20:30:00"},
			{"slot": "BREAKFAST", "start_time": "07:00:00", "end_time": "08:30:00"},
			{"slot": "SNACKS", "start_time": "16:00:00", "end_time": "16:45:00"},
			{"slot": "LUNCH", "start_time": "12:30:00", "end_time": "14:00:00"},
		},
	})
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("upsert: status = %d", resp.StatusCode)
	}

	req := httptest.NewRequest("GET", "/api/campus-meal-slots/"+strconv.Itoa(campus.ID), nil)
	getResp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != fiber.StatusOK {
		t.Fatalf("get: status = %d", getResp.StatusCode)
	}

	var body struct {
		Data []dto.CampusMealSlotResponse `json:"data"`
	}
	if err := json.NewDecoder(getResp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"BREAKFAST", "LUNCH", "SNACKS", "DINNER"}
	if len(body.Data) != len(want) {
		t.Fatalf("rows = %d, want %d", len(body.Data), len(want))
	}
	for i, name := range want {
		if body.Data[i].Slot != name {
			t.Errorf("pos %d = %s, want %s", i, body.Data[i].Slot, name)
		}
	}
}
