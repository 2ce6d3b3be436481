package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mealku_backend/internals/features/meals/meal_items/dto"
	mealItemModel "mealku_backend/internals/features/meals/meal_items/model"
	helper "mealku_backend/internals/helpers"
)

type MealItemController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewMealItemController(db *gorm.DB) *MealItemController {
	return &MealItemController{DB: db, Validate: validator.New()}
}

// Create: POST /api/meal-items
func (ctrl *MealItemController) Create(c *fiber.Ctx) error {
	var req dto.CreateMealItemRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	item := mealItemModel.MealItemModel{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if err := ctrl.DB.Create(&item).Error; err != nil {
		low := strings.ToLower(err.Error())
		if strings.Contains(low, "duplicate key") || strings.Contains(low, "unique") {
			return helper.JsonError(c, fiber.StatusBadRequest, "Meal item already exists")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create meal item")
	}
	return helper.JsonCreated(c, "Meal item created successfully", item)
}

// List: GET /api/meal-items (?active=true|false, default semua)
func (ctrl *MealItemController) List(c *fiber.Ctx) error {
	q := ctrl.DB.Model(&mealItemModel.MealItemModel{}).Order("name ASC")
	switch strings.ToLower(c.Query("active")) {
	case "true":
		q = q.Where("is_active = ?", true)
	case "false":
		q = q.Where("is_active = ?", false)
	}
	var items []mealItemModel.MealItemModel
	if err := q.Find(&items).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch meal items")
	}
	return helper.JsonOK(c, "Meal items fetched successfully", items)
}
