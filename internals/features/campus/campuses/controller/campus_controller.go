package controller

import (
	"gorm.io/gorm"

	"github.com/gofiber/fiber/v2"

	campusModel "mealku_backend/internals/features/campus/campuses/model"
	helper "mealku_backend/internals/helpers"
)

type CampusController struct {
	DB *gorm.DB
}

func NewCampusController(db *gorm.DB) *CampusController {
	return &CampusController{DB: db}
}

// GetCampuses: GET /api/campuses — semua campus aktif, urut nama.
func (ctrl *CampusController) GetCampuses(c *fiber.Ctx) error {
	var campuses []campusModel.CampusModel
	if err := ctrl.DB.Where("status = ?", "active").
		Order("name ASC").
		Find(&campuses).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch campuses")
	}
	return helper.JsonOK(c, "Campuses fetched successfully", campuses)
}
