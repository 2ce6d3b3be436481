package controller

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mealku_backend/internals/constants"
	campusModel "mealku_backend/internals/features/campus/campuses/model"
	"mealku_backend/internals/features/users/bulk_upload/dto"
	userModel "mealku_backend/internals/features/users/users/model"
	userService "mealku_backend/internals/features/users/users/service"
	helper "mealku_backend/internals/helpers"
)

type BulkUploadController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewBulkUploadController(db *gorm.DB) *BulkUploadController {
	return &BulkUploadController{DB: db, Validate: validator.New()}
}

// UploadStudents: POST /api/bulk-upload/students
// Per baris: campus wajib ketemu by name (hard fail), email baru di-insert
// lengkap dengan role STUDENT + link primary campus, email lama di-update
// namanya kalau berubah dan dihitung sebagai already_present.
func (ctrl *BulkUploadController) UploadStudents(c *fiber.Ctx) error {
	var req dto.BulkUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	resp := dto.BulkUploadResponse{
		StudentsEnrolled: make([]dto.EnrolledStudent, 0, len(req.Students)),
	}

	err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		// Cache campus per nama, biar satu batch tidak query berulang.
		campusByName := map[string]*campusModel.CampusModel{}

		for _, row := range req.Students {
			campusName := strings.TrimSpace(row.CampusName)
			campus, ok := campusByName[strings.ToLower(campusName)]
			if !ok {
				var found campusModel.CampusModel
				if err := tx.Where("LOWER(name) = ?", strings.ToLower(campusName)).
					Take(&found).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fiber.NewError(fiber.StatusBadRequest, "Campus not found: "+campusName)
					}
					return err
				}
				campus = &found
				campusByName[strings.ToLower(campusName)] = campus
			}

			email := strings.ToLower(strings.TrimSpace(row.Email))
			var existing userModel.UserModel
			err := tx.Where("email = ?", email).Take(&existing).Error
			switch {
			case err == nil:
				if existing.Name != row.Name {
					if err := tx.Model(&existing).Update("name", row.Name).Error; err != nil {
						return err
					}
				}
				resp.AlreadyPresent++
				resp.StudentsEnrolled = append(resp.StudentsEnrolled, dto.EnrolledStudent{
					Email: email, Name: row.Name, Campus: campus.Name, Outcome: "already_present",
				})
			case errors.Is(err, gorm.ErrRecordNotFound):
				created := userModel.UserModel{
					Name:     row.Name,
					Email:    email,
					CampusID: &campus.ID,
					Status:   "active",
				}
				if err := tx.Create(&created).Error; err != nil {
					return err
				}
				if err := userService.SetPrimaryCampus(tx, created.ID, campus.ID); err != nil {
					return err
				}
				if err := userService.GrantRole(tx, created.ID, constants.RoleStudent); err != nil {
					return err
				}
				resp.Added++
				resp.StudentsEnrolled = append(resp.StudentsEnrolled, dto.EnrolledStudent{
					Email: email, Name: row.Name, Campus: campus.Name, Outcome: "added",
				})
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	resp.Message = fmt.Sprintf(
		"%d students successfully added, %d students has been already present",
		resp.Added, resp.AlreadyPresent,
	)
	return helper.JsonCreated(c, resp.Message, resp)
}
