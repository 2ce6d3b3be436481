package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mealku_backend/internals/constants"
	campusModel "mealku_backend/internals/features/campus/campuses/model"
	"mealku_backend/internals/features/users/users/dto"
	userModel "mealku_backend/internals/features/users/users/model"
	"mealku_backend/internals/features/users/users/service"
	helper "mealku_backend/internals/helpers"
	helperAuth "mealku_backend/internals/helpers/auth"
)

/* ===============================
   Role assignment (diff-based)
=================================*/

// AssignRoles: POST /api/users/:userId/roles
// Set role target = persis set yang diminta (stale dihapus, baru ditambah).
// Non super admin hanya boleh memberi STUDENT / KITCHEN_STAFF / INCHARGE.
func (ctrl *UserController) AssignRoles(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	targetID, err := c.ParamsInt("userId")
	if err != nil || targetID <= 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid user id")
	}

	var req dto.AssignRolesRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	wanted := make(map[string]bool, len(req.Roles))
	for _, r := range req.Roles {
		name := strings.ToUpper(strings.TrimSpace(r))
		if !p.IsSuperAdmin() {
			grantable := false
			for _, g := range constants.AdminGrantableRoles {
				if g == name {
					grantable = true
					break
				}
			}
			if !grantable {
				return helper.JsonError(c, fiber.StatusForbidden, "Only super admin can grant role "+name)
			}
		}
		wanted[name] = true
	}

	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var target userModel.UserModel
		if err := tx.Where("id = ?", targetID).Take(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "User not found")
			}
			return err
		}
		primary, err := helperAuth.PrimaryCampusID(tx, targetID)
		if err != nil {
			return err
		}
		if primary != 0 && !p.CanAccessCampus(primary) {
			return fiber.NewError(fiber.StatusForbidden, "You do not have access to this user's campus")
		}

		current, err := service.RoleNamesOf(tx, targetID)
		if err != nil {
			return err
		}
		currentSet := make(map[string]bool, len(current))
		for _, r := range current {
			currentSet[r] = true
		}

		// Hapus role yang tidak diminta lagi
		for _, stale := range current {
			if wanted[stale] {
				continue
			}
			if err := tx.Where(
				"user_id = ? AND role_id IN (SELECT id FROM smps_roles WHERE name = ?)",
				targetID, stale,
			).Delete(&userModel.UserRoleModel{}).Error; err != nil {
				return err
			}
		}
		// Tambah role baru
		for name := range wanted {
			if currentSet[name] {
				continue
			}
			if err := service.GrantRole(tx, targetID, name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	roles, _ := service.RoleNamesOf(ctrl.DB, targetID)
	return helper.JsonUpdated(c, "Roles updated successfully", fiber.Map{
		"user_id": targetID,
		"roles":   roles,
	})
}

/* ===============================
   Campus assignment
=================================*/

func (ctrl *UserController) setCampus(c *fiber.Ctx, targetID int, campusID int) error {
	err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var target userModel.UserModel
		if err := tx.Where("id = ?", targetID).Take(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "User not found")
			}
			return err
		}
		var campus campusModel.CampusModel
		if err := tx.Where("id = ?", campusID).Take(&campus).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Campus not found")
			}
			return err
		}
		return service.SetPrimaryCampus(tx, targetID, campusID)
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Campus updated successfully", fiber.Map{
		"user_id":   targetID,
		"campus_id": campusID,
	})
}

// SetUserCampus: POST /api/users/:userId/campus — admin set primary campus.
func (ctrl *UserController) SetUserCampus(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	targetID, err := c.ParamsInt("userId")
	if err != nil || targetID <= 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid user id")
	}
	var req dto.SetCampusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if !p.CanAccessCampus(req.CampusID) {
		return helper.JsonError(c, fiber.StatusForbidden, "You do not have access to this campus")
	}
	return ctrl.setCampus(c, targetID, req.CampusID)
}

// SetMyCampus: POST /api/users/me/campus — user pindah campus sendiri.
func (ctrl *UserController) SetMyCampus(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.SetCampusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	return ctrl.setCampus(c, p.ID, req.CampusID)
}
