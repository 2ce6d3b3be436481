package controller

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
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

type UserController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db, Validate: validator.New()}
}

func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "duplicate key") || strings.Contains(low, "unique")
}

// resolveScopeCampus menentukan campus yang boleh dilihat requester.
// Super admin: bebas (0 = semua). Admin: wajib dalam scope-nya.
func resolveScopeCampus(c *fiber.Ctx, p *helperAuth.Principal) (int, error) {
	raw := strings.TrimSpace(c.Query("campus_id"))
	if raw == "" {
		if p.IsSuperAdmin() {
			return 0, nil
		}
		campusID := p.ResolveCampusID()
		if campusID == 0 {
			return 0, fiber.NewError(fiber.StatusBadRequest, "No campus assigned to this account")
		}
		return campusID, nil
	}
	campusID, err := strconv.Atoi(raw)
	if err != nil || campusID <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid campus_id")
	}
	if !p.CanAccessCampus(campusID) {
		return 0, fiber.NewError(fiber.StatusForbidden, "You do not have access to this campus")
	}
	return campusID, nil
}

// GetUsers: GET /api/users (?campus_id) — list user dalam scope + counters.
func (ctrl *UserController) GetUsers(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	campusID, err := resolveScopeCampus(c, p)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	q := ctrl.DB.Model(&userModel.UserModel{}).Order("name ASC")
	if campusID != 0 {
		q = q.Where("campus_id = ?", campusID)
	}
	var users []userModel.UserModel
	if err := q.Find(&users).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch users")
	}

	resp := dto.UserListResponse{Users: make([]dto.UserResponse, 0, len(users))}
	for i := range users {
		roles, err := service.RoleNamesOf(ctrl.DB, users[i].ID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch user roles")
		}
		resp.Users = append(resp.Users, dto.ToUserResponse(&users[i], roles))
		for _, r := range roles {
			switch r {
			case constants.RoleAdmin:
				resp.AdminCount++
			case constants.RoleStudent:
				resp.StudentCount++
			}
		}
	}
	return helper.JsonOK(c, "Users fetched successfully", resp)
}

// GetAllBasic: GET /api/users/all — listing ringkas (id, nama, email, campus).
func (ctrl *UserController) GetAllBasic(c *fiber.Ctx) error {
	var rows []struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		CampusID *int   `json:"campus_id"`
	}
	if err := ctrl.DB.Table("smps_users").
		Select("id, name, email, campus_id").
		Order("name ASC").
		Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch users")
	}
	return helper.JsonOK(c, "Users fetched successfully", rows)
}

// GetAdmins: GET /api/users/all/admins (?role&campus_id&search)
func (ctrl *UserController) GetAdmins(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	campusID, err := resolveScopeCampus(c, p)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	roleFilter := strings.ToUpper(strings.TrimSpace(c.Query("role")))
	if roleFilter == "" {
		roleFilter = constants.RoleAdmin
	}

	q := ctrl.DB.Table("smps_users AS u").
		Select("DISTINCT u.id, u.name, u.email, u.campus_id, u.status, u.created_at").
		Joins("JOIN smps_user_role AS ur ON ur.user_id = u.id").
		Joins("JOIN smps_roles AS r ON r.id = ur.role_id").
		Where("r.name = ?", roleFilter).
		Order("u.name ASC")
	if campusID != 0 {
		q = q.Where("u.campus_id = ?", campusID)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(u.name) LIKE ? OR LOWER(u.email) LIKE ?", like, like)
	}

	var users []userModel.UserModel
	if err := q.Scan(&users).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch admins")
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		roles, err := service.RoleNamesOf(ctrl.DB, users[i].ID)
		if err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch user roles")
		}
		out = append(out, dto.ToUserResponse(&users[i], roles))
	}
	return helper.JsonOK(c, "Admins fetched successfully", out)
}

// CreateUser: POST /api/users — admin membuat user baru.
func (ctrl *UserController) CreateUser(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if !p.CanAccessCampus(req.CampusID) {
		return helper.JsonError(c, fiber.StatusForbidden, "You do not have access to this campus")
	}
	roleName := req.Role
	if roleName == "" {
		roleName = constants.RoleStudent
	}
	if !p.IsSuperAdmin() {
		allowed := false
		for _, r := range constants.AdminGrantableRoles {
			if r == roleName {
				allowed = true
				break
			}
		}
		if !allowed {
			return helper.JsonError(c, fiber.StatusForbidden, "Only super admin can grant this role")
		}
	}

	var created userModel.UserModel
	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var campus campusModel.CampusModel
		if err := tx.Where("id = ?", req.CampusID).Take(&campus).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Campus not found")
			}
			return err
		}

		var count int64
		if err := tx.Model(&userModel.UserModel{}).
			Where("email = ?", strings.ToLower(req.Email)).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Email already registered")
		}

		created = userModel.UserModel{
			Name:     req.Name,
			Email:    strings.ToLower(req.Email),
			Address:  req.Address,
			CampusID: &req.CampusID,
			Status:   "active",
		}
		if err := tx.Create(&created).Error; err != nil {
			if isDuplicateErr(err) {
				return fiber.NewError(fiber.StatusBadRequest, "Email already registered")
			}
			return err
		}
		if err := service.SetPrimaryCampus(tx, created.ID, req.CampusID); err != nil {
			return err
		}
		return service.GrantRole(tx, created.ID, roleName)
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "User created successfully", dto.ToUserResponse(&created, []string{strings.ToUpper(roleName)}))
}

// SelfRegister: POST /api/users/register — daftar mandiri sebagai STUDENT.
func (ctrl *UserController) SelfRegister(c *fiber.Ctx) error {
	var req dto.SelfRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var created userModel.UserModel
	err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		var campus campusModel.CampusModel
		if err := tx.Where("id = ?", req.CampusID).Take(&campus).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Campus not found")
			}
			return err
		}

		var count int64
		if err := tx.Model(&userModel.UserModel{}).
			Where("email = ?", strings.ToLower(req.Email)).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Email already registered")
		}

		created = userModel.UserModel{
			Name:     req.Name,
			Email:    strings.ToLower(req.Email),
			Address:  req.Address,
			CampusID: &req.CampusID,
			Status:   "active",
		}
		if err := tx.Create(&created).Error; err != nil {
			if isDuplicateErr(err) {
				return fiber.NewError(fiber.StatusBadRequest, "Email already registered")
			}
			return err
		}
		if err := service.SetPrimaryCampus(tx, created.ID, req.CampusID); err != nil {
			return err
		}
		return service.GrantRole(tx, created.ID, constants.RoleStudent)
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Registration successful", dto.ToUserResponse(&created, []string{constants.RoleStudent}))
}

// SelfUpdate: POST /api/users/me — update profil sendiri (nama, alamat).
func (ctrl *UserController) SelfUpdate(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if len(updates) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Nothing to update")
	}
	if err := ctrl.DB.Model(&userModel.UserModel{}).
		Where("id = ?", p.ID).
		Updates(updates).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update profile")
	}

	var user userModel.UserModel
	if err := ctrl.DB.Where("id = ?", p.ID).Take(&user).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch user")
	}
	return helper.JsonUpdated(c, "Profile updated successfully", dto.ToUserResponse(&user, p.Roles))
}

// UpdateUser: POST /api/users/:userId — admin update user lain (scope campus).
func (ctrl *UserController) UpdateUser(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	targetID, err := c.ParamsInt("userId")
	if err != nil || targetID <= 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid user id")
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var target userModel.UserModel
	if err := ctrl.DB.Where("id = ?", targetID).Take(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "User not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch user")
	}

	primary, err := helperAuth.PrimaryCampusID(ctrl.DB, targetID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to resolve campus")
	}
	if primary != 0 && !p.CanAccessCampus(primary) {
		return helper.JsonError(c, fiber.StatusForbidden, "You do not have access to this user's campus")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Nothing to update")
	}
	if err := ctrl.DB.Model(&target).Updates(updates).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update user")
	}
	roles, _ := service.RoleNamesOf(ctrl.DB, targetID)
	return helper.JsonUpdated(c, "User updated successfully", dto.ToUserResponse(&target, roles))
}

// DeleteUser: DELETE /api/users/:userId/delete — cascade role & campus link.
func (ctrl *UserController) DeleteUser(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	targetID, err := c.ParamsInt("userId")
	if err != nil || targetID <= 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid user id")
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

		if err := tx.Where("user_id = ?", targetID).Delete(&userModel.UserRoleModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&userModel.UserCampusModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&target).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "User deleted successfully", fiber.Map{"id": targetID})
}
