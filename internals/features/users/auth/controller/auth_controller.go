package controller

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mealku_backend/internals/features/users/auth/dto"
	"mealku_backend/internals/features/users/auth/service"
	userModel "mealku_backend/internals/features/users/users/model"
	userService "mealku_backend/internals/features/users/users/service"
	helper "mealku_backend/internals/helpers"
	helperAuth "mealku_backend/internals/helpers/auth"
)

type AuthController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Validate: validator.New()}
}

func setAccessCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

// Login: POST /api/auth/login — tukar Google ID token dengan token sesi.
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	identity, err := service.VerifyGoogleIDToken(req.GoogleIDToken)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if !strings.EqualFold(identity.Email, req.Email) {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Email does not match the Google account")
	}

	user, err := service.ResolveOrProvisionUser(ctrl.DB, identity)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if !user.IsActive() {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Akun Anda telah dinonaktifkan. Hubungi admin.")
	}

	roles, err := userService.RoleNamesOf(ctrl.DB, user.ID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil roles user")
	}
	campusName := service.CampusNameOf(ctrl.DB, user.CampusID)

	token, err := service.IssueSessionToken(user, campusName, roles)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to issue session token")
	}
	setAccessCookie(c, token)

	campusID := 0
	if user.CampusID != nil {
		campusID = *user.CampusID
	}
	return helper.JsonOK(c, "Login successful", dto.LoginResponse{
		AccessToken: token,
		User: dto.LoginUser{
			ID:         user.ID,
			Name:       user.Name,
			Email:      user.Email,
			CampusID:   campusID,
			CampusName: campusName,
			Status:     user.Status,
			Roles:      roles,
		},
	})
}

// Logout: POST /api/auth/logout — hapus cookie sesi.
func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return helper.JsonOK(c, "Logout successful", nil)
}

// Profile: GET /api/auth/profile — identitas hasil hidrasi request ini.
func (ctrl *AuthController) Profile(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Profile fetched successfully", p)
}

// Refresh: POST /api/auth/refresh — terbitkan token baru dari state DB terkini.
func (ctrl *AuthController) Refresh(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var user userModel.UserModel
	if err := ctrl.DB.Where("id = ?", p.ID).Take(&user).Error; err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "User not found")
	}
	campusName := service.CampusNameOf(ctrl.DB, user.CampusID)
	token, err := service.IssueSessionToken(&user, campusName, p.Roles)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to issue session token")
	}
	setAccessCookie(c, token)
	return helper.JsonOK(c, "Token refreshed", fiber.Map{"access_token": token})
}

// Verify: GET /api/auth/verify — introspeksi token yang sedang dipakai.
func (ctrl *AuthController) Verify(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Token valid", fiber.Map{
		"valid":     true,
		"user_id":   p.ID,
		"email":     p.Email,
		"status":    p.Status,
		"roles":     p.Roles,
		"campus_id": p.CampusID,
	})
}
