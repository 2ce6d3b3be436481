package service

import (
	"errors"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"mealku_backend/internals/configs"
	"mealku_backend/internals/constants"
	campusModel "mealku_backend/internals/features/campus/campuses/model"
	userModel "mealku_backend/internals/features/users/users/model"
	userService "mealku_backend/internals/features/users/users/service"
)

const sessionTokenTTL = 24 * time.Hour

// GoogleIdentity = klaim yang kita pakai dari ID token Google.
type GoogleIdentity struct {
	Sub   string
	Email string
	Name  string
}

// VerifyGoogleIDToken cek signature + audience, lalu decode klaim.
func VerifyGoogleIDToken(idToken string) (*GoogleIdentity, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{configs.GoogleClientID}); err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid Google ID Token")
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to decode ID Token")
	}
	return &GoogleIdentity{
		Sub:   claimSet.Sub,
		Email: claimSet.Email,
		Name:  claimSet.Name,
	}, nil
}

// ResolveOrProvisionUser cari user by email; kalau belum ada, auto-provision:
// campus default (DEFAULT_CAMPUS_ID, fallback campus pertama, gagal kalau
// tidak ada campus sama sekali), role STUDENT, link primary campus.
// google_id di-backfill pada login pertama.
func ResolveOrProvisionUser(db *gorm.DB, identity *GoogleIdentity) (*userModel.UserModel, error) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))

	var user userModel.UserModel
	err := db.Where("email = ?", email).Take(&user).Error
	if err == nil {
		if user.GoogleID == nil || *user.GoogleID == "" {
			sub := identity.Sub
			if err := db.Model(&user).Update("google_id", sub).Error; err != nil {
				return nil, err
			}
			user.GoogleID = &sub
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		campusID := configs.DefaultCampusID
		if campusID != 0 {
			var count int64
			if err := tx.Model(&campusModel.CampusModel{}).
				Where("id = ?", campusID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				campusID = 0
			}
		}
		if campusID == 0 {
			var first campusModel.CampusModel
			if err := tx.Order("id ASC").Take(&first).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusInternalServerError, "No campus configured for new users")
				}
				return err
			}
			campusID = first.ID
		}

		sub := identity.Sub
		user = userModel.UserModel{
			Name:     identity.Name,
			Email:    email,
			GoogleID: &sub,
			CampusID: &campusID,
			Status:   "active",
		}
		if user.Name == "" {
			user.Name = email
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := userService.SetPrimaryCampus(tx, user.ID, campusID); err != nil {
			return err
		}
		return userService.GrantRole(tx, user.ID, constants.RoleStudent)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// IssueSessionToken menerbitkan JWT HS256 dengan klaim sesi standar.
func IssueSessionToken(user *userModel.UserModel, campusName string, roles []string) (string, error) {
	now := time.Now()
	campusID := 0
	if user.CampusID != nil {
		campusID = *user.CampusID
	}
	claims := jwt.MapClaims{
		"sub":         user.ID,
		"email":       user.Email,
		"campus_id":   campusID,
		"campus_name": campusName,
		"status":      user.Status,
		"roles":       roles,
		"iat":         now.Unix(),
		"exp":         now.Add(sessionTokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(configs.JWTSecret))
}

// CampusNameOf best-effort lookup nama campus (kosong kalau tidak ketemu).
func CampusNameOf(db *gorm.DB, campusID *int) string {
	if campusID == nil || *campusID == 0 {
		return ""
	}
	var name string
	if err := db.Table("smps_campuses").
		Where("id = ?", *campusID).
		Limit(1).
		Pluck("name", &name).Error; err != nil {
		return ""
	}
	return name
}
