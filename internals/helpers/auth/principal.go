// file: internals/helpers/auth/principal.go
package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mealku_backend/internals/constants"
)

// Key di fiber Locals
const LocPrincipal = "principal"

// Principal = identitas ter-autentikasi hasil hidrasi ulang dari DB
// (role & campus TIDAK dipercaya dari token, selalu query ulang per request).
type Principal struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Status    string   `json:"status"`
	CampusID  *int     `json:"campus_id"`
	CampusIDs []int    `json:"campus_ids"`
	Roles     []string `json:"roles"`
}

func (p *Principal) HasRole(names ...string) bool {
	for _, want := range names {
		for _, r := range p.Roles {
			if strings.EqualFold(r, want) {
				return true
			}
		}
	}
	return false
}

func (p *Principal) IsSuperAdmin() bool { return p.HasRole(constants.RoleSuperAdmin) }
func (p *Principal) IsAdmin() bool      { return p.HasRole(constants.RoleAdmin) }

// CanAccessCampus: super admin bebas; admin hanya campus dalam scope-nya.
func (p *Principal) CanAccessCampus(campusID int) bool {
	if p.IsSuperAdmin() {
		return true
	}
	if !p.IsAdmin() {
		return false
	}
	for _, id := range p.CampusIDs {
		if id == campusID {
			return true
		}
	}
	return false
}

// ResolveCampusID: campus langsung user, fallback campus pertama di link table.
func (p *Principal) ResolveCampusID() int {
	if p.CampusID != nil && *p.CampusID != 0 {
		return *p.CampusID
	}
	if len(p.CampusIDs) > 0 {
		return p.CampusIDs[0]
	}
	return 0
}

// GetPrincipal membaca principal hasil auth middleware.
func GetPrincipal(c *fiber.Ctx) (*Principal, error) {
	p, ok := c.Locals(LocPrincipal).(*Principal)
	if !ok || p == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}
	return p, nil
}

// ResolvePrincipal hidrasi principal dari state DB terkini.
func ResolvePrincipal(db *gorm.DB, userID int) (*Principal, error) {
	var user struct {
		ID       int
		Name     string
		Email    string
		Status   string
		CampusID *int
	}
	if err := db.Table("smps_users").
		Select("id, name, email, status, campus_id").
		Where("id = ?", userID).
		Take(&user).Error; err != nil {
		return nil, err
	}

	var roleNames []string
	if err := db.Table("smps_user_role AS ur").
		Joins("JOIN smps_roles AS r ON r.id = ur.role_id").
		Where("ur.user_id = ?", userID).
		Pluck("r.name", &roleNames).Error; err != nil {
		return nil, err
	}
	for i, r := range roleNames {
		roleNames[i] = strings.ToUpper(r)
	}

	var linkedCampuses []int
	if err := db.Table("smps_user_campuses").
		Where("user_id = ?", userID).
		Pluck("campus_id", &linkedCampuses).Error; err != nil {
		return nil, err
	}

	campusIDs := linkedCampuses
	if user.CampusID != nil {
		seen := false
		for _, id := range campusIDs {
			if id == *user.CampusID {
				seen = true
				break
			}
		}
		if !seen {
			campusIDs = append(campusIDs, *user.CampusID)
		}
	}

	return &Principal{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Status:    user.Status,
		CampusID:  user.CampusID,
		CampusIDs: campusIDs,
		Roles:     roleNames,
	}, nil
}

// PrimaryCampusID: baris is_primary=true, fallback kolom campus_id user.
func PrimaryCampusID(db *gorm.DB, userID int) (int, error) {
	var campusID int
	err := db.Table("smps_user_campuses").
		Where("user_id = ? AND is_primary = ?", userID, true).
		Limit(1).
		Pluck("campus_id", &campusID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	if campusID != 0 {
		return campusID, nil
	}

	var row struct {
		CampusID *int
	}
	if err := db.Table("smps_users").
		Select("campus_id").
		Where("id = ?", userID).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if row.CampusID == nil {
		return 0, nil
	}
	return *row.CampusID, nil
}
