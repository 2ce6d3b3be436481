package constants

import "fmt"

// Nama role sesuai tabel roles (selalu uppercase di DB)
const (
	RoleStudent      = "STUDENT"
	RoleAdmin        = "ADMIN"
	RoleSuperAdmin   = "SUPER_ADMIN"
	RoleKitchenStaff = "KITCHEN_STAFF"
	RoleIncharge     = "INCHARGE"
)

// Template pesan error role
const (
	ErrOnlyStudentsCanAccess = "❌ Hanya student yang boleh mengakses fitur %s."
	ErrOnlyAdminsCanAccess   = "❌ Hanya admin atau super admin yang boleh mengakses fitur %s."
	ErrOnlyKitchenCanAccess  = "❌ Hanya kitchen staff, incharge, atau admin yang boleh mengakses fitur %s."
	ErrOnlySuperCanAccess    = "❌ Hanya super admin yang boleh mengakses fitur %s."
)

func RoleErrorStudent(feature string) string {
	return fmt.Sprintf(ErrOnlyStudentsCanAccess, feature)
}

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorKitchen(feature string) string {
	return fmt.Sprintf(ErrOnlyKitchenCanAccess, feature)
}

func RoleErrorSuper(feature string) string {
	return fmt.Sprintf(ErrOnlySuperCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleStudent,
		RoleAdmin,
		RoleSuperAdmin,
		RoleKitchenStaff,
		RoleIncharge,
	}

	StudentOnly = []string{
		RoleStudent,
	}

	AdminAndAbove = []string{
		RoleAdmin,
		RoleSuperAdmin,
	}

	KitchenAndAbove = []string{
		RoleKitchenStaff,
		RoleIncharge,
		RoleAdmin,
		RoleSuperAdmin,
	}

	SuperAdminOnly = []string{
		RoleSuperAdmin,
	}

	// Role yang boleh diberikan oleh admin biasa (non super admin)
	AdminGrantableRoles = []string{
		RoleStudent,
		RoleKitchenStaff,
		RoleIncharge,
	}
)
