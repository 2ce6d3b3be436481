package dto

import (
	"time"

	userModel "mealku_backend/internals/features/users/users/model"
)

/* =========================
   Requests
============================*/

type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=255"`
	Email    string  `json:"email" validate:"required,email"`
	CampusID int     `json:"campus_id" validate:"required,gt=0"`
	Address  *string `json:"address" validate:"omitempty,max=500"`
	Role     string  `json:"role" validate:"omitempty,oneof=STUDENT ADMIN SUPER_ADMIN KITCHEN_STAFF INCHARGE"`
}

type UpdateUserRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=255"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	Status  *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

type SelfRegisterRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=255"`
	Email    string  `json:"email" validate:"required,email"`
	CampusID int     `json:"campus_id" validate:"required,gt=0"`
	Address  *string `json:"address" validate:"omitempty,max=500"`
}

type AssignRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,oneof=STUDENT ADMIN SUPER_ADMIN KITCHEN_STAFF INCHARGE"`
}

type SetCampusRequest struct {
	CampusID int `json:"campus_id" validate:"required,gt=0"`
}

/* =========================
   Responses
============================*/

type UserResponse struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   *string   `json:"address,omitempty"`
	CampusID  *int      `json:"campus_id,omitempty"`
	Status    string    `json:"status"`
	Roles     []string  `json:"roles,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func ToUserResponse(u *userModel.UserModel, roles []string) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Address:   u.Address,
		CampusID:  u.CampusID,
		Status:    u.Status,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
	}
}

type UserListResponse struct {
	Users        []UserResponse `json:"users"`
	AdminCount   int64          `json:"admin_count"`
	StudentCount int64          `json:"student_count"`
}
