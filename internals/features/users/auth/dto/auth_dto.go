package dto

type LoginRequest struct {
	GoogleIDToken string `json:"google_id_token" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
}

type LoginUser struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	CampusID   int      `json:"campus_id"`
	CampusName string   `json:"campus_name"`
	Status     string   `json:"status"`
	Roles      []string `json:"roles"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	User        LoginUser `json:"user"`
}
