package dto

type BulkStudentRow struct {
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"required,min=2,max=255"`
	CampusName string `json:"campus_name" validate:"required"`
}

type BulkUploadRequest struct {
	Students []BulkStudentRow `json:"students" validate:"required,min=1,dive"`
}

type EnrolledStudent struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Campus  string `json:"campus"`
	Outcome string `json:"outcome"` // added | already_present
}

type BulkUploadResponse struct {
	Message          string            `json:"message"`
	Added            int               `json:"added"`
	AlreadyPresent   int               `json:"already_present"`
	StudentsEnrolled []EnrolledStudent `json:"students_enrolled"`
}
