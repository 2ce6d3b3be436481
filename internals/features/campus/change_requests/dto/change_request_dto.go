package dto

type CreateChangeRequest struct {
	RequestedCampusID int     `json:"requested_campus_id" validate:"required,gt=0"`
	Reason            *string `json:"reason" validate:"omitempty,max=500"`
}

type RejectRequest struct {
	RejectionReason *string `json:"rejection_reason" validate:"omitempty,max=500"`
}
