package model

import "time"

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

var ValidStatuses = []string{StatusPending, StatusApproved, StatusRejected}

type CampusChangeRequestModel struct {
	ID                int        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            int        `gorm:"not null;index" json:"user_id"`
	CurrentCampusID   int        `gorm:"not null" json:"current_campus_id"`
	RequestedCampusID int        `gorm:"not null" json:"requested_campus_id"`
	Reason            *string    `gorm:"size:500" json:"reason,omitempty"`
	Status            string     `gorm:"size:20;not null;default:PENDING" json:"status"`
	RejectionReason   *string    `gorm:"size:500" json:"rejection_reason,omitempty"`
	ReviewedBy        *int       `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (CampusChangeRequestModel) TableName() string {
	return "smps_campus_change_requests"
}
