package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	campusModel "mealku_backend/internals/features/campus/campuses/model"
	"mealku_backend/internals/features/campus/change_requests/dto"
	changeModel "mealku_backend/internals/features/campus/change_requests/model"
	userService "mealku_backend/internals/features/users/users/service"
	helper "mealku_backend/internals/helpers"
	helperAuth "mealku_backend/internals/helpers/auth"
)

type ChangeRequestController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewChangeRequestController(db *gorm.DB) *ChangeRequestController {
	return &ChangeRequestController{DB: db, Validate: validator.New()}
}

// Create: POST /api/campus-change-requests — student minta pindah campus.
func (ctrl *ChangeRequestController) Create(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.CreateChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	currentCampus, err := helperAuth.PrimaryCampusID(ctrl.DB, p.ID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to resolve campus")
	}
	if currentCampus == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "No campus assigned to this account")
	}
	if req.RequestedCampusID == currentCampus {
		return helper.JsonError(c, fiber.StatusBadRequest, "Requested campus is the same as your current campus")
	}

	var target campusModel.CampusModel
	if err := ctrl.DB.Where("id = ?", req.RequestedCampusID).Take(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Campus not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch campus")
	}

	row := changeModel.CampusChangeRequestModel{
		UserID:            p.ID,
		CurrentCampusID:   currentCampus,
		RequestedCampusID: req.RequestedCampusID,
		Reason:            req.Reason,
		Status:            changeModel.StatusPending,
	}
	if err := ctrl.DB.Create(&row).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create change request")
	}
	return helper.JsonCreated(c, "Campus change request submitted", row)
}

// List: GET /api/campus-change-requests (?status) — super admin saja.
func (ctrl *ChangeRequestController) List(c *fiber.Ctx) error {
	q := ctrl.DB.Model(&changeModel.CampusChangeRequestModel{}).Order("created_at DESC")

	if status := strings.ToUpper(strings.TrimSpace(c.Query("status"))); status != "" {
		valid := false
		for _, s := range changeModel.ValidStatuses {
			if s == status {
				valid = true
				break
			}
		}
		if !valid {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid status filter: "+status)
		}
		q = q.Where("status = ?", status)
	}

	var rows []changeModel.CampusChangeRequestModel
	if err := q.Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch change requests")
	}
	return helper.JsonOK(c, "Change requests fetched successfully", rows)
}

func (ctrl *ChangeRequestController) takePending(tx *gorm.DB, id int) (*changeModel.CampusChangeRequestModel, error) {
	var row changeModel.CampusChangeRequestModel
	if err := tx.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Change request not found")
		}
		return nil, err
	}
	if row.Status != changeModel.StatusPending {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Change request already "+strings.ToLower(row.Status))
	}
	return &row, nil
}

// Approve: POST /api/campus-change-requests/:id/approve
// Pindahkan primary campus user + tandai APPROVED, semua dalam satu transaksi.
func (ctrl *ChangeRequestController) Approve(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request id")
	}

	var approved *changeModel.CampusChangeRequestModel
	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		row, err := ctrl.takePending(tx, id)
		if err != nil {
			return err
		}
		if err := userService.SetPrimaryCampus(tx, row.UserID, row.RequestedCampusID); err != nil {
			return err
		}
		now := time.Now()
		row.Status = changeModel.StatusApproved
		row.ReviewedBy = &p.ID
		row.ReviewedAt = &now
		if err := tx.Model(row).Updates(map[string]interface{}{
			"status":      row.Status,
			"reviewed_by": p.ID,
			"reviewed_at": now,
		}).Error; err != nil {
			return err
		}
		approved = row
		return nil
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Change request approved", approved)
}

// Reject: POST /api/campus-change-requests/:id/reject
func (ctrl *ChangeRequestController) Reject(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request id")
	}

	var req dto.RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var rejected *changeModel.CampusChangeRequestModel
	err = ctrl.DB.Transaction(func(tx *gorm.DB) error {
		row, err := ctrl.takePending(tx, id)
		if err != nil {
			return err
		}
		now := time.Now()
		updates := map[string]interface{}{
			"status":      changeModel.StatusRejected,
			"reviewed_by": p.ID,
			"reviewed_at": now,
		}
		if req.RejectionReason != nil {
			updates["rejection_reason"] = *req.RejectionReason
		}
		if err := tx.Model(row).Updates(updates).Error; err != nil {
			return err
		}
		row.Status = changeModel.StatusRejected
		row.ReviewedBy = &p.ID
		row.ReviewedAt = &now
		row.RejectionReason = req.RejectionReason
		rejected = row
		return nil
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Change request rejected", rejected)
}
