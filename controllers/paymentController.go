package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schulgeld-backend/database"
	"schulgeld-backend/fees"
	"schulgeld-backend/middlewares"
	"schulgeld-backend/models"
	"schulgeld-backend/utils"
)

type PaymentCreateDTO struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Mode          string  `json:"mode" validate:"required"`
	ReceiptNumber string  `json:"receipt_number" validate:"omitempty,max=64"`
	Note          string  `json:"note" validate:"omitempty"`
	PaidAt        string  `json:"paid_at" validate:"omitempty"`
}

// POST /api/students/:id/payments
// Payments are append-only. A client-supplied receipt number that already
// exists is a conflict; without one the server issues an R-<millis> receipt.
func CreatePayment(c *fiber.Ctx) error {
	studentID := strings.TrimSpace(c.Params("id"))
	if studentID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing student id in path")
	}

	var in PaymentCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	mode := models.PaymentMode(in.Mode)
	if !mode.Valid() {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "unknown payment mode "+in.Mode)
	}

	paidAt := time.Now()
	if in.PaidAt != "" {
		t, err := utils.ParseTimestamp(in.PaidAt)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "paid_at must be RFC3339 or YYYY-MM-DD")
		}
		paidAt = t
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var student models.Student
	if err := db.First(&student, "id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "student not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	receipt := in.ReceiptNumber
	if receipt == "" {
		receipt = models.NewReceiptNumber()
	} else {
		var count int64
		if err := db.Model(&models.Payment{}).Where("receipt_number = ?", receipt).Count(&count).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "db error")
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "receipt_number already used")
		}
	}

	payment := models.Payment{
		StudentID:     studentID,
		Amount:        in.Amount,
		Mode:          mode,
		ReceiptNumber: receipt,
		Note:          in.Note,
		PaidAt:        paidAt,
	}
	if err := db.Create(&payment).Error; err != nil {
		// Unique index backstop for races the precheck cannot see
		return fiber.NewError(fiber.StatusConflict, "could not record payment (receipt in use?)")
	}

	summary, err := paymentLedger(db, studentID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment":     payment,
		"fee_summary": summary,
	})
}

// GET /api/students/:id/payments
func GetPayments(c *fiber.Ctx) error {
	studentID := strings.TrimSpace(c.Params("id"))
	if studentID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing student id in path")
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var student models.Student
	if err := db.Select("id").First(&student, "id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "student not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	var payments []models.Payment
	if err := db.Where("student_id = ?", studentID).Order("paid_at DESC").Find(&payments).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	summary, err := paymentLedger(db, studentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"payments":    payments,
		"fee_summary": summary,
	})
}

// paymentLedger recomputes the student's summary after a ledger change.
func paymentLedger(db *gorm.DB, studentID string) (fees.Summary, error) {
	var student models.Student
	err := db.Preload("FeeTypes.FeeType").Preload("Payments").First(&student, "id = ?", studentID).Error
	if err != nil {
		return fees.Summary{}, fiber.NewError(fiber.StatusInternalServerError, "failed to reload ledger")
	}
	return fees.Summarize(models.FeeLines(student.FeeTypes), models.PaymentAmounts(student.Payments), fees.ModeAssigned, time.Now()), nil
}
