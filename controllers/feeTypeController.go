package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schulgeld-backend/database"
	"schulgeld-backend/middlewares"
	"schulgeld-backend/models"
	"schulgeld-backend/utils"
)

type FeeTypeCreateDTO struct {
	Name          string  `json:"name" validate:"required,min=1"`
	Description   string  `json:"description" validate:"omitempty"`
	DefaultAmount float64 `json:"default_amount" validate:"gte=0"`
	ScheduledOn   string  `json:"scheduled_on" validate:"omitempty"`
	ClassIds      []uint  `json:"class_ids" validate:"omitempty,dive,gt=0"`
}

type FeeTypeUpdateDTO struct {
	Name          *string  `json:"name" validate:"omitempty,min=1"`
	Description   *string  `json:"description" validate:"omitempty"`
	DefaultAmount *float64 `json:"default_amount" validate:"omitempty,gte=0"`
	ScheduledOn   *string  `json:"scheduled_on" validate:"omitempty"`
	Active        *bool    `json:"active" validate:"omitempty"`
	ClassIds      *[]uint  `json:"class_ids" validate:"omitempty,dive,gt=0"`
}

type feeTypeOut struct {
	models.FeeType
	ClassIds []uint `json:"class_ids"`
}

func feeTypeResponse(ft models.FeeType) feeTypeOut {
	return feeTypeOut{FeeType: ft, ClassIds: ft.ClassIds()}
}

// checkClassesExist returns 422 when any of the ids is unknown.
func checkClassesExist(db *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var count int64
	if err := db.Model(&models.Class{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	if count != int64(len(ids)) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "unknown class id in class_ids")
	}
	return nil
}

// POST /api/fee-type
func CreateFeeType(c *fiber.Ctx) error {
	var in FeeTypeCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	var scheduledOn *time.Time
	if in.ScheduledOn != "" {
		t, err := utils.ParseDate(in.ScheduledOn)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "scheduled_on must be YYYY-MM-DD")
		}
		scheduledOn = &t
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	if err := checkClassesExist(db, in.ClassIds); err != nil {
		return err
	}

	feeType := models.FeeType{
		Name:          in.Name,
		Description:   in.Description,
		DefaultAmount: in.DefaultAmount,
		ScheduledOn:   scheduledOn,
		Active:        true,
	}
	if err := db.Create(&feeType).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create fee type")
	}

	for _, classID := range in.ClassIds {
		link := models.FeeTypeClass{FeeTypeID: feeType.Id, ClassID: classID}
		if err := db.Create(&link).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not link fee type to class")
		}
	}

	if err := db.Preload("Classes").First(&feeType, "id = ?", feeType.Id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload fee type")
	}
	return c.Status(fiber.StatusCreated).JSON(feeTypeResponse(feeType))
}

// GET /api/fee-types
func GetFeeTypes(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	q := db.Model(&models.FeeType{}).Preload("Classes").Order("name")
	if c.Query("include_inactive") == "" {
		q = q.Where("active = ?", true)
	}
	if v := strings.TrimSpace(c.Query("class_id")); v != "" {
		classID := utils.ParseIntDefault(v, 0)
		if classID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid class_id")
		}
		q = q.Where("id IN (?)", db.Model(&models.FeeTypeClass{}).Select("fee_type_id").Where("class_id = ?", classID))
	}

	var feeTypes []models.FeeType
	if err := q.Find(&feeTypes).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	out := make([]feeTypeOut, 0, len(feeTypes))
	for _, ft := range feeTypes {
		out = append(out, feeTypeResponse(ft))
	}
	return c.JSON(out)
}

// PATCH /api/fee-types/:id
// scheduled_on accepts a date, or an empty string to clear the schedule.
// class_ids, when present, replaces the whole link set.
func UpdateFeeType(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing fee type id in path")
	}

	var in FeeTypeUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var existing models.FeeType
	if err := db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "fee type not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.DefaultAmount != nil {
		updates["default_amount"] = *in.DefaultAmount
	}
	if in.Active != nil {
		updates["active"] = *in.Active
	}
	if in.ScheduledOn != nil {
		if *in.ScheduledOn == "" {
			updates["scheduled_on"] = nil
		} else {
			t, err := utils.ParseDate(*in.ScheduledOn)
			if err != nil {
				return fiber.NewError(fiber.StatusUnprocessableEntity, "scheduled_on must be YYYY-MM-DD")
			}
			updates["scheduled_on"] = t
		}
	}

	if len(updates) > 0 {
		if err := db.Model(&models.FeeType{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update fee type")
		}
	}

	if in.ClassIds != nil {
		if err := checkClassesExist(db, *in.ClassIds); err != nil {
			return err
		}
		if err := db.Where("fee_type_id = ?", id).Delete(&models.FeeTypeClass{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not replace class links")
		}
		for _, classID := range *in.ClassIds {
			link := models.FeeTypeClass{FeeTypeID: id, ClassID: classID}
			if err := db.Create(&link).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "could not link fee type to class")
			}
		}
	}

	var out models.FeeType
	if err := db.Preload("Classes").First(&out, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload fee type")
	}
	return c.JSON(feeTypeResponse(out))
}
