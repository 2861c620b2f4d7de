package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schulgeld-backend/database"
	"schulgeld-backend/middlewares"
	"schulgeld-backend/models"
)

type ClassCreateDTO struct {
	Name         string `json:"name" validate:"required,min=1"`
	Section      string `json:"section" validate:"omitempty"`
	AcademicYear string `json:"academic_year" validate:"omitempty"`
}

type ClassUpdateDTO struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Section      *string `json:"section" validate:"omitempty"`
	AcademicYear *string `json:"academic_year" validate:"omitempty"`
	Active       *bool   `json:"active" validate:"omitempty"`
}

// POST /api/class
func CreateClass(c *fiber.Ctx) error {
	var in ClassCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	class := models.Class{
		Name:         strings.TrimSpace(in.Name),
		Section:      strings.TrimSpace(in.Section),
		AcademicYear: strings.TrimSpace(in.AcademicYear),
		Active:       true,
	}

	if err := db.Create(&class).Error; err != nil {
		return fiber.NewError(fiber.StatusConflict, "could not create class (name/section taken?)")
	}
	return c.Status(fiber.StatusCreated).JSON(class)
}

// GET /api/classes
func GetClasses(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	q := db.Model(&models.Class{}).Order("name, section")
	if c.Query("include_inactive") == "" {
		q = q.Where("active = ?", true)
	}

	var classes []models.Class
	if err := q.Find(&classes).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(classes)
}

// PUT /api/classes/:id
func UpdateClass(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid class id")
	}

	var in ClassUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var existing models.Class
	if err := db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "class not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Section != nil {
		updates["section"] = strings.TrimSpace(*in.Section)
	}
	if in.AcademicYear != nil {
		updates["academic_year"] = strings.TrimSpace(*in.AcademicYear)
	}
	if in.Active != nil {
		updates["active"] = *in.Active
	}
	if len(updates) == 0 {
		return c.JSON(existing)
	}

	if err := db.Model(&models.Class{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fiber.NewError(fiber.StatusConflict, "could not update class (name/section taken?)")
	}

	var out models.Class
	if err := db.First(&out, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload class")
	}
	return c.JSON(out)
}
