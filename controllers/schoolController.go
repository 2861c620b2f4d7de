package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schulgeld-backend/database"
	"schulgeld-backend/middlewares"
	"schulgeld-backend/models"
	"schulgeld-backend/utils"
)

type SchoolUpdateDTO struct {
	Name         *string `json:"name" validate:"omitempty,min=2"`
	Address      *string `json:"address" validate:"omitempty"`
	City         *string `json:"city" validate:"omitempty"`
	State        *string `json:"state" validate:"omitempty"`
	Country      *string `json:"country" validate:"omitempty"`
	Zip          *string `json:"zip" validate:"omitempty"`
	Phone        *string `json:"phone" validate:"omitempty"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Board        *string `json:"board" validate:"omitempty"`
	AcademicYear *string `json:"academic_year" validate:"omitempty,min=4"`
}

func currentSchool(c *fiber.Ctx) (*models.School, error) {
	schema, _ := c.Locals("schema").(string)
	if schema == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "auth context missing")
	}

	var school models.School
	err := database.DB.Table("public.schools").Where("schema_name = ?", schema).First(&school).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "school not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return &school, nil
}

// GET /api/school
func GetSchool(c *fiber.Ctx) error {
	school, err := currentSchool(c)
	if err != nil {
		return err
	}
	if err := database.DB.Preload("User").First(school, "id = ?", school.Id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load school")
	}
	return c.JSON(school)
}

// PUT /api/school
// The schema name is derived once at registration and never follows renames.
func UpdateSchool(c *fiber.Ctx) error {
	school, err := currentSchool(c)
	if err != nil {
		return err
	}

	var in SchoolUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) == 0 {
		return c.JSON(school)
	}

	if err := database.DB.Table("public.schools").Where("id = ?", school.Id).Updates(updates).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update school")
	}

	var out models.School
	if err := database.DB.Preload("User").First(&out, "id = ?", school.Id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload school")
	}
	return c.JSON(out)
}
