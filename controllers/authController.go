package controllers

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schulgeld-backend/database"
	"schulgeld-backend/middlewares"
	"schulgeld-backend/models"
	"schulgeld-backend/utils"
)

type RegisterDTO struct {
	Name            string `json:"name" validate:"required,min=1"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`

	SchoolName   string `json:"school_name" validate:"required,min=2"`
	AcademicYear string `json:"academic_year" validate:"required,min=4"`
	Address      string `json:"address" validate:"omitempty"`
	City         string `json:"city" validate:"omitempty"`
	State        string `json:"state" validate:"omitempty"`
	Country      string `json:"country" validate:"omitempty"`
	Zip          string `json:"zip" validate:"omitempty"`
	Phone        string `json:"phone" validate:"omitempty"`
	SchoolEmail  string `json:"school_email" validate:"omitempty,email"`
	Board        string `json:"board" validate:"omitempty"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /api/registration
// Creates the admin account, the school record and the school's own Postgres
// schema with all fee tables, in one pass.
func Register(c *fiber.Ctx) error {
	var in RegisterDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	var mailExist models.User
	err := database.DB.Where("email = ?", in.Email).First(&mailExist).Error
	if err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	schemaName, err := createSchema(in.SchoolName)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "school name cannot be used: "+err.Error())
	}

	var school models.School
	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			Name:       in.Name,
			Email:      in.Email,
			SchemaName: schemaName,
		}
		user.SetPassword(in.Password)
		if err := tx.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not create user")
		}

		school = models.School{
			Name:         in.SchoolName,
			Address:      in.Address,
			City:         in.City,
			State:        in.State,
			Country:      in.Country,
			Zip:          in.Zip,
			Phone:        in.Phone,
			Email:        in.SchoolEmail,
			Board:        in.Board,
			AcademicYear: in.AcademicYear,
			UserId:       user.Id,
			SchemaName:   schemaName,
		}
		if err := tx.Create(&school).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not create school (name taken?)")
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	if err := database.MigrateTenantSchema(schemaName); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not migrate school schema")
	}

	if err := database.DB.Preload("User").First(&school, "id = ?", school.Id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload school")
	}
	return c.Status(fiber.StatusCreated).JSON(school)
}

var schemaNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// createSchema derives a Postgres schema name from the school name and creates
// the schema. The s_ prefix keeps names starting with digits valid.
func createSchema(school string) (string, error) {
	safeName := strings.ToLower(strings.TrimSpace(school))
	safeName = strings.ReplaceAll(safeName, " ", "_")
	safeName = "s_" + safeName
	if len(safeName) > 63 {
		safeName = safeName[:63]
	}
	if !schemaNamePattern.MatchString(safeName) {
		return "", fmt.Errorf("invalid schema name after sanitization: %s", safeName)
	}

	if err := database.DB.Exec(`CREATE SCHEMA IF NOT EXISTS ` + safeName).Error; err != nil {
		return "", err
	}
	return safeName, nil
}

// POST /api/login
func Login(c *fiber.Ctx) error {
	var in LoginDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	var user models.User
	err := database.DB.Table("public.users").Where("email = ?", strings.TrimSpace(in.Email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	if err := user.ComparePassword(in.Password); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := middlewares.GenerateJWT(user.Id, user.SchemaName)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not issue token")
	}

	// Keep the tenant tables current; registration-era databases pick up new
	// columns on their next login.
	if err := database.MigrateTenantSchema(user.SchemaName); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not migrate school schema")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middlewares.CookieName,
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
	})

	return c.JSON(fiber.Map{
		"token":  token,
		"schema": user.SchemaName,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

// POST /api/logout
func Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middlewares.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{
		"message": "success",
	})
}
