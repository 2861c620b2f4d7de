package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// School is the tenant record in the public schema. SchemaName points at the
// Postgres schema that holds the school's classes, students and payments.
type School struct {
	Id           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null;unique"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Country      string    `json:"country"`
	Zip          string    `json:"zip"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Board        string    `json:"board"`
	AcademicYear string    `json:"academic_year" gorm:"not null"`
	UserId       string    `json:"-"`
	User         User      `json:"user" gorm:"foreignKey:UserId;references:Id"`
	SchemaName   string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (school *School) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	school.Id = uuid.NewString()
	return
}
