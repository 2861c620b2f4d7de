package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeeType is a chargeable item (tuition, exam fee, transport). DefaultAmount
// applies to students that carry no per-student override. ScheduledOn is the
// calendar date the charge becomes due; NULL means due immediately.
type FeeType struct {
	Id            string         `json:"id" gorm:"primaryKey"`
	Name          string         `json:"name" gorm:"not null"`
	Description   string         `json:"description"`
	DefaultAmount float64        `json:"default_amount" gorm:"type:numeric(12,2)"`
	ScheduledOn   *time.Time     `json:"scheduled_on" gorm:"type:date"`
	Active        bool           `json:"active"`
	Classes       []FeeTypeClass `json:"classes" gorm:"foreignKey:FeeTypeID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (feeType *FeeType) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	feeType.Id = uuid.NewString()
	return
}

// ClassIds flattens the link rows for API responses.
func (feeType FeeType) ClassIds() []uint {
	ids := make([]uint, 0, len(feeType.Classes))
	for _, link := range feeType.Classes {
		ids = append(ids, link.ClassID)
	}
	return ids
}

// FeeTypeClass links a fee type to a class it applies to. A fee type with no
// links applies school-wide.
type FeeTypeClass struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	FeeTypeID string `json:"-" gorm:"not null;index:idx_fee_type_classes_type_class,unique,priority:1"`
	ClassID   uint   `json:"class_id" gorm:"not null;index:idx_fee_type_classes_type_class,unique,priority:2"`
	Class     Class  `json:"-" gorm:"foreignKey:ClassID;references:Id;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
}
