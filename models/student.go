package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schulgeld-backend/fees"
)

// Student is the enrolled pupil with their fee assignments and payments.
// TotalFees is a write-time snapshot of the assigned total; reads recompute
// from the assignment rows instead of trusting it.
type Student struct {
	Id            string           `json:"id" gorm:"primaryKey"`
	Name          string           `json:"name" gorm:"not null"`
	RollNumber    string           `json:"roll_number"`
	ClassID       uint             `json:"class_id" gorm:"not null;index"`
	Class         Class            `json:"class" gorm:"foreignKey:ClassID;references:Id;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	AcademicYear  string           `json:"academic_year"`
	GuardianName  string           `json:"guardian_name"`
	GuardianPhone string           `json:"guardian_phone"`
	TotalFees     float64          `json:"total_fees" gorm:"type:numeric(12,2)"`
	Active        bool             `json:"-"`
	FeeTypes      []StudentFeeType `json:"fee_types" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	Payments      []Payment        `json:"-" gorm:"foreignKey:StudentID"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (student *Student) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	student.Id = uuid.NewString()
	return
}

// StudentFeeType assigns one fee type to one student. AssignedAmount NULL
// means "charge the fee type's default"; the override wins when set.
type StudentFeeType struct {
	ID                  uint     `json:"id" gorm:"primaryKey"`
	StudentID           string   `json:"-" gorm:"index"`
	FeeTypeID           string   `json:"fee_type_id" gorm:"not null;index"`
	FeeType             FeeType  `json:"fee_type" gorm:"foreignKey:FeeTypeID;references:Id;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	AssignedAmount      *float64 `json:"assigned_amount" gorm:"type:numeric(12,2)"`
	Discount            float64  `json:"discount" gorm:"type:numeric(12,2)"`
	DiscountDescription string   `json:"discount_description"`
}

// EffectiveAmount resolves the charged amount: the per-student override when
// present, otherwise the fee type default. An unloaded or vanished fee type
// resolves to zero rather than failing the whole ledger.
func (a StudentFeeType) EffectiveAmount() float64 {
	if a.AssignedAmount != nil {
		return *a.AssignedAmount
	}
	return a.FeeType.DefaultAmount
}

// Line converts the assignment into the pure form the fee math works on.
// Callers must have preloaded FeeType for defaults and schedules to apply.
func (a StudentFeeType) Line() fees.Line {
	return fees.Line{
		FeeTypeID:    a.FeeTypeID,
		Name:         a.FeeType.Name,
		Amount:       a.EffectiveAmount(),
		Discount:     a.Discount,
		DiscountNote: a.DiscountDescription,
		ScheduledOn:  a.FeeType.ScheduledOn,
	}
}

// FeeLines maps a student's assignments onto resolver input.
func FeeLines(assignments []StudentFeeType) []fees.Line {
	lines := make([]fees.Line, 0, len(assignments))
	for _, a := range assignments {
		lines = append(lines, a.Line())
	}
	return lines
}
