package models

import (
	"time"

	"gorm.io/datatypes"
)

// Reasons recorded on fee structure snapshots.
const (
	VersionReasonEnrolled    = "enrolled"
	VersionReasonFeesUpdated = "fees_updated"
)

// StudentFeeVersion is an immutable snapshot of a student's fee structure,
// written whenever the assignments change. The live rows answer "what is";
// these answer "what was agreed back then".
type StudentFeeVersion struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	StudentID string         `json:"student_id" gorm:"index:idx_student_fee_versions_student_version,unique,priority:1"`
	VersionNo int            `json:"version_no" gorm:"not null;index:idx_student_fee_versions_student_version,unique,priority:2"`
	Reason    string         `json:"reason" gorm:"type:VARCHAR(40)"`
	Snapshot  datatypes.JSON `json:"snapshot" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"created_at"`
}

// FeeSnapshot is what gets marshalled into the jsonb column.
type FeeSnapshot struct {
	TotalFees float64           `json:"total_fees"`
	Lines     []FeeSnapshotLine `json:"lines"`
}

type FeeSnapshotLine struct {
	FeeTypeID           string   `json:"fee_type_id"`
	Name                string   `json:"name"`
	AssignedAmount      *float64 `json:"assigned_amount"`
	EffectiveAmount     float64  `json:"effective_amount"`
	Discount            float64  `json:"discount"`
	DiscountDescription string   `json:"discount_description,omitempty"`
}
