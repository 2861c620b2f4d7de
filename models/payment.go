package models

import (
	"fmt"
	"time"
)

// PaymentMode is how the money arrived. Kept as a typed string so reports can
// group on it without joins.
type PaymentMode string

const (
	ModeCash         PaymentMode = "cash"
	ModeUPI          PaymentMode = "upi"
	ModeBankTransfer PaymentMode = "bank_transfer"
	ModeCheque       PaymentMode = "cheque"
	ModeDD           PaymentMode = "dd"
	ModeOnlinePortal PaymentMode = "online_portal"
	ModeOther        PaymentMode = "other"
)

var PaymentModes = []PaymentMode{
	ModeCash, ModeUPI, ModeBankTransfer, ModeCheque, ModeDD, ModeOnlinePortal, ModeOther,
}

func (m PaymentMode) Valid() bool {
	for _, known := range PaymentModes {
		if m == known {
			return true
		}
	}
	return false
}

// Payment is an immutable cash-in record. Corrections are new rows, never
// updates. Receipts stay unique per school schema.
type Payment struct {
	ID            uint        `json:"id" gorm:"primaryKey"`
	StudentID     string      `json:"student_id" gorm:"index:idx_payments_student_paid_at,priority:1"`
	Amount        float64     `json:"amount" gorm:"type:numeric(12,2)"`
	Mode          PaymentMode `json:"mode" gorm:"type:VARCHAR(20)"`
	ReceiptNumber string      `json:"receipt_number" gorm:"uniqueIndex"`
	Note          string      `json:"note"`
	PaidAt        time.Time   `json:"paid_at" gorm:"index:idx_payments_student_paid_at,priority:2"`
	CreatedAt     time.Time   `json:"created_at"`
}

// NewReceiptNumber generates the fallback receipt id used when the office
// does not hand one in.
func NewReceiptNumber() string {
	return fmt.Sprintf("R-%d", time.Now().UnixMilli())
}

// PaymentAmounts strips rows down to the values the aggregator sums.
func PaymentAmounts(payments []Payment) []float64 {
	amounts := make([]float64, 0, len(payments))
	for _, p := range payments {
		amounts = append(amounts, p.Amount)
	}
	return amounts
}
