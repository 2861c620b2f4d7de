package fees

import (
	"time"

	"schulgeld-backend/utils"
)

// Summary is the full per-student rollup: both totals, what was paid, the
// open balance under the selected mode and the resulting status.
type Summary struct {
	Mode          Mode    `json:"mode"`
	TotalAssigned float64 `json:"total_assigned"`
	TotalDue      float64 `json:"total_due"`
	TotalPaid     float64 `json:"total_paid"`
	Balance       float64 `json:"balance"`
	Status        Status  `json:"status"`
}

// Summarize resolves lines, aggregates payments and classifies the result.
// Balance may go negative on overpayment; the status still reads paid.
func Summarize(lines []Line, payments []float64, mode Mode, ref time.Time) Summary {
	totals := Resolve(lines, ref)
	paid := SumPayments(payments)
	total := totals.For(mode)
	return Summary{
		Mode:          mode,
		TotalAssigned: totals.Assigned,
		TotalDue:      totals.Due,
		TotalPaid:     paid,
		Balance:       utils.Round2(total - paid),
		Status:        Classify(total, paid),
	}
}
