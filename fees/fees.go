// Package fees holds the arithmetic the fee screens are built on: per-line
// net payable, assigned vs currently-due totals, payment aggregation and the
// ledger status derived from them. Everything here is pure; callers fetch the
// rows and recompute on every read instead of trusting any stored figure.
package fees

import (
	"fmt"
	"time"

	"schulgeld-backend/utils"
)

// Line is one fee assignment flattened to the shape the resolver works on.
// Amount is already resolved (override, else the fee type default, else 0);
// a nil ScheduledOn means the line is always due.
type Line struct {
	FeeTypeID    string
	Name         string
	Amount       float64
	Discount     float64
	DiscountNote string
	ScheduledOn  *time.Time
}

// NetPayable is the line's contribution to the totals. Discounts are not
// clamped: a discount larger than the amount yields a negative contribution.
func (l Line) NetPayable() float64 {
	return l.Amount - l.Discount
}

// DueBy reports whether the line counts toward the due total at ref.
// The comparison is by calendar date, not time of day.
func (l Line) DueBy(ref time.Time) bool {
	if l.ScheduledOn == nil {
		return true
	}
	return !dateOf(*l.ScheduledOn).After(dateOf(ref))
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Totals are the two rollup figures a student's ledger is judged against.
type Totals struct {
	Assigned float64 `json:"total_assigned"`
	Due      float64 `json:"total_due"`
}

// For selects the total matching the caller's view mode.
func (t Totals) For(m Mode) float64 {
	if m == ModeDue {
		return t.Due
	}
	return t.Assigned
}

// Resolve sums net payables across the given lines. Due keeps only lines
// whose scheduled date is absent or has arrived by ref.
func Resolve(lines []Line, ref time.Time) Totals {
	var t Totals
	for _, l := range lines {
		net := l.NetPayable()
		t.Assigned += net
		if l.DueBy(ref) {
			t.Due += net
		}
	}
	t.Assigned = utils.Round2(t.Assigned)
	t.Due = utils.Round2(t.Due)
	return t
}

// SumPayments totals recorded payment amounts; an empty ledger sums to zero.
func SumPayments(amounts []float64) float64 {
	var total float64
	for _, a := range amounts {
		total += a
	}
	return utils.Round2(total)
}

// Mode selects which total a status is computed against.
type Mode string

const (
	ModeAssigned Mode = "assigned" // every line, regardless of timing
	ModeDue      Mode = "due"      // only lines whose scheduled date arrived
)

// ParseMode maps a query value to a Mode; the empty string means assigned.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModeAssigned):
		return ModeAssigned, nil
	case string(ModeDue):
		return ModeDue, nil
	}
	return "", fmt.Errorf("unknown view mode %q", s)
}
