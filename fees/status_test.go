package fees

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		paid  float64
		want  Status
	}{
		{"nothing owed nothing paid", 0, 0, StatusNoFeesDue},
		{"nothing owed but paid anyway", 0, 50, StatusPaid},
		{"total within epsilon counts as nothing owed", 0.01, 0, StatusNoFeesDue},
		{"just above epsilon is owed", 0.02, 0, StatusUnpaid},
		{"negative total from over-discount", -50, 0, StatusNoFeesDue},
		{"unpaid", 1000, 0, StatusUnpaid},
		{"partially paid", 1400, 900, StatusPartiallyPaid},
		{"exactly paid", 900, 900, StatusPaid},
		{"overpaid", 1000, 1200, StatusPaid},
		{"one cent short stays partial", 1000, 999.99, StatusPartiallyPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.total, tt.paid); got != tt.want {
				t.Errorf("Classify(%v, %v) = %q; want %q", tt.total, tt.paid, got, tt.want)
			}
		})
	}
}

// A student can be settled for everything already due while the yearly total is
// still open; the status has to follow the selected view mode.
func TestClassifyFollowsViewMode(t *testing.T) {
	ref := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	lines := []Line{
		{Name: "Tuition", Amount: 1000, Discount: 100},
		{Name: "Exam", Amount: 500, ScheduledOn: date(2026, time.June, 1)},
	}
	totals := Resolve(lines, ref)
	paid := SumPayments([]float64{400, 500})

	if got := Classify(totals.For(ModeDue), paid); got != StatusPaid {
		t.Errorf("due view = %q; want %q", got, StatusPaid)
	}
	if got := Classify(totals.For(ModeAssigned), paid); got != StatusPartiallyPaid {
		t.Errorf("assigned view = %q; want %q", got, StatusPartiallyPaid)
	}
}
