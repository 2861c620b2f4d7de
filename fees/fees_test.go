package fees

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestLineNetPayable(t *testing.T) {
	tests := []struct {
		name string
		line Line
		want float64
	}{
		{"plain amount", Line{Amount: 1000}, 1000},
		{"discount subtracted", Line{Amount: 1000, Discount: 100}, 900},
		{"discount above amount goes negative", Line{Amount: 100, Discount: 150}, -50},
		{"zero line", Line{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.line.NetPayable(); got != tt.want {
				t.Errorf("NetPayable() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestLineDueBy(t *testing.T) {
	ref := time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)
	sameDayLater := time.Date(2026, time.March, 15, 23, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		line Line
		want bool
	}{
		{"no schedule is always due", Line{ScheduledOn: nil}, true},
		{"past date is due", Line{ScheduledOn: date(2026, time.January, 1)}, true},
		{"same calendar day is due regardless of clock", Line{ScheduledOn: &sameDayLater}, true},
		{"next day is not due", Line{ScheduledOn: date(2026, time.March, 16)}, false},
		{"far future is not due", Line{ScheduledOn: date(2027, time.June, 1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.line.DueBy(ref); got != tt.want {
				t.Errorf("DueBy(%v) = %v; want %v", ref, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	ref := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		lines []Line
		want  Totals
	}{
		{
			"no lines",
			nil,
			Totals{Assigned: 0, Due: 0},
		},
		{
			"future line counts as assigned only",
			[]Line{
				{Name: "Tuition", Amount: 1000, Discount: 100},
				{Name: "Exam", Amount: 500, ScheduledOn: date(2026, time.June, 1)},
			},
			Totals{Assigned: 1400, Due: 900},
		},
		{
			"all lines due",
			[]Line{
				{Name: "Tuition", Amount: 1000, Discount: 100},
				{Name: "Transport", Amount: 250, ScheduledOn: date(2026, time.January, 10)},
			},
			Totals{Assigned: 1150, Due: 1150},
		},
		{
			"negative net flows into both totals",
			[]Line{
				{Name: "Waived", Amount: 100, Discount: 150},
				{Name: "Lab", Amount: 300},
			},
			Totals{Assigned: 250, Due: 250},
		},
		{
			"totals are rounded to cents",
			[]Line{
				{Name: "A", Amount: 0.1},
				{Name: "B", Amount: 0.2},
			},
			Totals{Assigned: 0.3, Due: 0.3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.lines, ref)
			if got != tt.want {
				t.Errorf("Resolve() = %+v; want %+v", got, tt.want)
			}
		})
	}
}

func TestTotalsFor(t *testing.T) {
	tot := Totals{Assigned: 1400, Due: 900}
	if got := tot.For(ModeAssigned); got != 1400 {
		t.Errorf("For(assigned) = %v; want 1400", got)
	}
	if got := tot.For(ModeDue); got != 900 {
		t.Errorf("For(due) = %v; want 900", got)
	}
}

func TestSumPayments(t *testing.T) {
	tests := []struct {
		name    string
		amounts []float64
		want    float64
	}{
		{"no payments", nil, 0},
		{"single payment", []float64{500}, 500},
		{"multiple payments", []float64{500, 300}, 800},
		{"float drift is rounded away", []float64{0.1, 0.2}, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SumPayments(tt.amounts); got != tt.want {
				t.Errorf("SumPayments(%v) = %v; want %v", tt.amounts, got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeAssigned, false},
		{"assigned", ModeAssigned, false},
		{"due", ModeDue, false},
		{"bogus", "", true},
		{"DUE", "", true},
	}
	for _, tt := range tests {
		t.Run("in="+tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v; wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q; want %q", tt.in, got, tt.want)
			}
		})
	}
}
