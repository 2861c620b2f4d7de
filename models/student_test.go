package models

import (
	"testing"
	"time"

	"schulgeld-backend/fees"
)

func f64(v float64) *float64 { return &v }

func TestEffectiveAmount(t *testing.T) {
	tuition := FeeType{Id: "ft-1", Name: "Tuition", DefaultAmount: 1200}

	tests := []struct {
		name       string
		assignment StudentFeeType
		want       float64
	}{
		{"override wins over default", StudentFeeType{AssignedAmount: f64(900), FeeType: tuition}, 900},
		{"null override falls back to default", StudentFeeType{FeeType: tuition}, 1200},
		{"zero override is a real override", StudentFeeType{AssignedAmount: f64(0), FeeType: tuition}, 0},
		{"unloaded fee type resolves to zero", StudentFeeType{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.assignment.EffectiveAmount(); got != tt.want {
				t.Errorf("EffectiveAmount() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestFeeLinesCarryScheduleAndDiscount(t *testing.T) {
	examDate := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	assignments := []StudentFeeType{
		{
			FeeTypeID: "ft-1",
			FeeType:   FeeType{Id: "ft-1", Name: "Tuition", DefaultAmount: 1000},
			Discount:  100,
		},
		{
			FeeTypeID:      "ft-2",
			FeeType:        FeeType{Id: "ft-2", Name: "Exam", DefaultAmount: 300, ScheduledOn: &examDate},
			AssignedAmount: f64(500),
		},
	}

	lines := FeeLines(assignments)
	if len(lines) != 2 {
		t.Fatalf("got %d lines; want 2", len(lines))
	}
	if lines[0].Name != "Tuition" || lines[0].Amount != 1000 || lines[0].Discount != 100 {
		t.Errorf("tuition line = %+v", lines[0])
	}
	if lines[1].Amount != 500 {
		t.Errorf("exam amount = %v; want the override 500", lines[1].Amount)
	}
	if lines[1].ScheduledOn == nil || !lines[1].ScheduledOn.Equal(examDate) {
		t.Errorf("exam schedule not carried: %v", lines[1].ScheduledOn)
	}

	ref := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	totals := fees.Resolve(lines, ref)
	if totals.Assigned != 1400 || totals.Due != 900 {
		t.Errorf("Resolve = %+v; want assigned 1400 due 900", totals)
	}
}
