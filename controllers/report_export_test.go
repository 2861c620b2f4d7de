package controllers

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schulgeld-backend/fees"
	"schulgeld-backend/models"
)

func TestLedgerCSV(t *testing.T) {
	lastPaid := time.Date(2026, time.March, 10, 11, 20, 0, 0, time.UTC)
	rows := []ledgerRow{
		{
			StudentID:     "st-1",
			Name:          `Rao, "Asha"`,
			Class:         "Grade 5 B",
			RollNumber:    "R-14",
			AcademicYear:  "2026-27",
			TotalFees:     1400,
			TotalDue:      900,
			TotalPaid:     900,
			Balance:       500,
			Status:        fees.StatusPartiallyPaid,
			LastPaymentAt: &lastPaid,
		},
		{
			StudentID: "st-2",
			Name:      "Benjamin Okello",
			Class:     "Grade 5 B",
			TotalFees: 0,
			Status:    fees.StatusNoFeesDue,
		},
	}

	blob, err := ledgerCSV(rows)
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	// Plain CSV, no byte order mark
	assert.NotEqual(t, byte(0xEF), blob[0])

	records, err := csv.NewReader(bytes.NewReader(blob)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"student_id", "name", "class", "roll_number", "academic_year",
		"total_fees", "total_due", "total_paid", "balance", "status", "last_payment_at",
	}, records[0])

	assert.Equal(t, []string{
		"st-1", `Rao, "Asha"`, "Grade 5 B", "R-14", "2026-27",
		"1400.00", "900.00", "900.00", "500.00", "partially_paid", "2026-03-10",
	}, records[1])

	assert.Equal(t, "0.00", records[2][5])
	assert.Equal(t, "no_fees_due", records[2][9])
	assert.Equal(t, "", records[2][10])
}

func TestFeeTypeStats(t *testing.T) {
	ref := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	examDate := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	tuition := models.FeeType{Id: "ft-1", Name: "Tuition", DefaultAmount: 1000}
	exam := models.FeeType{Id: "ft-2", Name: "Exam", DefaultAmount: 500, ScheduledOn: &examDate}

	students := []models.Student{
		{FeeTypes: []models.StudentFeeType{
			{FeeTypeID: "ft-1", FeeType: tuition, Discount: 100},
			{FeeTypeID: "ft-2", FeeType: exam},
		}},
		{FeeTypes: []models.StudentFeeType{
			{FeeTypeID: "ft-1", FeeType: tuition},
		}},
	}

	stats := feeTypeStats(students, ref)
	require.Len(t, stats, 2)

	// Sorted by name: Exam first
	assert.Equal(t, "Exam", stats[0].Name)
	assert.Equal(t, 1, stats[0].Students)
	assert.Equal(t, 500.0, stats[0].Assigned)
	assert.Equal(t, 0.0, stats[0].Due)

	assert.Equal(t, "Tuition", stats[1].Name)
	assert.Equal(t, 2, stats[1].Students)
	assert.Equal(t, 1900.0, stats[1].Assigned)
	assert.Equal(t, 1900.0, stats[1].Due)
}

func TestLedgerCSVEmpty(t *testing.T) {
	blob, err := ledgerCSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(blob)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1) // header only
}

func TestExportFilename(t *testing.T) {
	ref := time.Date(2026, time.March, 15, 13, 45, 0, 0, time.UTC)
	assert.Equal(t, "master-ledger_due_2026-03-15.csv", exportFilename(fees.ModeDue, ref))
	assert.Equal(t, "master-ledger_assigned_2026-03-15.csv", exportFilename(fees.ModeAssigned, ref))
}
