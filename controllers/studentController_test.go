package controllers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schulgeld-backend/fees"
	"schulgeld-backend/middlewares"
	"schulgeld-backend/models"
	"schulgeld-backend/utils"
)

func f64(v float64) *float64 { return &v }

func TestBuildAssignments(t *testing.T) {
	examDate := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	byID := map[string]models.FeeType{
		"ft-1": {Id: "ft-1", Name: "Tuition", DefaultAmount: 1200},
		"ft-2": {Id: "ft-2", Name: "Exam", DefaultAmount: 300, ScheduledOn: &examDate},
	}
	inputs := []StudentFeeInput{
		{FeeTypeID: "ft-1", Discount: 200, DiscountDescription: " sibling concession "},
		{FeeTypeID: " ft-2 ", Amount: f64(500)},
	}

	rows, total := buildAssignments(inputs, byID)
	require.Len(t, rows, 2)

	// Default applies when no override: 1200-200, plus the 500 override.
	// The scheduled date does not matter for the assigned total.
	assert.Equal(t, 1500.0, total)

	assert.Nil(t, rows[0].AssignedAmount)
	assert.Equal(t, 200.0, rows[0].Discount)
	assert.Equal(t, "sibling concession", rows[0].DiscountDescription)

	assert.Equal(t, "ft-2", rows[1].FeeTypeID)
	require.NotNil(t, rows[1].AssignedAmount)
	assert.Equal(t, 500.0, *rows[1].AssignedAmount)

	// Rows must not carry the association; the insert path relies on it.
	assert.Empty(t, rows[0].FeeType.Id)
	assert.Empty(t, rows[1].FeeType.Id)
}

func TestBuildAssignmentsRoundsDiscount(t *testing.T) {
	byID := map[string]models.FeeType{
		"ft-1": {Id: "ft-1", Name: "Tuition", DefaultAmount: 100},
	}
	rows, total := buildAssignments([]StudentFeeInput{
		{FeeTypeID: "ft-1", Discount: 10.333},
	}, byID)

	require.Len(t, rows, 1)
	assert.Equal(t, 10.33, rows[0].Discount)
	assert.Equal(t, 89.67, total)
}

func TestBuildAssignmentsOverDiscount(t *testing.T) {
	byID := map[string]models.FeeType{
		"ft-1": {Id: "ft-1", Name: "Library", DefaultAmount: 100},
	}
	_, total := buildAssignments([]StudentFeeInput{
		{FeeTypeID: "ft-1", Discount: 150},
	}, byID)

	assert.Equal(t, -50.0, total)
}

func TestFeeLineViews(t *testing.T) {
	ref := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	examDate := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	lines := []fees.Line{
		{FeeTypeID: "ft-1", Name: "Tuition", Amount: 1000, Discount: 100, DiscountNote: "sibling concession"},
		{FeeTypeID: "ft-2", Name: "Exam", Amount: 500, ScheduledOn: &examDate},
	}

	views := feeLineViews(lines, ref)
	require.Len(t, views, 2)

	assert.Equal(t, 900.0, views[0].NetPayable)
	assert.Equal(t, "sibling concession", views[0].DiscountDescription)
	assert.True(t, views[0].Due)

	assert.Equal(t, 500.0, views[1].NetPayable)
	assert.False(t, views[1].Due)
	require.NotNil(t, views[1].ScheduledOn)
}

func TestViewParams(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	app.Get("/t", func(c *fiber.Ctx) error {
		mode, ref, err := viewParams(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"mode": mode, "as_of": ref.Format(utils.DateLayout)})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/t?mode=due&as_of=2026-03-15", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"mode":"due"`)
	assert.Contains(t, string(body), `"as_of":"2026-03-15"`)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/t", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"mode":"assigned"`)

	for _, bad := range []string{"/t?mode=bogus", "/t?as_of=15-03-2026"} {
		resp, err = app.Test(httptest.NewRequest(http.MethodGet, bad, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)
	}
}
