package controllers

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schulgeld-backend/database"
	"schulgeld-backend/fees"
	"schulgeld-backend/models"
	"schulgeld-backend/utils"
)

type ledgerRow struct {
	StudentID     string      `json:"student_id"`
	Name          string      `json:"name"`
	Class         string      `json:"class"`
	RollNumber    string      `json:"roll_number"`
	AcademicYear  string      `json:"academic_year"`
	TotalFees     float64     `json:"total_fees"`
	TotalDue      float64     `json:"total_due"`
	TotalPaid     float64     `json:"total_paid"`
	Balance       float64     `json:"balance"`
	Status        fees.Status `json:"status"`
	LastPaymentAt *time.Time  `json:"last_payment_at"`
}

// feeTypeStat is the per-fee-type billing breakdown on the dashboard.
// Payments carry no fee type reference, so collection is not attributed here.
type feeTypeStat struct {
	FeeTypeID string  `json:"fee_type_id"`
	Name      string  `json:"name"`
	Students  int     `json:"students"`
	Assigned  float64 `json:"assigned"`
	Due       float64 `json:"due"`
}

type dashboardOut struct {
	Mode            fees.Mode                      `json:"mode"`
	AsOf            string                         `json:"as_of"`
	Students        int                            `json:"students"`
	TotalAssigned   float64                        `json:"total_assigned"`
	TotalDue        float64                        `json:"total_due"`
	TotalCollected  float64                        `json:"total_collected"`
	Outstanding     float64                        `json:"outstanding"`
	StatusCounts    map[fees.Status]int            `json:"status_counts"`
	CollectedByMode map[models.PaymentMode]float64 `json:"collected_by_mode"`
	FeeTypes        []feeTypeStat                  `json:"fee_types"`
}

func ledgerStudents(c *fiber.Ctx, db *gorm.DB) ([]models.Student, error) {
	q := db.Model(&models.Student{}).
		Preload("Class").
		Preload("FeeTypes.FeeType").
		Preload("Payments").
		Order("name")

	if c.Query("include_inactive") == "" {
		q = q.Where("active = ?", true)
	}
	if v := strings.TrimSpace(c.Query("class_id")); v != "" {
		classID := utils.ParseIntDefault(v, 0)
		if classID <= 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid class_id")
		}
		q = q.Where("class_id = ?", classID)
	}
	if v := strings.TrimSpace(c.Query("academic_year")); v != "" {
		q = q.Where("academic_year = ?", v)
	}

	var students []models.Student
	if err := q.Find(&students).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return students, nil
}

func ledgerRows(students []models.Student, mode fees.Mode, ref time.Time) []ledgerRow {
	rows := make([]ledgerRow, 0, len(students))
	for _, s := range students {
		summary := fees.Summarize(models.FeeLines(s.FeeTypes), models.PaymentAmounts(s.Payments), mode, ref)
		var lastPaid *time.Time
		for _, p := range s.Payments {
			if lastPaid == nil || p.PaidAt.After(*lastPaid) {
				t := p.PaidAt
				lastPaid = &t
			}
		}
		rows = append(rows, ledgerRow{
			StudentID:     s.Id,
			Name:          s.Name,
			Class:         s.Class.Label(),
			RollNumber:    s.RollNumber,
			AcademicYear:  s.AcademicYear,
			TotalFees:     summary.TotalAssigned,
			TotalDue:      summary.TotalDue,
			TotalPaid:     summary.TotalPaid,
			Balance:       summary.Balance,
			Status:        summary.Status,
			LastPaymentAt: lastPaid,
		})
	}
	return rows
}

// feeTypeStats accumulates per-fee-type student counts and billed totals
// across the resolved lines, sorted by fee type name.
func feeTypeStats(students []models.Student, ref time.Time) []feeTypeStat {
	byID := make(map[string]*feeTypeStat)
	for _, s := range students {
		for _, line := range models.FeeLines(s.FeeTypes) {
			st, ok := byID[line.FeeTypeID]
			if !ok {
				st = &feeTypeStat{FeeTypeID: line.FeeTypeID, Name: line.Name}
				byID[line.FeeTypeID] = st
			}
			st.Students++
			net := line.NetPayable()
			st.Assigned += net
			if line.DueBy(ref) {
				st.Due += net
			}
		}
	}

	out := make([]feeTypeStat, 0, len(byID))
	for _, st := range byID {
		st.Assigned = utils.Round2(st.Assigned)
		st.Due = utils.Round2(st.Due)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].FeeTypeID < out[j].FeeTypeID
	})
	return out
}

// GET /api/reports/dashboard
func GetDashboard(c *fiber.Ctx) error {
	mode, ref, err := viewParams(c)
	if err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	students, err := ledgerStudents(c, db)
	if err != nil {
		return err
	}

	out := dashboardOut{
		Mode:            mode,
		AsOf:            ref.Format(utils.DateLayout),
		Students:        len(students),
		StatusCounts:    make(map[fees.Status]int, 4),
		CollectedByMode: make(map[models.PaymentMode]float64),
	}
	for _, s := range students {
		summary := fees.Summarize(models.FeeLines(s.FeeTypes), models.PaymentAmounts(s.Payments), mode, ref)
		out.TotalAssigned += summary.TotalAssigned
		out.TotalDue += summary.TotalDue
		out.TotalCollected += summary.TotalPaid
		if summary.Balance > 0 {
			// Overpaid students do not offset what is still collectible
			out.Outstanding += summary.Balance
		}
		out.StatusCounts[summary.Status]++
		for _, p := range s.Payments {
			out.CollectedByMode[p.Mode] = utils.Round2(out.CollectedByMode[p.Mode] + p.Amount)
		}
	}
	out.TotalAssigned = utils.Round2(out.TotalAssigned)
	out.TotalDue = utils.Round2(out.TotalDue)
	out.TotalCollected = utils.Round2(out.TotalCollected)
	out.Outstanding = utils.Round2(out.Outstanding)
	out.FeeTypes = feeTypeStats(students, ref)

	return c.JSON(out)
}

// GET /api/reports/ledger
func GetLedger(c *fiber.Ctx) error {
	mode, ref, err := viewParams(c)
	if err != nil {
		return err
	}

	var statusFilter fees.Status
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		statusFilter = fees.Status(v)
		switch statusFilter {
		case fees.StatusNoFeesDue, fees.StatusPaid, fees.StatusPartiallyPaid, fees.StatusUnpaid:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "unknown status filter")
		}
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	students, err := ledgerStudents(c, db)
	if err != nil {
		return err
	}

	rows := ledgerRows(students, mode, ref)
	if statusFilter != "" {
		filtered := rows[:0]
		for _, r := range rows {
			if r.Status == statusFilter {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	return c.JSON(fiber.Map{
		"mode":  mode,
		"as_of": ref.Format(utils.DateLayout),
		"rows":  rows,
	})
}

// GET /api/reports/ledger/export
func ExportLedger(c *fiber.Ctx) error {
	mode, ref, err := viewParams(c)
	if err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	students, err := ledgerStudents(c, db)
	if err != nil {
		return err
	}

	blob, err := ledgerCSV(ledgerRows(students, mode, ref))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not build csv")
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+exportFilename(mode, ref)+`"`)
	return c.Send(blob)
}

// ledgerCSV renders the master ledger: a header row, then one row per
// student. Plain comma separation, no BOM; spreadsheet apps handle quoting.
func ledgerCSV(rows []ledgerRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"student_id", "name", "class", "roll_number", "academic_year", "total_fees", "total_due", "total_paid", "balance", "status", "last_payment_at"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		lastPaid := ""
		if r.LastPaymentAt != nil {
			lastPaid = r.LastPaymentAt.Format(utils.DateLayout)
		}
		record := []string{
			r.StudentID,
			r.Name,
			r.Class,
			r.RollNumber,
			r.AcademicYear,
			utils.FormatAmount(r.TotalFees),
			utils.FormatAmount(r.TotalDue),
			utils.FormatAmount(r.TotalPaid),
			utils.FormatAmount(r.Balance),
			string(r.Status),
			lastPaid,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportFilename(mode fees.Mode, ref time.Time) string {
	return "master-ledger_" + string(mode) + "_" + ref.Format(utils.DateLayout) + ".csv"
}
