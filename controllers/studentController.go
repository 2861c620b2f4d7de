package controllers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schulgeld-backend/database"
	"schulgeld-backend/fees"
	"schulgeld-backend/middlewares"
	"schulgeld-backend/models"
	"schulgeld-backend/utils"
)

type StudentFeeInput struct {
	FeeTypeID           string   `json:"fee_type_id" validate:"required"`
	Amount              *float64 `json:"amount" validate:"omitempty,gte=0"`
	Discount            float64  `json:"discount" validate:"gte=0"`
	DiscountDescription string   `json:"discount_description" validate:"omitempty"`
}

type StudentCreateDTO struct {
	Name          string            `json:"name" validate:"required,min=1"`
	RollNumber    string            `json:"roll_no" validate:"omitempty"`
	ClassID       uint              `json:"class_id" validate:"required,gt=0"`
	AcademicYear  string            `json:"academic_year" validate:"omitempty"`
	GuardianName  string            `json:"guardian_name" validate:"omitempty"`
	GuardianPhone string            `json:"guardian_phone" validate:"omitempty"`
	Fees          []StudentFeeInput `json:"fees" validate:"omitempty,dive"`
}

type StudentUpdateDTO struct {
	Name          *string            `json:"name" validate:"omitempty,min=1"`
	RollNumber    *string            `json:"roll_no" validate:"omitempty"`
	ClassID       *uint              `json:"class_id" validate:"omitempty,gt=0"`
	AcademicYear  *string            `json:"academic_year" validate:"omitempty"`
	GuardianName  *string            `json:"guardian_name" validate:"omitempty"`
	GuardianPhone *string            `json:"guardian_phone" validate:"omitempty"`
	Active        *bool              `json:"active" validate:"omitempty"`
	Fees          *[]StudentFeeInput `json:"fees" validate:"omitempty,dive"`
}

type studentOut struct {
	models.Student
	FeeSummary fees.Summary `json:"fee_summary"`
}

type studentDetailOut struct {
	models.Student
	FeeLines   []feeLineOut     `json:"fee_lines"`
	Payments   []models.Payment `json:"payments"`
	FeeSummary fees.Summary     `json:"fee_summary"`
}

// feeLineOut is one resolved fee line on the student ledger.
type feeLineOut struct {
	FeeTypeID           string     `json:"fee_type_id"`
	Name                string     `json:"name"`
	Amount              float64    `json:"amount"`
	Discount            float64    `json:"discount"`
	DiscountDescription string     `json:"discount_description,omitempty"`
	NetPayable          float64    `json:"net_payable"`
	ScheduledOn         *time.Time `json:"scheduled_on"`
	Due                 bool       `json:"due"`
}

func feeLineViews(lines []fees.Line, ref time.Time) []feeLineOut {
	out := make([]feeLineOut, 0, len(lines))
	for _, l := range lines {
		out = append(out, feeLineOut{
			FeeTypeID:           l.FeeTypeID,
			Name:                l.Name,
			Amount:              l.Amount,
			Discount:            l.Discount,
			DiscountDescription: l.DiscountNote,
			NetPayable:          utils.Round2(l.NetPayable()),
			ScheduledOn:         l.ScheduledOn,
			Due:                 l.DueBy(ref),
		})
	}
	return out
}

// viewParams reads the shared ?mode= and ?as_of= query knobs.
func viewParams(c *fiber.Ctx) (fees.Mode, time.Time, error) {
	mode, err := fees.ParseMode(strings.TrimSpace(c.Query("mode")))
	if err != nil {
		return "", time.Time{}, fiber.NewError(fiber.StatusBadRequest, "mode must be assigned or due")
	}
	ref := time.Now()
	if v := strings.TrimSpace(c.Query("as_of")); v != "" {
		t, err := utils.ParseDate(v)
		if err != nil {
			return "", time.Time{}, fiber.NewError(fiber.StatusBadRequest, "as_of must be YYYY-MM-DD")
		}
		ref = t
	}
	return mode, ref, nil
}

// feeTypesForInputs loads and checks every referenced fee type. Unknown,
// duplicate and inactive fee types are rejected before anything is written.
func feeTypesForInputs(db *gorm.DB, inputs []StudentFeeInput) (map[string]models.FeeType, error) {
	byID := make(map[string]models.FeeType, len(inputs))
	if len(inputs) == 0 {
		return byID, nil
	}

	ids := make([]string, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, f := range inputs {
		id := strings.TrimSpace(f.FeeTypeID)
		if seen[id] {
			return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "duplicate fee_type_id "+id)
		}
		seen[id] = true
		ids = append(ids, id)
	}

	var feeTypes []models.FeeType
	if err := db.Where("id IN ?", ids).Find(&feeTypes).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	for _, ft := range feeTypes {
		byID[ft.Id] = ft
	}
	for _, id := range ids {
		ft, ok := byID[id]
		if !ok {
			return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "unknown fee type "+id)
		}
		if !ft.Active {
			return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "fee type "+ft.Name+" is inactive")
		}
	}
	return byID, nil
}

// buildAssignments turns validated inputs into assignment rows plus the
// assigned total that gets stamped onto the student row. The rows carry no
// FeeType association so creating them never upserts fee_types.
func buildAssignments(inputs []StudentFeeInput, byID map[string]models.FeeType) ([]models.StudentFeeType, float64) {
	rows := make([]models.StudentFeeType, 0, len(inputs))
	lines := make([]fees.Line, 0, len(inputs))
	for _, f := range inputs {
		id := strings.TrimSpace(f.FeeTypeID)
		ft := byID[id]
		override := f.Amount
		if override != nil {
			v := utils.Round2(*override)
			override = &v
		}
		row := models.StudentFeeType{
			FeeTypeID:           id,
			AssignedAmount:      override,
			Discount:            utils.Round2(f.Discount),
			DiscountDescription: strings.TrimSpace(f.DiscountDescription),
		}
		rows = append(rows, row)

		amount := ft.DefaultAmount
		if override != nil {
			amount = *override
		}
		lines = append(lines, fees.Line{
			FeeTypeID:   id,
			Name:        ft.Name,
			Amount:      amount,
			Discount:    row.Discount,
			ScheduledOn: ft.ScheduledOn,
		})
	}
	totals := fees.Resolve(lines, time.Now())
	return rows, totals.Assigned
}

// writeFeeVersion appends the next immutable snapshot of the assignment set.
func writeFeeVersion(db *gorm.DB, studentID, reason string, assignments []models.StudentFeeType, byID map[string]models.FeeType, total float64) error {
	snap := models.FeeSnapshot{TotalFees: total}
	for _, a := range assignments {
		ft := byID[a.FeeTypeID]
		amount := ft.DefaultAmount
		if a.AssignedAmount != nil {
			amount = *a.AssignedAmount
		}
		snap.Lines = append(snap.Lines, models.FeeSnapshotLine{
			FeeTypeID:           a.FeeTypeID,
			Name:                ft.Name,
			AssignedAmount:      a.AssignedAmount,
			EffectiveAmount:     amount,
			Discount:            a.Discount,
			DiscountDescription: a.DiscountDescription,
		})
	}

	blob, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	var current int
	row := db.Model(&models.StudentFeeVersion{}).
		Where("student_id = ?", studentID).
		Select("COALESCE(MAX(version_no), 0)").Row()
	if err := row.Scan(&current); err != nil {
		current = 0
	}

	version := models.StudentFeeVersion{
		StudentID: studentID,
		VersionNo: current + 1,
		Reason:    reason,
		Snapshot:  datatypes.JSON(blob),
	}
	return db.Create(&version).Error
}

func loadStudent(db *gorm.DB, id string) (*models.Student, error) {
	var student models.Student
	err := db.Preload("Class").
		Preload("FeeTypes.FeeType").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at DESC") }).
		First(&student, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "student not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return &student, nil
}

// POST /api/student
func CreateStudent(c *fiber.Ctx) error {
	var in StudentCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var class models.Class
	if err := db.First(&class, "id = ?", in.ClassID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "unknown class_id")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	if !class.Active {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "class is inactive")
	}

	byID, err := feeTypesForInputs(db, in.Fees)
	if err != nil {
		return err
	}
	rows, total := buildAssignments(in.Fees, byID)

	student := models.Student{
		Name:          in.Name,
		RollNumber:    in.RollNumber,
		ClassID:       in.ClassID,
		AcademicYear:  in.AcademicYear,
		GuardianName:  in.GuardianName,
		GuardianPhone: in.GuardianPhone,
		TotalFees:     total,
		Active:        true,
	}
	if err := db.Omit(clause.Associations).Create(&student).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create student")
	}

	for i := range rows {
		rows[i].StudentID = student.Id
	}
	if len(rows) > 0 {
		if err := db.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not assign fees")
		}
	}

	if err := writeFeeVersion(db, student.Id, models.VersionReasonEnrolled, rows, byID, total); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not write fee version")
	}

	out, err := loadStudent(db, student.Id)
	if err != nil {
		return err
	}
	now := time.Now()
	lines := models.FeeLines(out.FeeTypes)
	summary := fees.Summarize(lines, models.PaymentAmounts(out.Payments), fees.ModeAssigned, now)
	return c.Status(fiber.StatusCreated).JSON(studentDetailOut{
		Student:    *out,
		FeeLines:   feeLineViews(lines, now),
		Payments:   out.Payments,
		FeeSummary: summary,
	})
}

// GET /api/students
func GetStudents(c *fiber.Ctx) error {
	mode, ref, err := viewParams(c)
	if err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

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
			return fiber.NewError(fiber.StatusBadRequest, "invalid class_id")
		}
		q = q.Where("class_id = ?", classID)
	}
	if v := strings.TrimSpace(c.Query("academic_year")); v != "" {
		q = q.Where("academic_year = ?", v)
	}
	if v := strings.TrimSpace(c.Query("q")); v != "" {
		like := "%" + v + "%"
		q = q.Where("name ILIKE ? OR roll_number ILIKE ?", like, like)
	}

	limit := utils.ParseIntDefault(c.Query("limit"), 50)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)
	q = q.Limit(limit).Offset(offset)

	var students []models.Student
	if err := q.Find(&students).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	out := make([]studentOut, 0, len(students))
	for _, s := range students {
		summary := fees.Summarize(models.FeeLines(s.FeeTypes), models.PaymentAmounts(s.Payments), mode, ref)
		out = append(out, studentOut{Student: s, FeeSummary: summary})
	}
	return c.JSON(out)
}

// GET /api/student/:id
func GetStudent(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing student id in path")
	}

	mode, ref, err := viewParams(c)
	if err != nil {
		return err
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	student, err := loadStudent(db, id)
	if err != nil {
		return err
	}
	lines := models.FeeLines(student.FeeTypes)
	summary := fees.Summarize(lines, models.PaymentAmounts(student.Payments), mode, ref)
	return c.JSON(studentDetailOut{
		Student:    *student,
		FeeLines:   feeLineViews(lines, ref),
		Payments:   student.Payments,
		FeeSummary: summary,
	})
}

// PUT /api/students/:id
// When fees are present the whole assignment set is replaced and a new fee
// version is written. The surrounding request transaction makes the
// delete-and-insert pair atomic; a failed insert never leaves a student with
// half the old rows gone.
func UpdateStudent(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing student id in path")
	}

	var in StudentUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var existing models.Student
	if err := db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "student not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	updates := utils.UpdatesFromPtrDTO(&in, map[string]string{"roll_no": "roll_number"})
	delete(updates, "fees")

	if in.ClassID != nil {
		var class models.Class
		if err := db.First(&class, "id = ?", *in.ClassID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnprocessableEntity, "unknown class_id")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "db error")
		}
		if !class.Active {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "class is inactive")
		}
	}

	if in.Fees != nil {
		byID, err := feeTypesForInputs(db, *in.Fees)
		if err != nil {
			return err
		}
		rows, total := buildAssignments(*in.Fees, byID)

		if err := db.Where("student_id = ?", id).Delete(&models.StudentFeeType{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not replace fee assignments")
		}
		for i := range rows {
			rows[i].StudentID = id
		}
		if len(rows) > 0 {
			if err := db.Omit(clause.Associations).Create(&rows).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "could not assign fees")
			}
		}
		updates["total_fees"] = total

		if err := writeFeeVersion(db, id, models.VersionReasonFeesUpdated, rows, byID, total); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not write fee version")
		}
	}

	if len(updates) > 0 {
		if err := db.Model(&models.Student{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update student")
		}
	}

	out, err := loadStudent(db, id)
	if err != nil {
		return err
	}
	now := time.Now()
	lines := models.FeeLines(out.FeeTypes)
	summary := fees.Summarize(lines, models.PaymentAmounts(out.Payments), fees.ModeAssigned, now)
	return c.JSON(studentDetailOut{
		Student:    *out,
		FeeLines:   feeLineViews(lines, now),
		Payments:   out.Payments,
		FeeSummary: summary,
	})
}

// GET /api/students/:id/fee-versions
func GetStudentFeeVersions(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing student id in path")
	}

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "tenant db unavailable")
	}

	var student models.Student
	if err := db.Select("id").First(&student, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "student not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	var versions []models.StudentFeeVersion
	if err := db.Where("student_id = ?", id).Order("version_no DESC").Find(&versions).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(versions)
}
