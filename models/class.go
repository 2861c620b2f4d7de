package models

// Class is a grade/section a student enrolls into, e.g. "Grade 5" / "B".
// The (name, section) pair is unique per school schema.
type Class struct {
	Id           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"not null;uniqueIndex:idx_classes_name_section,priority:1"`
	Section      string `json:"section" gorm:"uniqueIndex:idx_classes_name_section,priority:2"`
	AcademicYear string `json:"academic_year"`
	Active       bool   `json:"-"`
}

// Label renders the display name used on ledgers and exports.
func (c Class) Label() string {
	if c.Section == "" {
		return c.Name
	}
	return c.Name + " " + c.Section
}
