package models

import (
	"strings"
	"time"
)

// Status labels shown for the active flag
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// StudentFields is everything about a student except identity and
// bookkeeping columns. Create and update both write the full set.
type StudentFields struct {
	FullName       string `json:"fullName" db:"full_name" validate:"required"`
	Email          string `json:"email" db:"email" validate:"required,email"`
	NationalID     string `json:"nationalId" db:"national_id" validate:"required"`
	BirthDate      Date   `json:"birthDate" db:"birth_date" validate:"required,datetime=2006-01-02"`
	Phone          string `json:"phone" db:"phone"`
	Address        string `json:"address" db:"address"`
	City           string `json:"city" db:"city"`
	State          string `json:"state" db:"state"`
	PostalCode     string `json:"postalCode" db:"postal_code"`
	Program        string `json:"program" db:"program"`
	Cohort         string `json:"cohort" db:"cohort"`
	EnrollmentDate Date   `json:"enrollmentDate" db:"enrollment_date" validate:"required,datetime=2006-01-02"`
	Active         bool   `json:"active" db:"active"`
}

// NewStudentFields returns the values of a blank record: every text field
// empty, enrolled today and active.
func NewStudentFields(today time.Time) StudentFields {
	return StudentFields{
		EnrollmentDate: DateOf(today),
		Active:         true,
	}
}

// Normalized trims surrounding whitespace from every text field.
func (f StudentFields) Normalized() StudentFields {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.NationalID = strings.TrimSpace(f.NationalID)
	f.BirthDate = Date(strings.TrimSpace(string(f.BirthDate)))
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	f.Program = strings.TrimSpace(f.Program)
	f.Cohort = strings.TrimSpace(f.Cohort)
	f.EnrollmentDate = Date(strings.TrimSpace(string(f.EnrollmentDate)))
	return f
}

// Student defines the student model based on the 'students' table
type Student struct {
	ID string `json:"id" db:"id"`
	StudentFields
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// StatusLabel derives the display status from the active flag
func (s *Student) StatusLabel() string {
	if s.Active {
		return StatusActive
	}
	return StatusInactive
}
