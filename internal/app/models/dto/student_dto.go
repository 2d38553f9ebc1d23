package dto

import (
	"github.com/yigit/studentdesk/internal/app/models"
)

// StudentRequest is the JSON body of create and update calls. Active is a
// pointer so an omitted flag can default to true on create.
type StudentRequest struct {
	FullName       string `json:"fullName" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	NationalID     string `json:"nationalId" binding:"required"`
	BirthDate      string `json:"birthDate" binding:"required,datetime=2006-01-02"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	State          string `json:"state"`
	PostalCode     string `json:"postalCode"`
	Program        string `json:"program"`
	Cohort         string `json:"cohort"`
	EnrollmentDate string `json:"enrollmentDate" binding:"required,datetime=2006-01-02"`
	Active         *bool  `json:"active"`
}

// ToFields converts the request into the model's field set
func (r StudentRequest) ToFields() models.StudentFields {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return models.StudentFields{
		FullName:       r.FullName,
		Email:          r.Email,
		NationalID:     r.NationalID,
		BirthDate:      models.Date(r.BirthDate),
		Phone:          r.Phone,
		Address:        r.Address,
		City:           r.City,
		State:          r.State,
		PostalCode:     r.PostalCode,
		Program:        r.Program,
		Cohort:         r.Cohort,
		EnrollmentDate: models.Date(r.EnrollmentDate),
		Active:         active,
	}
}

// StudentForm is the HTML form binding. Every field is optional at the
// binding layer; required-ness is checked by the form so the page can be
// re-rendered with the entered values.
type StudentForm struct {
	FullName       string `form:"fullName"`
	Email          string `form:"email"`
	NationalID     string `form:"nationalId"`
	BirthDate      string `form:"birthDate"`
	Phone          string `form:"phone"`
	Address        string `form:"address"`
	City           string `form:"city"`
	State          string `form:"state"`
	PostalCode     string `form:"postalCode"`
	Program        string `form:"program"`
	Cohort         string `form:"cohort"`
	EnrollmentDate string `form:"enrollmentDate"`
	Active         bool   `form:"active"`
}

// ToFields converts the form into the model's field set
func (f StudentForm) ToFields() models.StudentFields {
	return models.StudentFields{
		FullName:       f.FullName,
		Email:          f.Email,
		NationalID:     f.NationalID,
		BirthDate:      models.Date(f.BirthDate),
		Phone:          f.Phone,
		Address:        f.Address,
		City:           f.City,
		State:          f.State,
		PostalCode:     f.PostalCode,
		Program:        f.Program,
		Cohort:         f.Cohort,
		EnrollmentDate: models.Date(f.EnrollmentDate),
		Active:         f.Active,
	}
}

// StudentListResponse is the body of GET /students
type StudentListResponse struct {
	Students []*models.Student `json:"students"`
	Total    int               `json:"total"`
}
