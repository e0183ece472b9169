package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Doctor model
type Doctor struct {
	Base
	UserID         string    `gorm:"column:user_id;size:36;not null;uniqueIndex" json:"userId"`
	HospitalID     string    `gorm:"column:hospital_id;size:36;not null;index" json:"hospitalId"`
	Specialization string    `gorm:"column:specialization;index" json:"specialization"`
	LicenseNumber  string    `gorm:"column:license_number;size:50" json:"licenseNumber"`
	Phone          string    `gorm:"column:phone;size:30" json:"phone"`
	User           *User     `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Hospital       *Hospital `gorm:"foreignKey:HospitalID;references:ID" json:"hospital,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// Staff model
type Staff struct {
	Base
	UserID     string    `gorm:"column:user_id;size:36;not null;uniqueIndex" json:"userId"`
	HospitalID string    `gorm:"column:hospital_id;size:36;not null;index" json:"hospitalId"`
	Position   string    `gorm:"column:position" json:"position"`
	Department string    `gorm:"column:department" json:"department"`
	Phone      string    `gorm:"column:phone;size:30" json:"phone"`
	User       *User     `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Hospital   *Hospital `gorm:"foreignKey:HospitalID;references:ID" json:"hospital,omitempty"`
}

func (Staff) TableName() string {
	return "staff"
}

// AccountFields are the login fields shared by doctor and staff payloads.
type AccountFields struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	HospitalID string `json:"hospitalId"`
	Phone      string `json:"phone"`
}

func (a AccountFields) validate(requirePassword bool) error {
	passwordRules := []validation.Rule{validation.Length(0, 128)}
	if requirePassword {
		passwordRules = append(passwordRules, validation.Required)
	}
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&a.Email, validation.Required, is.EmailFormat),
		validation.Field(&a.HospitalID, validation.Required),
		validation.Field(&a.Password, passwordRules...),
	)
}

// DoctorRequest creates or updates a doctor and the owning user.
type DoctorRequest struct {
	AccountFields
	Specialization string `json:"specialization"`
	LicenseNumber  string `json:"licenseNumber"`
}

func (r DoctorRequest) ValidateCreate() error { return r.validate(true) }
func (r DoctorRequest) Validate() error       { return r.validate(false) }

func (r DoctorRequest) validate(requirePassword bool) error {
	if err := r.AccountFields.validate(requirePassword); err != nil {
		return err
	}
	return validation.Errors{
		"specialization": validation.Validate(r.Specialization, validation.Required),
	}.Filter()
}

// StaffRequest creates or updates a staff member and the owning user.
type StaffRequest struct {
	AccountFields
	Position   string `json:"position"`
	Department string `json:"department"`
}

func (r StaffRequest) ValidateCreate() error { return r.validate(true) }
func (r StaffRequest) Validate() error       { return r.validate(false) }

func (r StaffRequest) validate(requirePassword bool) error {
	if err := r.AccountFields.validate(requirePassword); err != nil {
		return err
	}
	return validation.Errors{
		"position": validation.Validate(r.Position, validation.Required),
	}.Filter()
}
