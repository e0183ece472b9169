package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var (
	genderValues    = []interface{}{"MALE", "FEMALE"}
	bloodTypeValues = []interface{}{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
)

// Patient model
type Patient struct {
	Base
	PatientNumber    string     `gorm:"column:patient_number;size:32;not null;uniqueIndex:idx_hospital_patient_number" json:"patientNumber"`
	HospitalID       string     `gorm:"column:hospital_id;size:36;not null;uniqueIndex:idx_hospital_patient_number" json:"hospitalId"`
	CityID           string     `gorm:"column:city_id;size:36;index" json:"cityId"`
	FirstName        string     `gorm:"column:first_name;not null" json:"firstName"`
	LastName         string     `gorm:"column:last_name;not null;index" json:"lastName"`
	DateOfBirth      *time.Time `gorm:"column:date_of_birth" json:"dateOfBirth"`
	Gender           string     `gorm:"column:gender;size:10" json:"gender"`
	Phone            string     `gorm:"column:phone;size:30" json:"phone"`
	Email            string     `gorm:"column:email;size:255" json:"email"`
	Address          string     `gorm:"column:address" json:"address"`
	NationalID       string     `gorm:"column:national_id;size:50" json:"nationalId"`
	BloodType        string     `gorm:"column:blood_type;size:5" json:"bloodType"`
	Allergies        string     `gorm:"column:allergies;type:text" json:"allergies"`
	MedicalHistory   string     `gorm:"column:medical_history;type:text" json:"medicalHistory"`
	EmergencyContact string     `gorm:"column:emergency_contact" json:"emergencyContact"`
	Hospital         *Hospital  `gorm:"foreignKey:HospitalID;references:ID" json:"hospital,omitempty"`
	City             *City      `gorm:"foreignKey:CityID;references:ID" json:"city,omitempty"`
	Visits           []Visit    `gorm:"foreignKey:PatientID;references:ID" json:"visits,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

func (p Patient) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.HospitalID, validation.Required),
		validation.Field(&p.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Gender, validation.In(genderValues...)),
		validation.Field(&p.BloodType, validation.In(bloodTypeValues...)),
		validation.Field(&p.Email, is.EmailFormat),
	)
}

// FullName joins first and last names.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// PatientNumberPrefix is "P" followed by the last four characters of the hospital id.
func PatientNumberPrefix(hospitalID string) string {
	suffix := hospitalID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return "P" + suffix
}

// FormatPatientNumber renders P<last4ofHospitalId><seq:3 digits>.
func FormatPatientNumber(hospitalID string, seq int) string {
	return fmt.Sprintf("%s%03d", PatientNumberPrefix(hospitalID), seq)
}

// PatientSequence extracts the sequence from a patient number of the given hospital.
func PatientSequence(hospitalID, number string) (int, bool) {
	prefix := PatientNumberPrefix(hospitalID)
	if !strings.HasPrefix(number, prefix) {
		return 0, false
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(number, prefix))
	if err != nil {
		return 0, false
	}
	return seq, true
}
