package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Order statuses shared by tests, treatments and operations.
const (
	OrderPending    = "PENDING"
	OrderInProgress = "IN_PROGRESS"
	OrderCompleted  = "COMPLETED"
	OrderCancelled  = "CANCELLED"
)

// Disease statuses and severities.
const (
	DiseaseActive    = "ACTIVE"
	DiseaseRecovered = "RECOVERED"
	DiseaseChronic   = "CHRONIC"

	SeverityMild     = "MILD"
	SeverityModerate = "MODERATE"
	SeveritySevere   = "SEVERE"
	SeverityCritical = "CRITICAL"
)

// Prescription statuses.
const (
	PrescriptionActive    = "ACTIVE"
	PrescriptionCompleted = "COMPLETED"
	PrescriptionCancelled = "CANCELLED"
)

var (
	orderStatusValues        = []interface{}{OrderPending, OrderInProgress, OrderCompleted, OrderCancelled}
	diseaseStatusValues      = []interface{}{DiseaseActive, DiseaseRecovered, DiseaseChronic}
	severityValues           = []interface{}{SeverityMild, SeverityModerate, SeveritySevere, SeverityCritical}
	prescriptionStatusValues = []interface{}{PrescriptionActive, PrescriptionCompleted, PrescriptionCancelled}
)

// Test is a patient-scoped lab or imaging order.
type Test struct {
	Base
	PatientID   string     `gorm:"column:patient_id;size:36;not null;index" json:"patientId"`
	DoctorID    string     `gorm:"column:doctor_id;size:36;not null;index" json:"doctorId"`
	HospitalID  string     `gorm:"column:hospital_id;size:36;not null;index" json:"hospitalId"`
	VisitID     *string    `gorm:"column:visit_id;size:36;index" json:"visitId"`
	Name        string     `gorm:"column:name;not null" json:"name"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	ScheduledAt *time.Time `gorm:"column:scheduled_at" json:"scheduledAt"`
	Status      string     `gorm:"column:status;size:20;default:PENDING" json:"status"`
	Results     string     `gorm:"column:results;type:text" json:"results"`
	Notes       string     `gorm:"column:notes;type:text" json:"notes"`
	Patient     *Patient   `gorm:"foreignKey:PatientID;references:ID" json:"patient,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}

func (t Test) Validate() error {
	return validateOrder(t.PatientID, t.DoctorID, t.HospitalID, t.Name, t.Status)
}

// Treatment model
type Treatment struct {
	Base
	PatientID   string     `gorm:"column:patient_id;size:36;not null;index" json:"patientId"`
	DoctorID    string     `gorm:"column:doctor_id;size:36;not null;index" json:"doctorId"`
	HospitalID  string     `gorm:"column:hospital_id;size:36;not null;index" json:"hospitalId"`
	VisitID     *string    `gorm:"column:visit_id;size:36;index" json:"visitId"`
	Name        string     `gorm:"column:name;not null" json:"name"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	ScheduledAt *time.Time `gorm:"column:scheduled_at" json:"scheduledAt"`
	Status      string     `gorm:"column:status;size:20;default:PENDING" json:"status"`
	Notes       string     `gorm:"column:notes;type:text" json:"notes"`
	Patient     *Patient   `gorm:"foreignKey:PatientID;references:ID" json:"patient,omitempty"`
}

func (Treatment) TableName() string {
	return "treatments"
}

func (t Treatment) Validate() error {
	return validateOrder(t.PatientID, t.DoctorID, t.HospitalID, t.Name, t.Status)
}

// Operation model
type Operation struct {
	Base
	PatientID   string     `gorm:"column:patient_id;size:36;not null;index" json:"patientId"`
	DoctorID    string     `gorm:"column:doctor_id;size:36;not null;index" json:"doctorId"`
	HospitalID  string     `gorm:"column:hospital_id;size:36;not null;index" json:"hospitalId"`
	VisitID     *string    `gorm:"column:visit_id;size:36;index" json:"visitId"`
	Name        string     `gorm:"column:name;not null" json:"name"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	ScheduledAt *time.Time `gorm:"column:scheduled_at" json:"scheduledAt"`
	Status      string     `gorm:"column:status;size:20;default:PENDING" json:"status"`
	Notes       string     `gorm:"column:notes;type:text" json:"notes"`
	Patient     *Patient   `gorm:"foreignKey:PatientID;references:ID" json:"patient,omitempty"`
}

func (Operation) TableName() string {
	return "operations"
}

func (o Operation) Validate() error {
	return validateOrder(o.PatientID, o.DoctorID, o.HospitalID, o.Name, o.Status)
}

// Disease is a diagnosis recorded against a patient.
type Disease struct {
	Base
	PatientID   string    `gorm:"column:patient_id;size:36;not null;index" json:"patientId"`
	VisitID     *string   `gorm:"column:visit_id;size:36;index" json:"visitId"`
	DoctorID    *string   `gorm:"column:doctor_id;size:36;index" json:"doctorId"`
	HospitalID  *string   `gorm:"column:hospital_id;size:36;index" json:"hospitalId"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Severity    string    `gorm:"column:severity;size:20" json:"severity"`
	Status      string    `gorm:"column:status;size:20;default:ACTIVE" json:"status"`
	DiagnosedAt time.Time `gorm:"column:diagnosed_at" json:"diagnosedAt"`
	Notes       string    `gorm:"column:notes;type:text" json:"notes"`
	Patient     *Patient  `gorm:"foreignKey:PatientID;references:ID" json:"patient,omitempty"`
}

func (Disease) TableName() string {
	return "diseases"
}

func (d Disease) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.PatientID, validation.Required),
		validation.Field(&d.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&d.Severity, validation.In(severityValues...)),
		validation.Field(&d.Status, validation.In(diseaseStatusValues...)),
	)
}

// Prescription model
type Prescription struct {
	Base
	PatientID    string     `gorm:"column:patient_id;size:36;not null;index" json:"patientId"`
	DoctorID     string     `gorm:"column:doctor_id;size:36;not null;index" json:"doctorId"`
	HospitalID   string     `gorm:"column:hospital_id;size:36;not null;index" json:"hospitalId"`
	VisitID      *string    `gorm:"column:visit_id;size:36;index" json:"visitId"`
	Medication   string     `gorm:"column:medication;not null" json:"medication"`
	Dosage       string     `gorm:"column:dosage" json:"dosage"`
	Frequency    string     `gorm:"column:frequency" json:"frequency"`
	Duration     string     `gorm:"column:duration" json:"duration"`
	Instructions string     `gorm:"column:instructions;type:text" json:"instructions"`
	StartDate    *time.Time `gorm:"column:start_date" json:"startDate"`
	EndDate      *time.Time `gorm:"column:end_date" json:"endDate"`
	Status       string     `gorm:"column:status;size:20;default:ACTIVE" json:"status"`
	Patient      *Patient   `gorm:"foreignKey:PatientID;references:ID" json:"patient,omitempty"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}

func (p Prescription) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.PatientID, validation.Required),
		validation.Field(&p.DoctorID, validation.Required),
		validation.Field(&p.HospitalID, validation.Required),
		validation.Field(&p.Medication, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Status, validation.In(prescriptionStatusValues...)),
	)
}

func validateOrder(patientID, doctorID, hospitalID, name, status string) error {
	return validation.Errors{
		"patientId":  validation.Validate(patientID, validation.Required),
		"doctorId":   validation.Validate(doctorID, validation.Required),
		"hospitalId": validation.Validate(hospitalID, validation.Required),
		"name":       validation.Validate(name, validation.Required, validation.Length(1, 200)),
		"status":     validation.Validate(status, validation.In(orderStatusValues...)),
	}.Filter()
}
