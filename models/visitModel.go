package models

import (
	"encoding/json"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/datatypes"
)

// VisitStatus is the lifecycle state of a visit.
type VisitStatus string

const (
	VisitDraft      VisitStatus = "DRAFT"
	VisitScheduled  VisitStatus = "SCHEDULED"
	VisitInProgress VisitStatus = "IN_PROGRESS"
	VisitCompleted  VisitStatus = "COMPLETED"
	VisitCancelled  VisitStatus = "CANCELLED"
)

// VisitStatuses lists every valid status.
var VisitStatuses = []VisitStatus{VisitDraft, VisitScheduled, VisitInProgress, VisitCompleted, VisitCancelled}

// Valid reports whether s is a known status.
func (s VisitStatus) Valid() bool {
	for _, known := range VisitStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Visit is a patient encounter, built step by step as a draft and completed at the end.
type Visit struct {
	Base
	PatientID     string         `gorm:"column:patient_id;size:36;not null;index" json:"patientId"`
	DoctorID      *string        `gorm:"column:doctor_id;size:36;index" json:"doctorId"`
	HospitalID    *string        `gorm:"column:hospital_id;size:36;index" json:"hospitalId"`
	CityID        *string        `gorm:"column:city_id;size:36;index" json:"cityId"`
	ScheduledAt   time.Time      `gorm:"column:scheduled_at;not null;index" json:"scheduledAt"`
	Status        VisitStatus    `gorm:"column:status;size:20;not null;index" json:"status"`
	CurrentStep   int            `gorm:"column:current_step;not null;default:1" json:"currentStep"`
	Notes         string         `gorm:"column:notes;type:text" json:"notes"`
	Diagnosis     string         `gorm:"column:diagnosis;type:text" json:"diagnosis"`
	Symptoms      string         `gorm:"column:symptoms;type:text" json:"symptoms"`
	VitalSigns    string         `gorm:"column:vital_signs;type:text" json:"vitalSigns"`
	Temperature   string         `gorm:"column:temperature;size:20" json:"temperature"`
	BloodPressure string         `gorm:"column:blood_pressure;size:20" json:"bloodPressure"`
	HeartRate     string         `gorm:"column:heart_rate;size:20" json:"heartRate"`
	Weight        string         `gorm:"column:weight;size:20" json:"weight"`
	Height        string         `gorm:"column:height;size:20" json:"height"`
	DraftData     datatypes.JSON `gorm:"column:draft_data" json:"-"`
	Patient       *Patient       `gorm:"foreignKey:PatientID;references:ID" json:"patient,omitempty"`
	Doctor        *Doctor        `gorm:"foreignKey:DoctorID;references:ID" json:"doctor,omitempty"`
	Hospital      *Hospital      `gorm:"foreignKey:HospitalID;references:ID" json:"hospital,omitempty"`
	Tests         []Test         `gorm:"foreignKey:VisitID;references:ID" json:"tests"`
	Diseases      []Disease      `gorm:"foreignKey:VisitID;references:ID" json:"diseases"`
	Treatments    []Treatment    `gorm:"foreignKey:VisitID;references:ID" json:"treatments"`
	Operations    []Operation    `gorm:"foreignKey:VisitID;references:ID" json:"operations"`
	Prescriptions []Prescription `gorm:"foreignKey:VisitID;references:ID" json:"prescriptions"`
}

func (Visit) TableName() string {
	return "visits"
}

// TestInput is a test entered in step 3.
type TestInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ScheduledAt string `json:"scheduledAt,omitempty"`
	Status      string `json:"status,omitempty"`
	Results     string `json:"results,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func (t TestInput) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required),
		validation.Field(&t.Status, validation.In(orderStatusValues...)),
		validation.Field(&t.ScheduledAt, validation.By(dateRule)),
	)
}

// DiseaseInput is a diagnosis entered in step 4.
type DiseaseInput struct {
	Name        string `json:"name"`
	Severity    string `json:"severity,omitempty"`
	Status      string `json:"status,omitempty"`
	DiagnosedAt string `json:"diagnosedAt,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func (d DiseaseInput) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.Severity, validation.In(severityValues...)),
		validation.Field(&d.Status, validation.In(diseaseStatusValues...)),
		validation.Field(&d.DiagnosedAt, validation.By(dateRule)),
	)
}

// ProcedureInput is a treatment or operation entered in step 5.
type ProcedureInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ScheduledAt string `json:"scheduledAt,omitempty"`
	Status      string `json:"status,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

func (p ProcedureInput) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Status, validation.In(orderStatusValues...)),
		validation.Field(&p.ScheduledAt, validation.By(dateRule)),
	)
}

// MedicationInput is a prescription entered in step 5.
type MedicationInput struct {
	Medication   string `json:"medication"`
	Dosage       string `json:"dosage,omitempty"`
	Frequency    string `json:"frequency,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
	Status       string `json:"status,omitempty"`
}

func (m MedicationInput) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Medication, validation.Required),
		validation.Field(&m.Status, validation.In(prescriptionStatusValues...)),
		validation.Field(&m.StartDate, validation.By(dateRule)),
		validation.Field(&m.EndDate, validation.By(dateRule)),
	)
}

// VisitRecords are the sub-record lists collected across steps 3 to 5.
type VisitRecords struct {
	Tests       []TestInput       `json:"tests,omitempty"`
	Diseases    []DiseaseInput    `json:"diseases,omitempty"`
	Treatments  []ProcedureInput  `json:"treatments,omitempty"`
	Operations  []ProcedureInput  `json:"operations,omitempty"`
	Medications []MedicationInput `json:"medications,omitempty"`
}

// Empty reports whether no sub-record was entered.
func (r VisitRecords) Empty() bool {
	return len(r.Tests) == 0 && len(r.Diseases) == 0 && len(r.Treatments) == 0 &&
		len(r.Operations) == 0 && len(r.Medications) == 0
}

// VisitForm is the payload of POST/PUT /api/visits and the resumable draft state.
type VisitForm struct {
	ID            string      `json:"id,omitempty"`
	PatientID     string      `json:"patientId"`
	DoctorID      string      `json:"doctorId,omitempty"`
	HospitalID    string      `json:"hospitalId,omitempty"`
	CityID        string      `json:"cityId,omitempty"`
	ScheduledAt   string      `json:"scheduledAt"`
	Status        VisitStatus `json:"status,omitempty"`
	CurrentStep   int         `json:"currentStep,omitempty"`
	Notes         string      `json:"notes,omitempty"`
	Diagnosis     string      `json:"diagnosis,omitempty"`
	Symptoms      string      `json:"symptoms,omitempty"`
	VitalSigns    string      `json:"vitalSigns,omitempty"`
	Temperature   string      `json:"temperature,omitempty"`
	BloodPressure string      `json:"bloodPressure,omitempty"`
	HeartRate     string      `json:"heartRate,omitempty"`
	Weight        string      `json:"weight,omitempty"`
	Height        string      `json:"height,omitempty"`
	VisitRecords
}

// ValidateDraft only requires the patient; everything else may still be missing.
func (f VisitForm) ValidateDraft() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.PatientID, validation.Required),
		validation.Field(&f.ScheduledAt, validation.By(dateRule)),
	)
}

// ValidateFinal requires the patient, the schedule and well formed sub-records.
func (f VisitForm) ValidateFinal() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.PatientID, validation.Required),
		validation.Field(&f.ScheduledAt, validation.Required, validation.By(dateRule)),
		validation.Field(&f.Tests),
		validation.Field(&f.Diseases),
		validation.Field(&f.Treatments),
		validation.Field(&f.Operations),
		validation.Field(&f.Medications),
	)
}

// ApplyTo copies the scalar form fields onto a visit.
func (f *VisitForm) ApplyTo(v *Visit, scheduledAt time.Time) {
	v.PatientID = f.PatientID
	v.DoctorID = StringPtr(f.DoctorID)
	v.HospitalID = StringPtr(f.HospitalID)
	v.CityID = StringPtr(f.CityID)
	v.ScheduledAt = scheduledAt
	v.CurrentStep = f.CurrentStep
	v.Notes = f.Notes
	v.Diagnosis = f.Diagnosis
	v.Symptoms = f.Symptoms
	v.VitalSigns = f.VitalSigns
	v.Temperature = f.Temperature
	v.BloodPressure = f.BloodPressure
	v.HeartRate = f.HeartRate
	v.Weight = f.Weight
	v.Height = f.Height
}

// FormFromVisit rebuilds the form a client needs to resume editing a visit.
func FormFromVisit(v *Visit) (*VisitForm, error) {
	form := &VisitForm{
		ID:            v.ID,
		PatientID:     v.PatientID,
		DoctorID:      StringValue(v.DoctorID),
		HospitalID:    StringValue(v.HospitalID),
		CityID:        StringValue(v.CityID),
		ScheduledAt:   v.ScheduledAt.UTC().Format(time.RFC3339),
		Status:        v.Status,
		CurrentStep:   v.CurrentStep,
		Notes:         v.Notes,
		Diagnosis:     v.Diagnosis,
		Symptoms:      v.Symptoms,
		VitalSigns:    v.VitalSigns,
		Temperature:   v.Temperature,
		BloodPressure: v.BloodPressure,
		HeartRate:     v.HeartRate,
		Weight:        v.Weight,
		Height:        v.Height,
	}
	if len(v.DraftData) > 0 {
		if err := json.Unmarshal(v.DraftData, &form.VisitRecords); err != nil {
			return nil, err
		}
		return form, nil
	}
	form.VisitRecords = recordsFromVisit(v)
	return form, nil
}

func recordsFromVisit(v *Visit) VisitRecords {
	var r VisitRecords
	for _, t := range v.Tests {
		r.Tests = append(r.Tests, TestInput{Name: t.Name, Description: t.Description, ScheduledAt: formatDate(t.ScheduledAt), Status: t.Status, Results: t.Results, Notes: t.Notes})
	}
	for _, d := range v.Diseases {
		r.Diseases = append(r.Diseases, DiseaseInput{Name: d.Name, Severity: d.Severity, Status: d.Status, DiagnosedAt: formatDate(&d.DiagnosedAt), Notes: d.Notes})
	}
	for _, t := range v.Treatments {
		r.Treatments = append(r.Treatments, ProcedureInput{Name: t.Name, Description: t.Description, ScheduledAt: formatDate(t.ScheduledAt), Status: t.Status, Notes: t.Notes})
	}
	for _, o := range v.Operations {
		r.Operations = append(r.Operations, ProcedureInput{Name: o.Name, Description: o.Description, ScheduledAt: formatDate(o.ScheduledAt), Status: o.Status, Notes: o.Notes})
	}
	for _, p := range v.Prescriptions {
		r.Medications = append(r.Medications, MedicationInput{Medication: p.Medication, Dosage: p.Dosage, Frequency: p.Frequency, Duration: p.Duration, Instructions: p.Instructions, StartDate: formatDate(p.StartDate), EndDate: formatDate(p.EndDate), Status: p.Status})
	}
	return r
}

// VisitCompletedEvent is published after a visit is finalized.
type VisitCompletedEvent struct {
	VisitID       string    `json:"visitId"`
	PatientID     string    `json:"patientId"`
	DoctorID      string    `json:"doctorId,omitempty"`
	HospitalID    string    `json:"hospitalId,omitempty"`
	Tests         int       `json:"tests"`
	Diseases      int       `json:"diseases"`
	Treatments    int       `json:"treatments"`
	Operations    int       `json:"operations"`
	Prescriptions int       `json:"prescriptions"`
	CompletedAt   time.Time `json:"completedAt"`
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02"}

// ParseDate accepts RFC 3339 timestamps and the shorter forms HTML date inputs send.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ParseOptionalDate returns nil for an empty string.
func ParseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func dateRule(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := ParseDate(s); err != nil {
		return validation.NewError("validation_invalid_date", "must be a valid date")
	}
	return nil
}
