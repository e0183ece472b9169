// Package seed generates demo data for Iraqi hospitals.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"HospitalMS/models"
	"HospitalMS/pagination"
	"HospitalMS/repositories"
	"HospitalMS/services"

	"github.com/rs/zerolog"
)

const (
	doctorPassword = "Doctor@12345"
	staffPassword  = "Staff@12345"
)

// Fan-out probabilities of the optional visit records.
const (
	DiseaseRate      = 0.4
	TreatmentRate    = 0.5
	OperationRate    = 0.2
	PrescriptionRate = 0.6
)

// Options sizes the generated data set.
type Options struct {
	HospitalsPerCity    int
	DoctorsPerHospital  int
	StaffPerHospital    int
	PatientsPerHospital int
	VisitsPerPatient    int
	CatalogSize         int
}

func DefaultOptions() Options {
	return Options{
		HospitalsPerCity:    2,
		DoctorsPerHospital:  3,
		StaffPerHospital:    2,
		PatientsPerHospital: 10,
		VisitsPerPatient:    2,
		CatalogSize:         5,
	}
}

// Summary counts what a run created.
type Summary struct {
	Cities        int `json:"cities"`
	Hospitals     int `json:"hospitals"`
	Doctors       int `json:"doctors"`
	Staff         int `json:"staff"`
	Patients      int `json:"patients"`
	CatalogItems  int `json:"catalogItems"`
	Visits        int `json:"visits"`
	Tests         int `json:"tests"`
	Diseases      int `json:"diseases"`
	Treatments    int `json:"treatments"`
	Operations    int `json:"operations"`
	Prescriptions int `json:"prescriptions"`
}

type Seeder struct {
	svc  *services.Services
	rng  *rand.Rand
	opts Options
	now  time.Time
	log  zerolog.Logger
}

// New builds a seeder; the same rng seed and options always produce the same data.
func New(svc *services.Services, rng *rand.Rand, opts Options, log zerolog.Logger) *Seeder {
	return &Seeder{svc: svc, rng: rng, opts: opts, now: time.Now().UTC().Truncate(time.Hour), log: log}
}

// Run walks City, Hospital, {Doctor, Staff, Patient}, Visit and its records.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{}
	for _, name := range Cities {
		city, err := s.city(ctx, name)
		if err != nil {
			return sum, fmt.Errorf("seed city %s: %w", name, err)
		}
		sum.Cities++

		for h := 0; h < s.opts.HospitalsPerCity; h++ {
			if err := s.hospital(ctx, city, h, sum); err != nil {
				return sum, err
			}
		}
		s.log.Info().Str("city", name).Int("hospitals", s.opts.HospitalsPerCity).Msg("city seeded")
	}
	return sum, nil
}

// city creates the city or reuses an existing one with the same name.
func (s *Seeder) city(ctx context.Context, name string) (*models.City, error) {
	city := &models.City{Name: name}
	err := s.svc.Cities.Create(ctx, city)
	if err == nil {
		return city, nil
	}
	if !errors.Is(err, models.ErrConflict) {
		return nil, err
	}

	rows, _, err := s.svc.Cities.List(ctx, repositories.ListQuery{Search: name, Params: pageOf(100)})
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Name == name {
			return &rows[i], nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Seeder) hospital(ctx context.Context, city *models.City, n int, sum *Summary) error {
	hospital := &models.Hospital{
		Name:    fmt.Sprintf("%s - %s", hospitalKinds[(n+sum.Hospitals)%len(hospitalKinds)], city.Name),
		Address: fmt.Sprintf("%s، شارع %d", city.Name, s.rng.Intn(90)+10),
		Phone:   s.phone(),
		CityID:  city.ID,
	}
	if err := s.svc.Hospitals.Create(ctx, hospital); err != nil {
		return fmt.Errorf("seed hospital: %w", err)
	}
	sum.Hospitals++

	if err := s.catalogs(ctx, hospital.ID, sum); err != nil {
		return err
	}

	doctors := make([]*models.Doctor, 0, s.opts.DoctorsPerHospital)
	for d := 0; d < s.opts.DoctorsPerHospital; d++ {
		doctor, err := s.svc.Doctors.Create(ctx, &models.DoctorRequest{
			AccountFields:  s.account(hospital.ID, "dr", d, doctorPassword),
			Specialization: pick(s.rng, specializations),
			LicenseNumber:  fmt.Sprintf("IQ-%06d", s.rng.Intn(1000000)),
		})
		if err != nil {
			return fmt.Errorf("seed doctor: %w", err)
		}
		doctors = append(doctors, doctor)
		sum.Doctors++
	}

	for st := 0; st < s.opts.StaffPerHospital; st++ {
		pos := positions[s.rng.Intn(len(positions))]
		if _, err := s.svc.Staff.Create(ctx, &models.StaffRequest{
			AccountFields: s.account(hospital.ID, "staff", st, staffPassword),
			Position:      pos.position,
			Department:    pos.department,
		}); err != nil {
			return fmt.Errorf("seed staff: %w", err)
		}
		sum.Staff++
	}

	for p := 0; p < s.opts.PatientsPerHospital; p++ {
		patient, err := s.patient(ctx, hospital)
		if err != nil {
			return fmt.Errorf("seed patient: %w", err)
		}
		sum.Patients++

		for v := 0; v < s.opts.VisitsPerPatient && len(doctors) > 0; v++ {
			doctor := doctors[s.rng.Intn(len(doctors))]
			if err := s.visit(ctx, patient, doctor, hospital, sum); err != nil {
				return fmt.Errorf("seed visit: %w", err)
			}
		}
	}
	return nil
}

func (s *Seeder) account(hospitalID, kind string, n int, password string) models.AccountFields {
	return models.AccountFields{
		Name:       s.fullName(),
		Email:      fmt.Sprintf("%s%d.%s@hospital.iq", kind, n+1, hospitalID[:8]),
		Password:   password,
		HospitalID: hospitalID,
		Phone:      s.phone(),
	}
}

func (s *Seeder) patient(ctx context.Context, hospital *models.Hospital) (*models.Patient, error) {
	dob := s.now.AddDate(-(s.rng.Intn(70) + 5), -s.rng.Intn(12), -s.rng.Intn(28))
	patient := &models.Patient{
		HospitalID:  hospital.ID,
		CityID:      hospital.CityID,
		FirstName:   pick(s.rng, firstNames),
		LastName:    pick(s.rng, lastNames),
		DateOfBirth: &dob,
		Gender:      pick(s.rng, []string{"MALE", "FEMALE"}),
		Phone:       s.phone(),
		BloodType:   pick(s.rng, []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}),
		Address:     hospital.Address,
	}
	return patient, s.svc.Patients.Create(ctx, patient)
}

// visit finalizes a completed visit with its clinical records.
func (s *Seeder) visit(ctx context.Context, patient *models.Patient, doctor *models.Doctor, hospital *models.Hospital, sum *Summary) error {
	at := s.now.AddDate(0, 0, -s.rng.Intn(180)).Add(time.Duration(s.rng.Intn(10)+8) * time.Hour)
	date := at.Format(time.RFC3339)

	form := &models.VisitForm{
		PatientID:     patient.ID,
		DoctorID:      doctor.ID,
		HospitalID:    hospital.ID,
		CityID:        hospital.CityID,
		ScheduledAt:   date,
		Status:        models.VisitCompleted,
		CurrentStep:   5,
		Symptoms:      "حمى وصداع",
		Temperature:   fmt.Sprintf("%.1f", 36.5+s.rng.Float64()*2),
		BloodPressure: fmt.Sprintf("%d/%d", 110+s.rng.Intn(40), 70+s.rng.Intn(20)),
		HeartRate:     fmt.Sprintf("%d", 60+s.rng.Intn(40)),
	}

	tests := s.rng.Intn(3) + 1
	for i := 0; i < tests; i++ {
		form.Tests = append(form.Tests, models.TestInput{Name: pick(s.rng, testNames), ScheduledAt: date, Status: models.OrderCompleted, Results: "ضمن الحدود الطبيعية"})
	}
	if s.rng.Float64() < DiseaseRate {
		form.Diseases = append(form.Diseases, models.DiseaseInput{Name: pick(s.rng, diseaseNames), Severity: pick(s.rng, []string{models.SeverityMild, models.SeverityModerate}), Status: models.DiseaseActive, DiagnosedAt: date})
		form.Diagnosis = form.Diseases[0].Name
	}
	if s.rng.Float64() < TreatmentRate {
		form.Treatments = append(form.Treatments, models.ProcedureInput{Name: pick(s.rng, treatmentNames), ScheduledAt: date, Status: models.OrderCompleted})
	}
	if s.rng.Float64() < OperationRate {
		form.Operations = append(form.Operations, models.ProcedureInput{Name: pick(s.rng, operationNames), ScheduledAt: at.AddDate(0, 0, 7).Format(time.RFC3339), Status: models.OrderPending})
	}
	if s.rng.Float64() < PrescriptionRate {
		med := medications[s.rng.Intn(len(medications))]
		form.Medications = append(form.Medications, models.MedicationInput{
			Medication: med.name,
			Dosage:     med.dosage,
			Frequency:  med.frequency,
			Duration:   fmt.Sprintf("%d أيام", s.rng.Intn(10)+3),
			StartDate:  date,
			Status:     models.PrescriptionActive,
		})
	}

	if _, err := s.svc.Visits.Finalize(ctx, form); err != nil {
		return err
	}
	sum.Visits++
	sum.Tests += len(form.Tests)
	sum.Diseases += len(form.Diseases)
	sum.Treatments += len(form.Treatments)
	sum.Operations += len(form.Operations)
	sum.Prescriptions += len(form.Medications)
	return nil
}

func (s *Seeder) catalogs(ctx context.Context, hospitalID string, sum *Summary) error {
	for i := 0; i < s.opts.CatalogSize; i++ {
		category := pick(s.rng, categories)
		if err := s.svc.HospitalTests.Create(ctx, &models.HospitalTest{
			HospitalID: hospitalID, Name: testNames[i%len(testNames)], Category: category,
			Cost: s.cost(5000, 50000), Duration: "30 دقيقة", IsActive: true,
		}); err != nil {
			return fmt.Errorf("seed hospital test: %w", err)
		}
		if err := s.svc.HospitalTreatments.Create(ctx, &models.HospitalTreatment{
			HospitalID: hospitalID, Name: treatmentNames[i%len(treatmentNames)], Category: category,
			Cost: s.cost(10000, 100000), Duration: "ساعة", IsActive: true,
		}); err != nil {
			return fmt.Errorf("seed hospital treatment: %w", err)
		}
		if err := s.svc.HospitalOperations.Create(ctx, &models.HospitalOperation{
			HospitalID: hospitalID, Name: operationNames[i%len(operationNames)], Category: category,
			Cost: s.cost(250000, 2500000), Duration: "ساعتان", IsActive: true,
		}); err != nil {
			return fmt.Errorf("seed hospital operation: %w", err)
		}
		if err := s.svc.HospitalDiseases.Create(ctx, &models.HospitalDisease{
			HospitalID: hospitalID, Name: diseaseNames[i%len(diseaseNames)], Category: category,
			Severity: pick(s.rng, []string{models.SeverityMild, models.SeverityModerate, models.SeveritySevere}), IsActive: true,
		}); err != nil {
			return fmt.Errorf("seed hospital disease: %w", err)
		}
		sum.CatalogItems += 4
	}
	return nil
}

func (s *Seeder) fullName() string {
	return pick(s.rng, firstNames) + " " + pick(s.rng, lastNames)
}

func (s *Seeder) phone() string {
	return fmt.Sprintf("07%d%08d", 7+s.rng.Intn(3), s.rng.Intn(100000000))
}

// cost is a price in Iraqi dinars rounded to 250.
func (s *Seeder) cost(min, max int) float64 {
	return float64((min + s.rng.Intn(max-min)) / 250 * 250)
}

func pageOf(limit int) pagination.Params {
	return pagination.New(1, limit)
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}
