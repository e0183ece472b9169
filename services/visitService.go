package services

import (
	"context"
	"encoding/json"
	"time"

	"HospitalMS/models"
	"HospitalMS/pagination"
	"HospitalMS/repositories"
	"HospitalMS/workflow"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

var nowUTC = func() time.Time { return time.Now().UTC() }

// VisitEventPublisher is notified after a visit is finalized.
type VisitEventPublisher interface {
	PublishVisitCompleted(ctx context.Context, event models.VisitCompletedEvent) error
}

// NoopPublisher drops events, used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishVisitCompleted(context.Context, models.VisitCompletedEvent) error {
	return nil
}

// VisitService runs the multi-step visit workflow: drafts are saved as they are edited
// and a completed visit materializes its clinical records.
type VisitService struct {
	repository *repositories.VisitRepository
	refs       *References
	events     VisitEventPublisher
	log        zerolog.Logger
}

func NewVisitService(repository *repositories.VisitRepository, refs *References, events VisitEventPublisher, log zerolog.Logger) *VisitService {
	if events == nil {
		events = NoopPublisher{}
	}
	return &VisitService{repository: repository, refs: refs, events: events, log: log}
}

func (s *VisitService) Spec() repositories.QuerySpec {
	return s.repository.Spec()
}

// List returns visits with their patient, doctor and nested clinical records.
func (s *VisitService) List(ctx context.Context, q repositories.ListQuery) ([]models.Visit, pagination.Meta, error) {
	rows, total, err := s.repository.List(ctx, q)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return rows, q.Params.Meta(total), nil
}

func (s *VisitService) Get(ctx context.Context, id string) (*models.Visit, error) {
	return s.repository.Get(ctx, id)
}

// Form returns the editable state of a visit so a client can resume the wizard.
func (s *VisitService) Form(ctx context.Context, id string) (*models.VisitForm, error) {
	visit, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.FormFromVisit(visit)
}

// Submit dispatches on the requested status: drafts are saved as drafts, COMPLETED
// finalizes, anything else is a plain save with a status change.
func (s *VisitService) Submit(ctx context.Context, form *models.VisitForm) (*models.Visit, error) {
	switch form.Status {
	case "", models.VisitDraft:
		return s.SaveDraft(ctx, form)
	case models.VisitCompleted:
		return s.Finalize(ctx, form)
	default:
		return s.save(ctx, form)
	}
}

// SaveDraft persists whatever the wizard holds. Only the patient is required; the
// sub-record lists are kept verbatim in draftData.
func (s *VisitService) SaveDraft(ctx context.Context, form *models.VisitForm) (*models.Visit, error) {
	if err := form.ValidateDraft(); err != nil {
		return nil, invalid(err)
	}
	visit, err := s.load(ctx, form.ID)
	if err != nil {
		return nil, err
	}
	if err := workflow.Transition(visit.Status, models.VisitDraft); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, form); err != nil {
		return nil, err
	}

	scheduledAt := nowUTC()
	if form.ScheduledAt != "" {
		if scheduledAt, err = models.ParseDate(form.ScheduledAt); err != nil {
			return nil, invalidField("scheduledAt", "must be a valid date")
		}
	}
	form.CurrentStep = workflow.Clamp(form.CurrentStep)
	form.ApplyTo(visit, scheduledAt)
	visit.Status = models.VisitDraft

	draft, err := json.Marshal(form.VisitRecords)
	if err != nil {
		return nil, err
	}
	visit.DraftData = datatypes.JSON(draft)

	if err := s.repository.Save(ctx, visit); err != nil {
		return nil, err
	}
	return s.repository.Get(ctx, visit.ID)
}

// Finalize completes the visit. The visit row and every visit-scoped record are
// replaced in one transaction, then a visit.completed event is published.
func (s *VisitService) Finalize(ctx context.Context, form *models.VisitForm) (*models.Visit, error) {
	if err := form.ValidateFinal(); err != nil {
		return nil, invalid(err)
	}
	if !form.VisitRecords.Empty() && (form.DoctorID == "" || form.HospitalID == "") {
		return nil, models.ErrMissingAssignment
	}
	visit, err := s.load(ctx, form.ID)
	if err != nil {
		return nil, err
	}
	if err := workflow.Transition(visit.Status, models.VisitCompleted); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, form); err != nil {
		return nil, err
	}

	scheduledAt, err := models.ParseDate(form.ScheduledAt)
	if err != nil {
		return nil, invalidField("scheduledAt", "must be a valid date")
	}
	form.CurrentStep = workflow.LastStep
	form.ApplyTo(visit, scheduledAt)
	visit.Status = models.VisitCompleted
	visit.DraftData = nil

	records, err := buildRecords(form, scheduledAt)
	if err != nil {
		return nil, err
	}
	if err := s.repository.SaveWithRecords(ctx, visit, records); err != nil {
		return nil, err
	}

	s.publishCompleted(ctx, visit, records)
	return s.repository.Get(ctx, visit.ID)
}

// save stores the visit fields with a non-draft, non-completed status.
func (s *VisitService) save(ctx context.Context, form *models.VisitForm) (*models.Visit, error) {
	if !form.Status.Valid() {
		return nil, invalidField("status", "must be a valid visit status")
	}
	if err := validation.ValidateStruct(form,
		validation.Field(&form.PatientID, validation.Required),
		validation.Field(&form.ScheduledAt, validation.Required),
	); err != nil {
		return nil, invalid(err)
	}
	visit, err := s.load(ctx, form.ID)
	if err != nil {
		return nil, err
	}
	if err := workflow.Transition(visit.Status, form.Status); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, form); err != nil {
		return nil, err
	}
	scheduledAt, err := models.ParseDate(form.ScheduledAt)
	if err != nil {
		return nil, invalidField("scheduledAt", "must be a valid date")
	}
	step := visit.CurrentStep
	form.ApplyTo(visit, scheduledAt)
	if form.CurrentStep == 0 {
		visit.CurrentStep = step
	}
	visit.CurrentStep = workflow.Clamp(visit.CurrentStep)
	visit.Status = form.Status
	if err := s.repository.Save(ctx, visit); err != nil {
		return nil, err
	}
	return s.repository.Get(ctx, visit.ID)
}

// SetStatus changes only the status, honoring the status machine.
func (s *VisitService) SetStatus(ctx context.Context, id string, status models.VisitStatus) (*models.Visit, error) {
	visit, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == models.VisitCompleted && visit.Status != models.VisitCompleted {
		form, err := models.FormFromVisit(visit)
		if err != nil {
			return nil, err
		}
		form.Status = models.VisitCompleted
		return s.Finalize(ctx, form)
	}
	if err := workflow.Transition(visit.Status, status); err != nil {
		return nil, err
	}
	if err := s.repository.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	visit.Status = status
	return visit, nil
}

// Delete removes the visit with its records.
func (s *VisitService) Delete(ctx context.Context, id string) error {
	return s.repository.Delete(ctx, id)
}

// load returns the stored visit, or an empty one for a new form.
func (s *VisitService) load(ctx context.Context, id string) (*models.Visit, error) {
	if id == "" {
		return &models.Visit{}, nil
	}
	return s.repository.Get(ctx, id)
}

func (s *VisitService) checkRefs(ctx context.Context, form *models.VisitForm) error {
	if err := s.refs.Require(ctx, &models.Patient{}, "patientId", form.PatientID); err != nil {
		return err
	}
	if err := s.refs.Require(ctx, &models.Doctor{}, "doctorId", form.DoctorID); err != nil {
		return err
	}
	if err := s.refs.Require(ctx, &models.Hospital{}, "hospitalId", form.HospitalID); err != nil {
		return err
	}
	return s.refs.Require(ctx, &models.City{}, "cityId", form.CityID)
}

func (s *VisitService) publishCompleted(ctx context.Context, visit *models.Visit, records *repositories.VisitRecords) {
	tests, diseases, treatments, operations, prescriptions := records.Counts()
	event := models.VisitCompletedEvent{
		VisitID:       visit.ID,
		PatientID:     visit.PatientID,
		DoctorID:      models.StringValue(visit.DoctorID),
		HospitalID:    models.StringValue(visit.HospitalID),
		Tests:         tests,
		Diseases:      diseases,
		Treatments:    treatments,
		Operations:    operations,
		Prescriptions: prescriptions,
		CompletedAt:   nowUTC(),
	}
	if err := s.events.PublishVisitCompleted(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("visit_id", visit.ID).Msg("failed to publish visit.completed")
	}
}

// buildRecords turns the wizard lists into rows owned by the visit's patient, doctor
// and hospital. Empty dates fall back to the visit date.
func buildRecords(form *models.VisitForm, visitDate time.Time) (*repositories.VisitRecords, error) {
	records := &repositories.VisitRecords{}
	doctorID, hospitalID := form.DoctorID, form.HospitalID

	dateOr := func(field, value string) (*time.Time, error) {
		if value == "" {
			d := visitDate
			return &d, nil
		}
		t, err := models.ParseDate(value)
		if err != nil {
			return nil, invalidField(field, "must be a valid date")
		}
		return &t, nil
	}
	status := func(value, fallback string) string {
		if value == "" {
			return fallback
		}
		return value
	}

	for _, in := range form.Tests {
		at, err := dateOr("tests.scheduledAt", in.ScheduledAt)
		if err != nil {
			return nil, err
		}
		records.Tests = append(records.Tests, models.Test{
			PatientID: form.PatientID, DoctorID: doctorID, HospitalID: hospitalID,
			Name: in.Name, Description: in.Description, ScheduledAt: at,
			Status: status(in.Status, models.OrderPending), Results: in.Results, Notes: in.Notes,
		})
	}
	for _, in := range form.Diseases {
		at, err := dateOr("diseases.diagnosedAt", in.DiagnosedAt)
		if err != nil {
			return nil, err
		}
		records.Diseases = append(records.Diseases, models.Disease{
			PatientID: form.PatientID, DoctorID: models.StringPtr(doctorID), HospitalID: models.StringPtr(hospitalID),
			Name: in.Name, Severity: in.Severity, Status: status(in.Status, models.DiseaseActive),
			DiagnosedAt: *at, Notes: in.Notes,
		})
	}
	for _, in := range form.Treatments {
		at, err := dateOr("treatments.scheduledAt", in.ScheduledAt)
		if err != nil {
			return nil, err
		}
		records.Treatments = append(records.Treatments, models.Treatment{
			PatientID: form.PatientID, DoctorID: doctorID, HospitalID: hospitalID,
			Name: in.Name, Description: in.Description, ScheduledAt: at,
			Status: status(in.Status, models.OrderPending), Notes: in.Notes,
		})
	}
	for _, in := range form.Operations {
		at, err := dateOr("operations.scheduledAt", in.ScheduledAt)
		if err != nil {
			return nil, err
		}
		records.Operations = append(records.Operations, models.Operation{
			PatientID: form.PatientID, DoctorID: doctorID, HospitalID: hospitalID,
			Name: in.Name, Description: in.Description, ScheduledAt: at,
			Status: status(in.Status, models.OrderPending), Notes: in.Notes,
		})
	}
	for _, in := range form.Medications {
		start, err := dateOr("medications.startDate", in.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := models.ParseOptionalDate(in.EndDate)
		if err != nil {
			return nil, invalidField("medications.endDate", "must be a valid date")
		}
		records.Prescriptions = append(records.Prescriptions, models.Prescription{
			PatientID: form.PatientID, DoctorID: doctorID, HospitalID: hospitalID,
			Medication: in.Medication, Dosage: in.Dosage, Frequency: in.Frequency, Duration: in.Duration,
			Instructions: in.Instructions, StartDate: start, EndDate: end,
			Status: status(in.Status, models.PrescriptionActive),
		})
	}
	return records, nil
}
