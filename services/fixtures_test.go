package services

import (
	"context"
	"sync"
	"testing"

	"HospitalMS/logger"
	"HospitalMS/models"
	"HospitalMS/testutil"
	"HospitalMS/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.VisitCompletedEvent
}

func (p *recordingPublisher) PublishVisitCompleted(_ context.Context, e models.VisitCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type recordingMailer struct {
	codes map[string]string
}

func (m *recordingMailer) SendResetCode(email, code string) error {
	m.codes[email] = code
	return nil
}

type env struct {
	db     *gorm.DB
	svc    *Services
	events *recordingPublisher
	mailer *recordingMailer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	c, _ := testutil.NewCache(t)
	tokens, err := utils.NewTokenMaker(testutil.TestSymmetricKey)
	require.NoError(t, err)

	e := &env{db: db, events: &recordingPublisher{}, mailer: &recordingMailer{codes: map[string]string{}}}
	e.svc = New(Dependencies{DB: db, Cache: c, Log: logger.Nop(), Tokens: tokens, Mailer: e.mailer, Events: e.events})
	return e
}

type clinic struct {
	city     *models.City
	hospital *models.Hospital
	doctor   *models.Doctor
	patient  *models.Patient
}

func (e *env) clinic(t *testing.T) *clinic {
	t.Helper()
	ctx := context.Background()

	city := &models.City{Name: "بغداد"}
	require.NoError(t, e.svc.Cities.Create(ctx, city))

	hospital := &models.Hospital{Name: "مستشفى الكندي", CityID: city.ID}
	require.NoError(t, e.svc.Hospitals.Create(ctx, hospital))

	doctor, err := e.svc.Doctors.Create(ctx, &models.DoctorRequest{
		AccountFields: models.AccountFields{
			Name: "علي حسين", Email: "ali." + hospital.ID[:8] + "@hospital.iq",
			Password: "Doctor@12345", HospitalID: hospital.ID,
		},
		Specialization: "باطنية",
	})
	require.NoError(t, err)

	patient := &models.Patient{HospitalID: hospital.ID, FirstName: "زينب", LastName: "الربيعي"}
	require.NoError(t, e.svc.Patients.Create(ctx, patient))

	return &clinic{city: city, hospital: hospital, doctor: doctor, patient: patient}
}

func (e *env) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
