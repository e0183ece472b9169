package services

import (
	"HospitalMS/cache"
	"HospitalMS/models"
	"HospitalMS/repositories"
	"HospitalMS/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Dependencies are the process level resources the services are built from.
type Dependencies struct {
	DB     *gorm.DB
	Cache  *cache.Cache
	Log    zerolog.Logger
	Tokens *utils.TokenMaker
	Mailer utils.Mailer
	Events VisitEventPublisher
}

// Services is the wired service layer shared by the HTTP API, the scheduler and the seeder.
type Services struct {
	Cities             *CrudService[models.City]
	Hospitals          *CrudService[models.Hospital]
	Doctors            *DoctorService
	Staff              *StaffService
	Patients           *PatientService
	Tests              *CrudService[models.Test]
	Treatments         *CrudService[models.Treatment]
	Operations         *CrudService[models.Operation]
	Diseases           *CrudService[models.Disease]
	Prescriptions      *CrudService[models.Prescription]
	HospitalTests      *CatalogService[models.HospitalTest]
	HospitalTreatments *CatalogService[models.HospitalTreatment]
	HospitalOperations *CatalogService[models.HospitalOperation]
	HospitalDiseases   *CatalogService[models.HospitalDisease]
	Visits             *VisitService
	Dashboard          *DashboardService
	Auth               *AuthService
	Users              *UserService
	Permissions        *PermissionService
}

// New initializes repositories and services
func New(deps Dependencies) *Services {
	db, c := deps.DB, deps.Cache
	events := deps.Events
	if events == nil {
		events = NoopPublisher{}
	}
	mailer := deps.Mailer
	if mailer == nil {
		mailer = utils.NewMailer(utils.SMTPConfig{}, deps.Log)
	}
	refs := NewReferences(db)
	userRepo := repositories.NewUserRepository(db, c)

	return &Services{
		Cities:             NewCityService(repositories.NewCityRepository(db, c)),
		Hospitals:          NewHospitalService(db, c, refs),
		Doctors:            NewDoctorService(repositories.NewDoctorRepository(db, c), userRepo, refs),
		Staff:              NewStaffService(repositories.NewStaffRepository(db, c), userRepo, refs),
		Patients:           NewPatientService(repositories.NewPatientRepository(db, c), refs),
		Tests:              NewTestService(db, c, refs),
		Treatments:         NewTreatmentService(db, c, refs),
		Operations:         NewOperationService(db, c, refs),
		Diseases:           NewDiseaseService(db, c, refs),
		Prescriptions:      NewPrescriptionService(db, c, refs),
		HospitalTests:      NewHospitalTestService(repositories.NewCatalogRepository[models.HospitalTest](db, c, models.ResourceHospitalTests), refs),
		HospitalTreatments: NewHospitalTreatmentService(repositories.NewCatalogRepository[models.HospitalTreatment](db, c, models.ResourceHospitalTreatments), refs),
		HospitalOperations: NewHospitalOperationService(repositories.NewCatalogRepository[models.HospitalOperation](db, c, models.ResourceHospitalOperations), refs),
		HospitalDiseases:   NewHospitalDiseaseService(repositories.NewCatalogRepository[models.HospitalDisease](db, c, models.ResourceHospitalDiseases), refs),
		Visits:             NewVisitService(repositories.NewVisitRepository(db, c), refs, events, deps.Log),
		Dashboard:          NewDashboardService(repositories.NewDashboardRepository(db, c), deps.Log),
		Auth:               NewAuthService(userRepo, deps.Tokens, utils.NewResetCodeStore(c), mailer, deps.Log),
		Users:              NewUserService(userRepo, refs),
		Permissions:        NewPermissionService(userRepo, db),
	}
}
