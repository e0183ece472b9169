package services

import (
	"context"

	"HospitalMS/cache"
	"HospitalMS/models"
	"HospitalMS/repositories"

	"gorm.io/gorm"
)

func NewCityService(repository *repositories.CityRepository) *CrudService[models.City] {
	return NewCrudService[models.City](repository, nil)
}

func NewHospitalService(db *gorm.DB, c *cache.Cache, refs *References) *CrudService[models.Hospital] {
	repo := repositories.NewRepository[models.Hospital](db, repositories.HospitalSpec).
		InvalidateOn(c, dashboardPattern)
	return NewCrudService[models.Hospital](repo, func(ctx context.Context, h, _ *models.Hospital) error {
		return refs.Require(ctx, &models.City{}, "cityId", h.CityID)
	})
}

// dashboardPattern matches every cached dashboard aggregate.
const dashboardPattern = "dashboard:*"

// orderRefs checks the patient, doctor, hospital and visit of a clinical record.
func orderRefs(ctx context.Context, refs *References, patientID, doctorID, hospitalID string, visitID *string) error {
	if err := refs.Require(ctx, &models.Patient{}, "patientId", patientID); err != nil {
		return err
	}
	if err := refs.Require(ctx, &models.Doctor{}, "doctorId", doctorID); err != nil {
		return err
	}
	if err := refs.Require(ctx, &models.Hospital{}, "hospitalId", hospitalID); err != nil {
		return err
	}
	return refs.Require(ctx, &models.Visit{}, "visitId", models.StringValue(visitID))
}

func NewTestService(db *gorm.DB, c *cache.Cache, refs *References) *CrudService[models.Test] {
	repo := repositories.NewRepository[models.Test](db, repositories.TestSpec).
		InvalidateOn(c, dashboardPattern)
	return NewCrudService[models.Test](repo, func(ctx context.Context, t, _ *models.Test) error {
		if t.Status == "" {
			t.Status = models.OrderPending
		}
		return orderRefs(ctx, refs, t.PatientID, t.DoctorID, t.HospitalID, t.VisitID)
	})
}

func NewTreatmentService(db *gorm.DB, c *cache.Cache, refs *References) *CrudService[models.Treatment] {
	repo := repositories.NewRepository[models.Treatment](db, repositories.TreatmentSpec).
		InvalidateOn(c, dashboardPattern)
	return NewCrudService[models.Treatment](repo, func(ctx context.Context, t, _ *models.Treatment) error {
		if t.Status == "" {
			t.Status = models.OrderPending
		}
		return orderRefs(ctx, refs, t.PatientID, t.DoctorID, t.HospitalID, t.VisitID)
	})
}

func NewOperationService(db *gorm.DB, c *cache.Cache, refs *References) *CrudService[models.Operation] {
	repo := repositories.NewRepository[models.Operation](db, repositories.OperationSpec).
		InvalidateOn(c, dashboardPattern)
	return NewCrudService[models.Operation](repo, func(ctx context.Context, o, _ *models.Operation) error {
		if o.Status == "" {
			o.Status = models.OrderPending
		}
		return orderRefs(ctx, refs, o.PatientID, o.DoctorID, o.HospitalID, o.VisitID)
	})
}

func NewDiseaseService(db *gorm.DB, c *cache.Cache, refs *References) *CrudService[models.Disease] {
	repo := repositories.NewRepository[models.Disease](db, repositories.DiseaseSpec).
		InvalidateOn(c, dashboardPattern)
	return NewCrudService[models.Disease](repo, func(ctx context.Context, d, _ *models.Disease) error {
		if d.Status == "" {
			d.Status = models.DiseaseActive
		}
		if d.DiagnosedAt.IsZero() {
			d.DiagnosedAt = nowUTC()
		}
		return orderRefs(ctx, refs, d.PatientID, models.StringValue(d.DoctorID), models.StringValue(d.HospitalID), d.VisitID)
	})
}

func NewPrescriptionService(db *gorm.DB, c *cache.Cache, refs *References) *CrudService[models.Prescription] {
	repo := repositories.NewRepository[models.Prescription](db, repositories.PrescriptionSpec).
		InvalidateOn(c, dashboardPattern)
	return NewCrudService[models.Prescription](repo, func(ctx context.Context, p, _ *models.Prescription) error {
		if p.Status == "" {
			p.Status = models.PrescriptionActive
		}
		return orderRefs(ctx, refs, p.PatientID, p.DoctorID, p.HospitalID, p.VisitID)
	})
}
