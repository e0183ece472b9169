package services

import (
	"context"
	"errors"

	"HospitalMS/models"
	"HospitalMS/repositories"

	"gorm.io/gorm"
)

// References checks that foreign keys point at existing rows before a write.
type References struct {
	db *gorm.DB
}

func NewReferences(db *gorm.DB) *References {
	return &References{db: db}
}

// Require returns a validation error on field when id does not exist in model's table.
func (r *References) Require(ctx context.Context, model interface{}, field, id string) error {
	if id == "" {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return invalidField(field, "does not exist")
	}
	return nil
}

// HospitalCity returns the city of a hospital.
func (r *References) HospitalCity(ctx context.Context, hospitalID string) (string, error) {
	if hospitalID == "" {
		return "", nil
	}
	var hospital models.Hospital
	err := r.db.WithContext(ctx).Select("id", "city_id").First(&hospital, "id = ?", hospitalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", invalidField("hospitalId", "does not exist")
	}
	return hospital.CityID, err
}

type PatientService struct {
	*CrudService[models.Patient]
	repository *repositories.PatientRepository
}

// NewPatientService wires patient CRUD. The hospital is fixed at registration because
// the patient number embeds it; cityId defaults to the hospital's city.
func NewPatientService(repository *repositories.PatientRepository, refs *References) *PatientService {
	prepare := func(ctx context.Context, p, existing *models.Patient) error {
		if existing != nil {
			p.HospitalID = existing.HospitalID
			p.PatientNumber = existing.PatientNumber
			p.CreatedAt = existing.CreatedAt
		}
		cityID, err := refs.HospitalCity(ctx, p.HospitalID)
		if err != nil {
			return err
		}
		if p.CityID == "" {
			p.CityID = cityID
		}
		return refs.Require(ctx, &models.City{}, "cityId", p.CityID)
	}
	return &PatientService{
		CrudService: NewCrudService[models.Patient](repository, prepare),
		repository:  repository,
	}
}

// Delete removes the patient with every visit and clinical record.
func (s *PatientService) Delete(ctx context.Context, id string) error {
	return s.repository.DeletePatientAndRelated(ctx, id)
}
