package repositories

import (
	"context"
	"errors"
	"fmt"

	"HospitalMS/cache"
	"HospitalMS/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const patientNumberAttempts = 3

type PatientRepository struct {
	*Repository[models.Patient]
	cache *cache.Cache
}

func NewPatientRepository(db *gorm.DB, cache *cache.Cache) *PatientRepository {
	repo := NewRepository[models.Patient](db, PatientSpec).InvalidateOn(cache, "dashboard:*")
	return &PatientRepository{Repository: repo, cache: cache}
}

func patientNumberLockKey(hospitalID string) string {
	return "patient_number_lock:" + hospitalID
}

// Create allocates the next patient number of the hospital and inserts the patient.
// Allocation is serialized per hospital with a Redis lock; the unique index on
// (hospital_id, patient_number) catches anything that slips past it.
func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	err := r.cache.WithLock(ctx, patientNumberLockKey(patient.HospitalID), cache.DefaultLockOptions, func() error {
		var err error
		for attempt := 0; attempt < patientNumberAttempts; attempt++ {
			err = r.DB(ctx).Transaction(func(tx *gorm.DB) error {
				seq, err := nextPatientSequence(tx, patient.HospitalID)
				if err != nil {
					return err
				}
				patient.PatientNumber = models.FormatPatientNumber(patient.HospitalID, seq)
				return tx.Omit(clause.Associations).Create(patient).Error
			})
			err = translate(err)
			if !errors.Is(err, models.ErrConflict) {
				return err
			}
		}
		return fmt.Errorf("failed to allocate patient number: %w", err)
	})
	if err != nil {
		return err
	}
	r.cache.Invalidate(ctx, nil, "dashboard:*")
	return nil
}

// nextPatientSequence returns one more than the highest sequence in use for the hospital.
func nextPatientSequence(tx *gorm.DB, hospitalID string) (int, error) {
	prefix := models.PatientNumberPrefix(hospitalID)
	var numbers []string
	err := tx.Model(&models.Patient{}).
		Where("hospital_id = ? AND patient_number LIKE ?", hospitalID, prefix+"%").
		Order("LENGTH(patient_number) DESC, patient_number DESC").
		Limit(1).
		Pluck("patient_number", &numbers).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read last patient number: %w", err)
	}
	if len(numbers) == 0 {
		return 1, nil
	}
	seq, ok := models.PatientSequence(hospitalID, numbers[0])
	if !ok {
		return 0, fmt.Errorf("malformed patient number %q", numbers[0])
	}
	return seq + 1, nil
}

// DeletePatientAndRelated removes a patient, its visits and every clinical record.
func (r *PatientRepository) DeletePatientAndRelated(ctx context.Context, id string) error {
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.Test{}, &models.Disease{}, &models.Treatment{},
			&models.Operation{}, &models.Prescription{}, &models.Visit{},
		} {
			if err := tx.Where("patient_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Patient{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return translate(err)
	}
	r.cache.Invalidate(ctx, nil, "dashboard:*")
	return nil
}
