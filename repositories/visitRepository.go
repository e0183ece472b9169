package repositories

import (
	"context"

	"HospitalMS/cache"
	"HospitalMS/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VisitRecords are the materialized clinical rows owned by one visit.
type VisitRecords struct {
	Tests         []models.Test
	Diseases      []models.Disease
	Treatments    []models.Treatment
	Operations    []models.Operation
	Prescriptions []models.Prescription
}

// Counts reports how many rows of each kind the visit owns.
func (r VisitRecords) Counts() (tests, diseases, treatments, operations, prescriptions int) {
	return len(r.Tests), len(r.Diseases), len(r.Treatments), len(r.Operations), len(r.Prescriptions)
}

var visitScopedModels = []interface{}{
	&models.Test{}, &models.Disease{}, &models.Treatment{}, &models.Operation{}, &models.Prescription{},
}

type VisitRepository struct {
	*Repository[models.Visit]
	cache *cache.Cache
}

func NewVisitRepository(db *gorm.DB, cache *cache.Cache) *VisitRepository {
	return &VisitRepository{Repository: NewRepository[models.Visit](db, VisitSpec), cache: cache}
}

func (r *VisitRepository) invalidate(ctx context.Context) {
	r.cache.Invalidate(ctx, nil, "dashboard:*")
}

// Save inserts a new visit or overwrites an existing one, leaving its records alone.
func (r *VisitRepository) Save(ctx context.Context, visit *models.Visit) error {
	if err := saveVisit(r.DB(ctx), visit); err != nil {
		return translate(err)
	}
	r.invalidate(ctx)
	return nil
}

// SaveWithRecords upserts the visit and replaces every visit-scoped record in a single
// transaction. Any failure leaves the previous visit and records untouched.
func (r *VisitRepository) SaveWithRecords(ctx context.Context, visit *models.Visit, records *VisitRecords) error {
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVisit(tx, visit); err != nil {
			return err
		}
		if err := deleteVisitRecords(tx, visit.ID); err != nil {
			return err
		}
		return createVisitRecords(tx, visit.ID, records)
	})
	if err != nil {
		return translate(err)
	}
	r.invalidate(ctx)
	return nil
}

// UpdateStatus sets the status column only.
func (r *VisitRepository) UpdateStatus(ctx context.Context, id string, status models.VisitStatus) error {
	res := r.DB(ctx).Model(&models.Visit{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	r.invalidate(ctx)
	return nil
}

// Delete removes the visit and its records in one transaction.
func (r *VisitRepository) Delete(ctx context.Context, id string) error {
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteVisitRecords(tx, id); err != nil {
			return err
		}
		res := tx.Delete(&models.Visit{}, "id = ?", id)
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
	r.invalidate(ctx)
	return nil
}

func saveVisit(tx *gorm.DB, visit *models.Visit) error {
	if visit.ID == "" {
		return tx.Omit(clause.Associations).Create(visit).Error
	}
	res := tx.Model(visit).Select("*").Omit(clause.Associations, "id", "created_at").Updates(visit)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func deleteVisitRecords(tx *gorm.DB, visitID string) error {
	for _, model := range visitScopedModels {
		if err := tx.Where("visit_id = ?", visitID).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func createVisitRecords(tx *gorm.DB, visitID string, records *VisitRecords) error {
	if records == nil {
		return nil
	}
	for i := range records.Tests {
		records.Tests[i].VisitID = &visitID
	}
	for i := range records.Diseases {
		records.Diseases[i].VisitID = &visitID
	}
	for i := range records.Treatments {
		records.Treatments[i].VisitID = &visitID
	}
	for i := range records.Operations {
		records.Operations[i].VisitID = &visitID
	}
	for i := range records.Prescriptions {
		records.Prescriptions[i].VisitID = &visitID
	}

	batches := []interface{}{}
	if len(records.Tests) > 0 {
		batches = append(batches, &records.Tests)
	}
	if len(records.Diseases) > 0 {
		batches = append(batches, &records.Diseases)
	}
	if len(records.Treatments) > 0 {
		batches = append(batches, &records.Treatments)
	}
	if len(records.Operations) > 0 {
		batches = append(batches, &records.Operations)
	}
	if len(records.Prescriptions) > 0 {
		batches = append(batches, &records.Prescriptions)
	}
	for _, batch := range batches {
		if err := tx.Omit(clause.Associations).Create(batch).Error; err != nil {
			return err
		}
	}
	return nil
}
