package repositories

import (
	"context"
	"time"

	"HospitalMS/cache"
	"HospitalMS/models"

	"gorm.io/gorm"
)

const DashboardCacheExpiry = 5 * time.Minute

// DashboardStats are the headline counts of the dashboard.
type DashboardStats struct {
	HospitalID          string           `json:"hospitalId,omitempty"`
	Cities              int64            `json:"cities"`
	Hospitals           int64            `json:"hospitals"`
	Doctors             int64            `json:"doctors"`
	Staff               int64            `json:"staff"`
	Patients            int64            `json:"patients"`
	Visits              int64            `json:"visits"`
	VisitsByStatus      map[string]int64 `json:"visitsByStatus"`
	VisitsToday         int64            `json:"visitsToday"`
	Tests               int64            `json:"tests"`
	Treatments          int64            `json:"treatments"`
	Operations          int64            `json:"operations"`
	ActivePrescriptions int64            `json:"activePrescriptions"`
	GeneratedAt         time.Time        `json:"generatedAt"`
}

type DashboardRepository struct {
	db    *gorm.DB
	cache *cache.Cache
	now   func() time.Time
}

func NewDashboardRepository(db *gorm.DB, cache *cache.Cache) *DashboardRepository {
	return &DashboardRepository{db: db, cache: cache, now: time.Now}
}

func dashboardCacheKey(hospitalID string) string {
	if hospitalID == "" {
		hospitalID = "all"
	}
	return "dashboard:" + hospitalID
}

// Stats returns cached counts, computing them on a miss.
func (r *DashboardRepository) Stats(ctx context.Context, hospitalID string) (*DashboardStats, error) {
	var stats DashboardStats
	if r.cache.GetJSON(ctx, dashboardCacheKey(hospitalID), &stats) {
		return &stats, nil
	}
	return r.Refresh(ctx, hospitalID)
}

// Refresh recomputes the counts and stores them.
func (r *DashboardRepository) Refresh(ctx context.Context, hospitalID string) (*DashboardStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*queryTimeout)
	defer cancel()

	db := r.db.WithContext(ctx)
	scoped := func(model interface{}, column string) *gorm.DB {
		q := db.Model(model)
		if hospitalID != "" {
			q = q.Where(column+" = ?", hospitalID)
		}
		return q
	}

	stats := &DashboardStats{HospitalID: hospitalID, VisitsByStatus: map[string]int64{}, GeneratedAt: r.now().UTC()}
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.Doctors, scoped(&models.Doctor{}, "hospital_id")},
		{&stats.Staff, scoped(&models.Staff{}, "hospital_id")},
		{&stats.Patients, scoped(&models.Patient{}, "hospital_id")},
		{&stats.Visits, scoped(&models.Visit{}, "hospital_id")},
		{&stats.Tests, scoped(&models.Test{}, "hospital_id")},
		{&stats.Treatments, scoped(&models.Treatment{}, "hospital_id")},
		{&stats.Operations, scoped(&models.Operation{}, "hospital_id")},
		{&stats.ActivePrescriptions, scoped(&models.Prescription{}, "hospital_id").Where("status = ?", models.PrescriptionActive)},
		{&stats.Hospitals, scoped(&models.Hospital{}, "id")},
	}
	if hospitalID == "" {
		counts = append(counts, struct {
			dst   *int64
			query *gorm.DB
		}{&stats.Cities, db.Model(&models.City{})})
	} else {
		stats.Cities = 1
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, translate(err)
		}
	}

	startOfDay := r.now().UTC().Truncate(24 * time.Hour)
	if err := scoped(&models.Visit{}, "hospital_id").
		Where("scheduled_at >= ? AND scheduled_at < ?", startOfDay, startOfDay.Add(24*time.Hour)).
		Count(&stats.VisitsToday).Error; err != nil {
		return nil, translate(err)
	}

	var byStatus []struct {
		Status string
		Total  int64
	}
	if err := scoped(&models.Visit{}, "hospital_id").Select("status, COUNT(*) AS total").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, translate(err)
	}
	for _, s := range byStatus {
		stats.VisitsByStatus[s.Status] = s.Total
	}

	_ = r.cache.SetJSON(ctx, dashboardCacheKey(hospitalID), stats, DashboardCacheExpiry)
	return stats, nil
}
