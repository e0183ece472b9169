package services

import (
	"context"
	"errors"

	"HospitalMS/models"
	"HospitalMS/repositories"

	"gorm.io/gorm"
)

// Tables whose rows carry their own hospital_id.
var hospitalTables = map[string]string{
	models.ResourcePatients:           "patients",
	models.ResourceDoctors:            "doctors",
	models.ResourceStaff:              "staff",
	models.ResourceUsers:              "users",
	models.ResourceTests:              "tests",
	models.ResourceTreatments:         "treatments",
	models.ResourceOperations:         "operations",
	models.ResourcePrescriptions:      "prescriptions",
	models.ResourceHospitalTests:      "hospital_tests",
	models.ResourceHospitalTreatments: "hospital_treatments",
	models.ResourceHospitalOperations: "hospital_operations",
	models.ResourceHospitalDiseases:   "hospital_diseases",
}

// Tables with an optional hospital_id that fall back to the patient's hospital.
var patientScopedTables = map[string]string{
	models.ResourceVisits:   "visits",
	models.ResourceDiseases: "diseases",
}

// PermissionService decides whether a caller may perform an action on a resource.
type PermissionService struct {
	users *repositories.UserRepository
	db    *gorm.DB
}

func NewPermissionService(users *repositories.UserRepository, db *gorm.DB) *PermissionService {
	return &PermissionService{users: users, db: db}
}

// Allowed grants access when the caller's role holds resource:action and, for
// non-admins bound to a hospital, the target hospital is their own.
func (s *PermissionService) Allowed(ctx context.Context, p models.Principal, resource, action, hospitalID string) (bool, error) {
	role, err := s.users.RoleForPrincipal(ctx, p)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if !hasPermission(role, models.PermissionName(resource, action)) {
		return false, nil
	}
	if p.Role == models.RoleAdmin || p.HospitalID == nil || hospitalID == "" {
		return true, nil
	}
	return *p.HospitalID == hospitalID, nil
}

// HospitalOf returns the hospital a stored row belongs to, or "" when the resource is
// not hospital scoped or the row does not exist.
func (s *PermissionService) HospitalOf(ctx context.Context, resource, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	if resource == models.ResourceHospitals {
		return id, nil
	}

	var row struct {
		HospitalID *string
	}
	db := s.db.WithContext(ctx)
	if table, ok := hospitalTables[resource]; ok {
		db = db.Table(table).Select("hospital_id").Where("id = ?", id)
	} else if table, ok := patientScopedTables[resource]; ok {
		db = db.Table(table+" AS t").
			Select("COALESCE(t.hospital_id, p.hospital_id) AS hospital_id").
			Joins("LEFT JOIN patients p ON p.id = t.patient_id").
			Where("t.id = ?", id)
	} else {
		return "", nil
	}
	if err := db.Limit(1).Scan(&row).Error; err != nil {
		return "", err
	}
	return models.StringValue(row.HospitalID), nil
}

func hasPermission(role *models.Role, name string) bool {
	for _, perm := range role.Permissions {
		if perm.Name == name {
			return true
		}
	}
	return false
}
