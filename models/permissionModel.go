package models

import (
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// Permission actions.
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Resources guarded by the permission system.
const (
	ResourceCities             = "cities"
	ResourceHospitals          = "hospitals"
	ResourceUsers              = "users"
	ResourceDoctors            = "doctors"
	ResourceStaff              = "staff"
	ResourcePatients           = "patients"
	ResourceVisits             = "visits"
	ResourceTests              = "tests"
	ResourceTreatments         = "treatments"
	ResourceOperations         = "operations"
	ResourceDiseases           = "diseases"
	ResourcePrescriptions      = "prescriptions"
	ResourceHospitalTests      = "hospital-tests"
	ResourceHospitalTreatments = "hospital-treatments"
	ResourceHospitalOperations = "hospital-operations"
	ResourceHospitalDiseases   = "hospital-diseases"
	ResourceDashboard          = "dashboard"
	ResourceRoles              = "roles"
)

// Resources lists every guarded resource.
var Resources = []string{
	ResourceCities, ResourceHospitals, ResourceUsers, ResourceDoctors, ResourceStaff,
	ResourcePatients, ResourceVisits, ResourceTests, ResourceTreatments, ResourceOperations,
	ResourceDiseases, ResourcePrescriptions, ResourceHospitalTests, ResourceHospitalTreatments,
	ResourceHospitalOperations, ResourceHospitalDiseases, ResourceDashboard, ResourceRoles,
}

// Actions lists every permission action.
var Actions = []string{ActionRead, ActionCreate, ActionUpdate, ActionDelete}

var clinicalResources = []string{
	ResourceCities, ResourceHospitals, ResourceDoctors, ResourceStaff, ResourcePatients,
	ResourceVisits, ResourceTests, ResourceTreatments, ResourceOperations, ResourceDiseases,
	ResourcePrescriptions, ResourceHospitalTests, ResourceHospitalTreatments,
	ResourceHospitalOperations, ResourceHospitalDiseases, ResourceDashboard,
}

// Permission is a (resource, action) grant.
type Permission struct {
	Base
	Name        string `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	Resource    string `gorm:"column:resource;size:50;not null;index" json:"resource"`
	Action      string `gorm:"column:action;size:20;not null" json:"action"`
	Description string `gorm:"column:description;type:text" json:"description"`
}

func (Permission) TableName() string {
	return "permissions"
}

// PermissionName is the canonical "resource:action" key.
func PermissionName(resource, action string) string {
	return resource + ":" + action
}

// Role is a named bundle of permissions.
type Role struct {
	Base
	Name        string       `gorm:"column:name;size:50;not null;uniqueIndex" json:"name"`
	Description string       `gorm:"column:description;type:text" json:"description"`
	IsSystem    bool         `gorm:"column:is_system;default:false" json:"isSystem"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions"`
}

func (Role) TableName() string {
	return "roles"
}

// PermissionNames returns the sorted names of the granted permissions.
func (r *Role) PermissionNames() []string {
	names := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// RoleRequest creates or updates a role.
type RoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func (r RoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 50)),
	)
}

// DefaultGrants maps each built-in role to its permission names.
func DefaultGrants() map[string][]string {
	grants := map[string][]string{}
	for _, resource := range Resources {
		for _, action := range Actions {
			grants[RoleAdmin] = append(grants[RoleAdmin], PermissionName(resource, action))
		}
	}

	doctorWrites := []string{ResourceVisits, ResourceTests, ResourceTreatments, ResourceOperations, ResourceDiseases, ResourcePrescriptions}
	staffWrites := []string{ResourcePatients, ResourceVisits}
	for _, resource := range clinicalResources {
		grants[RoleDoctor] = append(grants[RoleDoctor], PermissionName(resource, ActionRead))
		grants[RoleStaff] = append(grants[RoleStaff], PermissionName(resource, ActionRead))
	}
	for _, resource := range doctorWrites {
		grants[RoleDoctor] = append(grants[RoleDoctor], PermissionName(resource, ActionCreate), PermissionName(resource, ActionUpdate))
	}
	for _, resource := range staffWrites {
		grants[RoleStaff] = append(grants[RoleStaff], PermissionName(resource, ActionCreate), PermissionName(resource, ActionUpdate))
	}
	return grants
}

// SeedPermissions inserts the permission catalog into the database
func SeedPermissions(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, resource := range Resources {
			for _, action := range Actions {
				permission := Permission{
					Name:        PermissionName(resource, action),
					Resource:    resource,
					Action:      action,
					Description: action + " " + resource,
				}
				if err := tx.Where(Permission{Name: permission.Name}).FirstOrCreate(&permission).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// SeedRoles inserts the built-in roles and their grants
func SeedRoles(db *gorm.DB) error {
	descriptions := map[string]string{
		RoleAdmin:  "Full access to the system",
		RoleDoctor: "Clinical records, visits and prescriptions",
		RoleStaff:  "Patient registration and visit scheduling",
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for name, grantNames := range DefaultGrants() {
			role := Role{Name: name, Description: descriptions[name], IsSystem: true}
			if err := tx.Where(Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
				return err
			}
			var permissions []Permission
			if err := tx.Where("name IN ?", grantNames).Find(&permissions).Error; err != nil {
				return err
			}
			if err := tx.Model(&role).Association("Permissions").Replace(permissions); err != nil {
				return err
			}
		}
		return nil
	})
}
