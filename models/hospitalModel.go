package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// City model
type City struct {
	Base
	Name      string     `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	Hospitals []Hospital `gorm:"foreignKey:CityID;references:ID" json:"hospitals,omitempty"`
}

func (City) TableName() string {
	return "cities"
}

func (c City) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(2, 100)),
	)
}

// Hospital model
type Hospital struct {
	Base
	Name    string `gorm:"column:name;size:200;not null;index" json:"name"`
	Address string `gorm:"column:address" json:"address"`
	Phone   string `gorm:"column:phone;size:30" json:"phone"`
	Email   string `gorm:"column:email;size:255" json:"email"`
	CityID  string `gorm:"column:city_id;size:36;not null;index" json:"cityId"`
	City    *City  `gorm:"foreignKey:CityID;references:ID" json:"city,omitempty"`
}

func (Hospital) TableName() string {
	return "hospitals"
}

func (h Hospital) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&h.CityID, validation.Required),
		validation.Field(&h.Email, is.EmailFormat),
		validation.Field(&h.Phone, validation.Length(0, 30)),
	)
}

// HospitalTest is a per-hospital offering/price list entry for lab and imaging tests.
type HospitalTest struct {
	Base
	HospitalID  string    `gorm:"column:hospital_id;size:36;not null;index" json:"hospitalId"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Category    string    `gorm:"column:category;index" json:"category"`
	Cost        float64   `gorm:"column:cost" json:"cost"`
	Duration    string    `gorm:"column:duration" json:"duration"`
	IsActive    bool      `gorm:"column:is_active;default:true" json:"isActive"`
	Hospital    *Hospital `gorm:"foreignKey:HospitalID;references:ID" json:"hospital,omitempty"`
}

func (HospitalTest) TableName() string {
	return "hospital_tests"
}

func (t HospitalTest) Validate() error {
	return validateCatalog(&t.HospitalID, &t.Name, &t.Cost)
}

// HospitalTreatment model
type HospitalTreatment struct {
	Base
	HospitalID  string    `gorm:"column:hospital_id;size:36;not null;index" json:"hospitalId"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Category    string    `gorm:"column:category;index" json:"category"`
	Cost        float64   `gorm:"column:cost" json:"cost"`
	Duration    string    `gorm:"column:duration" json:"duration"`
	IsActive    bool      `gorm:"column:is_active;default:true" json:"isActive"`
	Hospital    *Hospital `gorm:"foreignKey:HospitalID;references:ID" json:"hospital,omitempty"`
}

func (HospitalTreatment) TableName() string {
	return "hospital_treatments"
}

func (t HospitalTreatment) Validate() error {
	return validateCatalog(&t.HospitalID, &t.Name, &t.Cost)
}

// HospitalOperation model
type HospitalOperation struct {
	Base
	HospitalID  string    `gorm:"column:hospital_id;size:36;not null;index" json:"hospitalId"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Category    string    `gorm:"column:category;index" json:"category"`
	Cost        float64   `gorm:"column:cost" json:"cost"`
	Duration    string    `gorm:"column:duration" json:"duration"`
	IsActive    bool      `gorm:"column:is_active;default:true" json:"isActive"`
	Hospital    *Hospital `gorm:"foreignKey:HospitalID;references:ID" json:"hospital,omitempty"`
}

func (HospitalOperation) TableName() string {
	return "hospital_operations"
}

func (o HospitalOperation) Validate() error {
	return validateCatalog(&o.HospitalID, &o.Name, &o.Cost)
}

// HospitalDisease model
type HospitalDisease struct {
	Base
	HospitalID  string    `gorm:"column:hospital_id;size:36;not null;index" json:"hospitalId"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Category    string    `gorm:"column:category;index" json:"category"`
	Severity    string    `gorm:"column:severity" json:"severity"`
	Cost        float64   `gorm:"column:cost" json:"cost"`
	Duration    string    `gorm:"column:duration" json:"duration"`
	IsActive    bool      `gorm:"column:is_active;default:true" json:"isActive"`
	Hospital    *Hospital `gorm:"foreignKey:HospitalID;references:ID" json:"hospital,omitempty"`
}

func (HospitalDisease) TableName() string {
	return "hospital_diseases"
}

func (d HospitalDisease) Validate() error {
	if err := validateCatalog(&d.HospitalID, &d.Name, &d.Cost); err != nil {
		return err
	}
	return validation.Validate(d.Severity, validation.In(severityValues...))
}

func validateCatalog(hospitalID, name *string, cost *float64) error {
	return validation.Errors{
		"hospitalId": validation.Validate(*hospitalID, validation.Required),
		"name":       validation.Validate(*name, validation.Required, validation.Length(1, 200)),
		"cost":       validation.Validate(*cost, validation.Min(0.0)),
	}.Filter()
}
