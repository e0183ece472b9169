package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Built-in user roles.
const (
	RoleAdmin  = "ADMIN"
	RoleDoctor = "DOCTOR"
	RoleStaff  = "STAFF"
)

var userRoles = []interface{}{RoleAdmin, RoleDoctor, RoleStaff}

// User represents an account that can sign in.
type User struct {
	Base
	Email        string  `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	Name         string  `gorm:"column:name;size:200" json:"name"`
	PasswordHash string  `gorm:"column:password_hash;size:255;not null" json:"-"`
	Role         string  `gorm:"column:role;size:20;not null;index" json:"role"`
	RoleID       *string `gorm:"column:role_id;size:36;index" json:"roleId"`
	HospitalID   *string `gorm:"column:hospital_id;size:36;index" json:"hospitalId"`
	IsActive     bool    `gorm:"column:is_active;default:true" json:"isActive"`
	AssignedRole *Role   `gorm:"foreignKey:RoleID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"assignedRole,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID     string  `json:"userId"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	RoleID     *string `json:"roleId,omitempty"`
	HospitalID *string `json:"hospitalId,omitempty"`
}

// Principal builds the token subject for a user.
func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Email: u.Email, Role: u.Role, RoleID: u.RoleID, HospitalID: u.HospitalID}
}

// UserRequest is the admin payload to create or update an account.
type UserRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	RoleID     string `json:"roleId"`
	HospitalID string `json:"hospitalId"`
	IsActive   *bool  `json:"isActive"`
}

// ValidateCreate requires a password; updates may omit it.
func (r UserRequest) ValidateCreate() error {
	if err := r.Validate(); err != nil {
		return err
	}
	return validation.Errors{
		"password": validation.Validate(r.Password, validation.Required),
	}.Filter()
}

func (r UserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Name, validation.Length(0, 200)),
		validation.Field(&r.Role, validation.Required, validation.In(userRoles...)),
	)
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Code, validation.Required, validation.Length(6, 6)),
		validation.Field(&r.Password, validation.Required),
	)
}
