package services

import (
	"context"
	"fmt"

	"HospitalMS/models"
	"HospitalMS/pagination"
	"HospitalMS/repositories"
	"HospitalMS/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PersonnelService manages doctors or staff together with their login accounts.
type PersonnelService[T repositories.Personnel, R any] struct {
	repository *repositories.PersonnelRepository[T]
	users      *repositories.UserRepository
	refs       *References
	role       string
	build      func(req R, profile *T) (models.AccountFields, error)
}

type DoctorService = PersonnelService[models.Doctor, models.DoctorRequest]
type StaffService = PersonnelService[models.Staff, models.StaffRequest]

func NewDoctorService(repository *repositories.PersonnelRepository[models.Doctor], users *repositories.UserRepository, refs *References) *DoctorService {
	return &DoctorService{
		repository: repository,
		users:      users,
		refs:       refs,
		role:       models.RoleDoctor,
		build: func(req models.DoctorRequest, d *models.Doctor) (models.AccountFields, error) {
			d.HospitalID = req.HospitalID
			d.Specialization = req.Specialization
			d.LicenseNumber = req.LicenseNumber
			d.Phone = req.Phone
			return req.AccountFields, nil
		},
	}
}

func NewStaffService(repository *repositories.PersonnelRepository[models.Staff], users *repositories.UserRepository, refs *References) *StaffService {
	return &StaffService{
		repository: repository,
		users:      users,
		refs:       refs,
		role:       models.RoleStaff,
		build: func(req models.StaffRequest, s *models.Staff) (models.AccountFields, error) {
			s.HospitalID = req.HospitalID
			s.Position = req.Position
			s.Department = req.Department
			s.Phone = req.Phone
			return req.AccountFields, nil
		},
	}
}

func (s *PersonnelService[T, R]) Spec() repositories.QuerySpec {
	return s.repository.Spec()
}

func (s *PersonnelService[T, R]) List(ctx context.Context, q repositories.ListQuery) ([]T, pagination.Meta, error) {
	rows, total, err := s.repository.List(ctx, q)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return rows, q.Params.Meta(total), nil
}

func (s *PersonnelService[T, R]) Get(ctx context.Context, id string) (*T, error) {
	return s.repository.Get(ctx, id)
}

// Create registers the account with a hashed password and the profile in one transaction.
func (s *PersonnelService[T, R]) Create(ctx context.Context, req *R) (*T, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}
	var profile T
	account, err := s.build(*req, &profile)
	if err != nil {
		return nil, err
	}
	if err := validation.Validate(account.Password, utils.PasswordRule); err != nil {
		return nil, invalid(validation.Errors{"password": err})
	}
	if err := s.refs.Require(ctx, &models.Hospital{}, "hospitalId", account.HospitalID); err != nil {
		return nil, err
	}
	if exists, err := s.users.EmailExists(ctx, account.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: email %s is taken", models.ErrConflict, account.Email)
	}

	hash, err := utils.HashPassword(account.Password)
	if err != nil {
		return nil, err
	}
	roleID, err := s.builtInRoleID(ctx)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        account.Email,
		Name:         account.Name,
		PasswordHash: hash,
		Role:         s.role,
		RoleID:       roleID,
		HospitalID:   models.StringPtr(account.HospitalID),
		IsActive:     true,
	}
	if err := s.repository.CreateWithUser(ctx, user, &profile); err != nil {
		return nil, err
	}
	return s.repository.Get(ctx, models.StringValue(idOf(&profile)))
}

// Update changes the profile and the account; the password only when a new one is given.
func (s *PersonnelService[T, R]) Update(ctx context.Context, id string, req *R) (*T, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	existing, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := *existing
	account, err := s.build(*req, &profile)
	if err != nil {
		return nil, err
	}
	if err := s.refs.Require(ctx, &models.Hospital{}, "hospitalId", account.HospitalID); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.users.DB(ctx).First(&user, "id = ?", userOf(&profile)).Error; err != nil {
		return nil, err
	}
	if user.Email != account.Email {
		if exists, err := s.users.EmailExists(ctx, account.Email); err != nil {
			return nil, err
		} else if exists {
			return nil, fmt.Errorf("%w: email %s is taken", models.ErrConflict, account.Email)
		}
		s.users.InvalidateUser(ctx, user.Email)
	}
	user.Email = account.Email
	user.Name = account.Name
	user.HospitalID = models.StringPtr(account.HospitalID)
	if account.Password != "" {
		if err := validation.Validate(account.Password, utils.PasswordRule); err != nil {
			return nil, invalid(validation.Errors{"password": err})
		}
		if user.PasswordHash, err = utils.HashPassword(account.Password); err != nil {
			return nil, err
		}
	}
	if err := s.repository.UpdateWithUser(ctx, &user, &profile); err != nil {
		return nil, err
	}
	return s.repository.Get(ctx, id)
}

func (s *PersonnelService[T, R]) Delete(ctx context.Context, id string) error {
	return s.repository.DeleteWithUser(ctx, id)
}

func (s *PersonnelService[T, R]) builtInRoleID(ctx context.Context) (*string, error) {
	var role models.Role
	if err := s.users.DB(ctx).Where("name = ?", s.role).First(&role).Error; err != nil {
		return nil, fmt.Errorf("load role %s: %w", s.role, err)
	}
	return &role.ID, nil
}

func idOf(entity interface{}) *string {
	if e, ok := entity.(models.Entity); ok {
		id := e.GetID()
		return &id
	}
	return nil
}

func userOf(entity interface{}) string {
	switch p := entity.(type) {
	case *models.Doctor:
		return p.UserID
	case *models.Staff:
		return p.UserID
	}
	return ""
}

type createValidatable interface {
	ValidateCreate() error
}

func validateCreate(v interface{}) error {
	if c, ok := v.(createValidatable); ok {
		if err := c.ValidateCreate(); err != nil {
			return invalid(err)
		}
		return nil
	}
	return validate(v)
}
