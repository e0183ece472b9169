package services

import (
	"context"
	"errors"
	"fmt"

	"HospitalMS/models"
	"HospitalMS/pagination"
	"HospitalMS/repositories"
	"HospitalMS/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
)

// Session is what a successful login or refresh returns.
type Session struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user"`
}

type AuthService struct {
	users      *repositories.UserRepository
	tokens     *utils.TokenMaker
	resetCodes *utils.ResetCodeStore
	mailer     utils.Mailer
	log        zerolog.Logger
}

func NewAuthService(users *repositories.UserRepository, tokens *utils.TokenMaker, resetCodes *utils.ResetCodeStore, mailer utils.Mailer, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, resetCodes: resetCodes, mailer: mailer, log: log}
}

// Tokens exposes the token maker for the auth middleware.
func (s *AuthService) Tokens() *utils.TokenMaker {
	return s.tokens
}

// Login checks the bcrypt hash and issues a token pair.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return nil, models.ErrUnauthorized
	}
	return s.issue(user)
}

// Refresh exchanges a refresh token for a new pair, re-reading the account so
// deactivated users cannot refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.tokens.ValidateToken(refreshToken, utils.TokenKindRefresh)
	if err != nil {
		return nil, models.ErrUnauthorized
	}
	user, err := s.users.Get(ctx, claims.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, models.ErrUnauthorized
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	access, refresh, err := s.tokens.GenerateTokens(user.Principal())
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Me returns the account of the caller with its role grants.
func (s *AuthService) Me(ctx context.Context, p models.Principal) (*models.User, []string, error) {
	user, err := s.users.Get(ctx, p.UserID)
	if err != nil {
		return nil, nil, err
	}
	role, err := s.users.RoleForPrincipal(ctx, user.Principal())
	if errors.Is(err, models.ErrNotFound) {
		return user, []string{}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return user, role.PermissionNames(), nil
}

// SendResetCode mails a six digit code. Unknown emails succeed silently.
func (s *AuthService) SendResetCode(ctx context.Context, email string) error {
	if err := validation.Validate(email, validation.Required); err != nil {
		return invalid(validation.Errors{"email": err})
	}
	if exists, err := s.users.EmailExists(ctx, email); err != nil {
		return err
	} else if !exists {
		s.log.Info().Str("email", email).Msg("reset code requested for unknown email")
		return nil
	}
	code := utils.GenerateResetCode()
	if err := s.resetCodes.Save(ctx, email, code); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}
	if err := s.mailer.SendResetCode(email, code); err != nil {
		return fmt.Errorf("send reset code: %w", err)
	}
	return nil
}

// ResetPassword consumes the code and stores the new password.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return invalid(err)
	}
	if err := validation.Validate(req.Password, utils.PasswordRule); err != nil {
		return invalid(validation.Errors{"password": err})
	}
	if err := s.resetCodes.Consume(ctx, req.Email, req.Code); err != nil {
		if errors.Is(err, utils.ErrInvalidResetCode) {
			return invalid(validation.Errors{"code": err})
		}
		return err
	}
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user, hash)
}

// UserService is the admin view of accounts.
type UserService struct {
	users *repositories.UserRepository
	refs  *References
}

func NewUserService(users *repositories.UserRepository, refs *References) *UserService {
	return &UserService{users: users, refs: refs}
}

func (s *UserService) Spec() repositories.QuerySpec {
	return s.users.Spec()
}

func (s *UserService) List(ctx context.Context, q repositories.ListQuery) ([]models.User, pagination.Meta, error) {
	rows, total, err := s.users.List(ctx, q)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return rows, q.Params.Meta(total), nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.users.Get(ctx, id)
}

func (s *UserService) Create(ctx context.Context, req *models.UserRequest) (*models.User, error) {
	if err := req.ValidateCreate(); err != nil {
		return nil, invalid(err)
	}
	if err := validation.Validate(req.Password, utils.PasswordRule); err != nil {
		return nil, invalid(validation.Errors{"password": err})
	}
	if err := s.checkRefs(ctx, req); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
		RoleID:       models.StringPtr(req.RoleID),
		HospitalID:   models.StringPtr(req.HospitalID),
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if req.IsActive != nil && !*req.IsActive {
		user.IsActive = false
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, req *models.UserRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.checkRefs(ctx, req); err != nil {
		return nil, err
	}
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previousEmail := user.Email
	user.Email = req.Email
	user.Name = req.Name
	user.Role = req.Role
	user.RoleID = models.StringPtr(req.RoleID)
	user.HospitalID = models.StringPtr(req.HospitalID)
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != "" {
		if err := validation.Validate(req.Password, utils.PasswordRule); err != nil {
			return nil, invalid(validation.Errors{"password": err})
		}
		if user.PasswordHash, err = utils.HashPassword(req.Password); err != nil {
			return nil, err
		}
	}
	user.AssignedRole = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.users.InvalidateUser(ctx, previousEmail)
	s.users.InvalidateUser(ctx, user.Email)
	return s.users.Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.users.InvalidateUser(ctx, user.Email)
	return nil
}

func (s *UserService) checkRefs(ctx context.Context, req *models.UserRequest) error {
	if err := s.refs.Require(ctx, &models.Role{}, "roleId", req.RoleID); err != nil {
		return err
	}
	return s.refs.Require(ctx, &models.Hospital{}, "hospitalId", req.HospitalID)
}

// Roles

func (s *UserService) ListRoles(ctx context.Context, q repositories.ListQuery) ([]models.Role, pagination.Meta, error) {
	rows, total, err := s.users.Roles().List(ctx, q)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return rows, q.Params.Meta(total), nil
}

func (s *UserService) CreateRole(ctx context.Context, req *models.RoleRequest) (*models.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	role := &models.Role{Name: req.Name, Description: req.Description}
	if err := s.users.SaveRole(ctx, role, req.Permissions); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *UserService) UpdateRole(ctx context.Context, id string, req *models.RoleRequest) (*models.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	role, err := s.users.Roles().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.IsSystem && role.Name != req.Name {
		return nil, fmt.Errorf("%w: system roles cannot be renamed", models.ErrConflict)
	}
	role.Name = req.Name
	role.Description = req.Description
	role.Permissions = nil
	if err := s.users.SaveRole(ctx, role, req.Permissions); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *UserService) DeleteRole(ctx context.Context, id string) error {
	return s.users.DeleteRole(ctx, id)
}

func (s *UserService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	return s.users.ListPermissions(ctx)
}
