// Package users manages accounts, their dependent profiles, and role
// assignments. A user row owns at most one profile and any number of roles;
// deleting the user removes all three.
package users

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/gcmn-library/backend/internal/records"
	"github.com/gcmn-library/backend/internal/store"
	pkgerrors "github.com/gcmn-library/backend/pkg/errors"
	"github.com/gcmn-library/backend/pkg/logger"
)

const defaultFullName = "User"

// CreateUserInput carries the account fields plus the profile fields that
// are materialized alongside the account.
type CreateUserInput struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	RollNumber   string `json:"rollNumber"`
	Department   string `json:"department"`
	StudentClass string `json:"studentClass"`
}

type Service struct {
	users    *records.Repository
	profiles *records.Repository
	roles    *records.Repository
	validate *validator.Validate
	logg     *logger.Logger
}

func NewService(st *store.Client, logg *logger.Logger) *Service {
	return &Service{
		users:    records.NewRepository(st, records.Users),
		profiles: records.NewRepository(st, records.Profiles),
		roles:    records.NewRepository(st, records.UserRoles),
		validate: validator.New(),
		logg:     logg,
	}
}

// GetUser fetches one account by id.
func (s *Service) GetUser(ctx context.Context, id string) (records.Record, bool, error) {
	return s.users.Get(ctx, id)
}

// GetUserByEmail fetches one account by exact email.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (records.Record, bool, error) {
	return s.users.GetBy(ctx, s.users.Eq("email", email))
}

// CreateUser inserts the account and its dependent profile. The account is
// authoritative: if the profile insert fails after the account exists, the
// account is returned together with a partial-failure error so the caller
// can retry the profile.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (records.Record, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user")
	}

	user, err := s.users.Create(ctx, records.Record{
		"email":    input.Email,
		"password": input.Password,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeWrite, err, "creating user")
	}

	fullName := input.FullName
	if fullName == "" {
		fullName = defaultFullName
	}

	if _, err := s.profiles.Create(ctx, records.Record{
		"userId":       user["id"],
		"fullName":     fullName,
		"phone":        input.Phone,
		"rollNumber":   input.RollNumber,
		"department":   input.Department,
		"studentClass": input.StudentClass,
	}); err != nil {
		s.logg.Error(ctx, "user created but profile insert failed", err)
		return user, pkgerrors.Wrap(pkgerrors.CodePartialFailure, err, "user created without profile")
	}

	return user, nil
}

// DeleteUser removes the account and its dependent profile and role rows.
// Each delete is attempted regardless of earlier failures and the errors are
// combined.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	var errs error
	if err := s.users.Delete(ctx, id); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := s.profiles.DeleteBy(ctx, s.profiles.Eq("userId", id)); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := s.roles.DeleteBy(ctx, s.roles.Eq("userId", id)); err != nil {
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeWrite, errs, "deleting user")
	}
	return nil
}

// GetProfile fetches the profile owned by the given account.
func (s *Service) GetProfile(ctx context.Context, userID string) (records.Record, bool, error) {
	return s.profiles.GetBy(ctx, s.profiles.Eq("userId", userID))
}

// CreateProfile inserts a standalone profile record.
func (s *Service) CreateProfile(ctx context.Context, profile records.Record) (records.Record, error) {
	return s.profiles.Create(ctx, profile)
}

// UpdateProfile applies the changes to the profile keyed by owning account.
func (s *Service) UpdateProfile(ctx context.Context, userID string, changes records.Record) (records.Record, error) {
	return s.profiles.UpdateBy(ctx, []store.Filter{s.profiles.Eq("userId", userID)}, changes)
}

// GetUserRoles lists every role assigned to the account.
func (s *Service) GetUserRoles(ctx context.Context, userID string) ([]records.Record, error) {
	return s.roles.List(ctx, []store.Filter{s.roles.Eq("userId", userID)})
}

// CreateUserRole assigns a role to the account.
func (s *Service) CreateUserRole(ctx context.Context, userID, role string) (records.Record, error) {
	return s.roles.Create(ctx, records.Record{"userId": userID, "role": role})
}

// HasRole reports whether the account carries the given role.
func (s *Service) HasRole(ctx context.Context, userID, role string) (bool, error) {
	_, found, err := s.roles.GetBy(ctx, s.roles.Eq("userId", userID), s.roles.Eq("role", role))
	return found, err
}
