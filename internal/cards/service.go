package cards

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gcmn-library/backend/internal/records"
	"github.com/gcmn-library/backend/internal/store"
	"github.com/gcmn-library/backend/pkg/config"
	"github.com/gcmn-library/backend/pkg/db"
	pkgerrors "github.com/gcmn-library/backend/pkg/errors"
	"github.com/gcmn-library/backend/pkg/logger"
	"github.com/gcmn-library/backend/pkg/metrics"
	"github.com/gcmn-library/backend/pkg/security"
)

// Application statuses. Transitions are unrestricted; every one is audited.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	cardNumberConstraint = "library_card_applications_card_number_key"
	emailConstraint      = "library_card_applications_email_key"
	studentConstraint    = "students_card_id_key"

	// maxAllocationProbes bounds the collision probe loop; in practice a
	// handful of suffixes suffices.
	maxAllocationProbes = 50

	// maxInsertAttempts bounds retries when a concurrent applicant claims
	// the probed number between the check and the insert.
	maxInsertAttempts = 3
)

// CreateApplicationInput carries the applicant-supplied fields. UserID is
// optional; applicants may apply before registering an account.
type CreateApplicationInput struct {
	UserID        string `json:"userId"`
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	FatherName    string `json:"fatherName"`
	DOB           string `json:"dob"`
	Class         string `json:"class" validate:"required"`
	Field         string `json:"field" validate:"required"`
	RollNo        string `json:"rollNo" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone"`
	AddressStreet string `json:"addressStreet"`
	AddressCity   string `json:"addressCity"`
	AddressState  string `json:"addressState"`
	AddressZip    string `json:"addressZip"`
	Password      string `json:"password" validate:"required"`
}

type Service struct {
	apps        *records.Repository
	students    *records.Repository
	events      *records.Repository
	metrics     *metrics.CardMetrics
	validate    *validator.Validate
	logg        *logger.Logger
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

func NewService(st *store.Client, passwordCfg config.PasswordConfig, cardMetrics *metrics.CardMetrics, logg *logger.Logger) *Service {
	return &Service{
		apps:        records.NewRepository(st, records.LibraryCardApplications),
		students:    records.NewRepository(st, records.Students),
		events:      records.NewRepository(st, records.CardApplicationEvents),
		metrics:     cardMetrics,
		validate:    validator.New(),
		logg:        logg,
		passwordCfg: passwordCfg,
		now:         time.Now,
	}
}

// GetApplication fetches one application by id.
func (s *Service) GetApplication(ctx context.Context, id string) (records.Record, bool, error) {
	return s.apps.Get(ctx, id)
}

// ListApplications returns every application.
func (s *Service) ListApplications(ctx context.Context) ([]records.Record, error) {
	return s.apps.List(ctx, nil)
}

// ListApplicationsByUser returns the applications filed by one account.
func (s *Service) ListApplicationsByUser(ctx context.Context, userID string) ([]records.Record, error) {
	return s.apps.List(ctx, []store.Filter{s.apps.Eq("userId", userID)})
}

// GetByCardNumber fetches the application holding the given card number,
// matching case-insensitively.
func (s *Service) GetByCardNumber(ctx context.Context, cardNumber string) (records.Record, bool, error) {
	return s.apps.GetBy(ctx, s.apps.ILike("cardNumber", cardNumber))
}

// CreateApplication validates the input, allocates a unique card number, and
// inserts the application in pending status. The store's unique indexes are
// the authoritative guard; pre-checks only exist to pick a friendlier
// suffixed number before insert.
func (s *Service) CreateApplication(ctx context.Context, input CreateApplicationInput) (records.Record, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid application")
	}

	_, exists, err := s.apps.GetBy(ctx, s.apps.Eq("email", input.Email))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a library card application with this email already exists")
	}

	hashed, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing applicant password")
	}

	issueDate, validThrough := IssueDates(s.now())

	var lastErr error
	for attempt := 0; attempt < maxInsertAttempts; attempt++ {
		cardNumber, suffixed, err := s.allocateCardNumber(ctx, input)
		if err != nil {
			return nil, err
		}

		rec := records.Record{
			"firstName":     input.FirstName,
			"lastName":      input.LastName,
			"fatherName":    input.FatherName,
			"dob":           input.DOB,
			"class":         input.Class,
			"field":         input.Field,
			"rollNo":        input.RollNo,
			"email":         input.Email,
			"phone":         input.Phone,
			"addressStreet": input.AddressStreet,
			"addressCity":   input.AddressCity,
			"addressState":  input.AddressState,
			"addressZip":    input.AddressZip,
			"password":      hashed,
			"status":        StatusPending,
			"cardNumber":    cardNumber,
			"studentId":     NewStudentID(),
			"issueDate":     issueDate,
			"validThrough":  validThrough,
		}
		if input.UserID != "" {
			rec["userId"] = input.UserID
		}

		created, err := s.apps.Create(ctx, rec)
		if err == nil {
			outcome := "base"
			if suffixed {
				outcome = "suffixed"
			}
			s.metrics.IncAllocation(outcome)
			appCtx := s.logg.WithCardNumber(s.logg.WithApplicationID(ctx, created["id"].(string)), cardNumber)
			s.logg.Info(appCtx, "library card application created")
			return created, nil
		}
		if db.IsUniqueViolation(err, emailConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "a library card application with this email already exists")
		}
		if db.IsUniqueViolation(err, cardNumberConstraint) {
			lastErr = err
			continue
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeWrite, err, "creating application")
	}

	return nil, pkgerrors.Wrap(pkgerrors.CodeWrite, lastErr, "card number contention not resolved")
}

// allocateCardNumber probes for the first free number in the base, base-1,
// base-2, ... sequence.
func (s *Service) allocateCardNumber(ctx context.Context, input CreateApplicationInput) (string, bool, error) {
	base := BaseCardNumber(input.Field, input.RollNo, input.Class)
	candidate := base

	for counter := 1; counter <= maxAllocationProbes; counter++ {
		s.metrics.IncAllocationProbe()
		_, taken, err := s.apps.GetBy(ctx, s.apps.ILike("cardNumber", candidate))
		if err != nil {
			return "", false, err
		}
		if !taken {
			return candidate, candidate != base, nil
		}
		candidate = Suffixed(base, counter)
	}

	return "", false, pkgerrors.New(pkgerrors.CodeValidation, "no free card number for "+base)
}

// SetStatus moves the application to the given status, records the
// transition in the audit table, and on approval materializes the student
// record. Re-transitions are permitted; each one is audited.
func (s *Service) SetStatus(ctx context.Context, id, status string) (records.Record, error) {
	normalized := strings.ToLower(strings.TrimSpace(status))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status is required")
	}

	app, found, err := s.apps.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
	}
	fromStatus := stringField(app, "status")

	updated, err := s.apps.Update(ctx, id, records.Record{"status": normalized})
	if err != nil {
		return nil, err
	}

	if _, err := s.events.Create(ctx, records.Record{
		"applicationId": id,
		"fromStatus":    fromStatus,
		"toStatus":      normalized,
	}); err != nil {
		s.logg.Error(s.logg.WithApplicationID(ctx, id), "recording status transition failed", err)
	}
	s.metrics.IncTransition(normalized)

	if normalized == StatusApproved {
		if err := s.materializeStudent(ctx, updated); err != nil {
			return updated, pkgerrors.Wrap(pkgerrors.CodePartialFailure, err, "application approved but student record failed")
		}
	}

	return updated, nil
}

// materializeStudent ensures a student row exists for an approved
// application. Approving twice is a no-op; a concurrent approval losing the
// insert race is treated as already materialized.
func (s *Service) materializeStudent(ctx context.Context, app records.Record) error {
	cardID := stringField(app, "cardNumber")
	if cardID == "" {
		s.metrics.IncMaterialization("failed")
		return pkgerrors.New(pkgerrors.CodeInternal, "approved application has no card number")
	}

	_, exists, err := s.students.GetBy(ctx, s.students.Eq("cardId", cardID))
	if err != nil {
		s.metrics.IncMaterialization("failed")
		return err
	}
	if exists {
		s.metrics.IncMaterialization("existing")
		return nil
	}

	userID := stringField(app, "userId")
	if userID == "" {
		userID = stringField(app, "id")
	}

	_, err = s.students.Create(ctx, records.Record{
		"userId": userID,
		"cardId": cardID,
		"name":   strings.TrimSpace(stringField(app, "firstName") + " " + stringField(app, "lastName")),
		"class":  app["class"],
		"field":  app["field"],
		"rollNo": app["rollNo"],
	})
	if err != nil {
		if db.IsUniqueViolation(err, studentConstraint) {
			s.metrics.IncMaterialization("existing")
			return nil
		}
		s.metrics.IncMaterialization("failed")
		return err
	}

	s.metrics.IncMaterialization("created")
	s.logg.Info(s.logg.WithCardNumber(ctx, cardID), "student record materialized")
	return nil
}

// DeleteApplication removes the application. Student records materialized
// from it are kept.
func (s *Service) DeleteApplication(ctx context.Context, id string) error {
	return s.apps.Delete(ctx, id)
}

// ListEvents returns the audit trail for one application, oldest first.
func (s *Service) ListEvents(ctx context.Context, applicationID string) ([]records.Record, error) {
	return s.events.List(ctx,
		[]store.Filter{s.events.Eq("applicationId", applicationID)},
		s.events.OrderBy("createdAt", false),
	)
}

func stringField(rec records.Record, field string) string {
	v, _ := rec[field].(string)
	return v
}
