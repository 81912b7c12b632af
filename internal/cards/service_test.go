package cards

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gcmn-library/backend/internal/records"
	"github.com/gcmn-library/backend/internal/store"
	"github.com/gcmn-library/backend/pkg/config"
	pkgerrors "github.com/gcmn-library/backend/pkg/errors"
	"github.com/gcmn-library/backend/pkg/logger"
	"github.com/gcmn-library/backend/pkg/metrics"
	"github.com/gcmn-library/backend/pkg/security"
)

func setupCardsTestDB(t *testing.T) (*Service, *store.Client) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS library_card_applications (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  father_name TEXT,
  dob TEXT,
  class TEXT NOT NULL,
  field TEXT NOT NULL,
  roll_no TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT,
  address_street TEXT,
  address_city TEXT,
  address_state TEXT,
  address_zip TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  card_number TEXT NOT NULL,
  student_id TEXT NOT NULL,
  issue_date TEXT NOT NULL,
  valid_through TEXT NOT NULL,
  password TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS library_card_applications_card_number_key
  ON library_card_applications (lower(card_number));`,
		`CREATE UNIQUE INDEX IF NOT EXISTS library_card_applications_email_key
  ON library_card_applications (email);`,
		`CREATE TABLE IF NOT EXISTS students (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  card_id TEXT NOT NULL,
  name TEXT NOT NULL,
  class TEXT,
  field TEXT,
  roll_no TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS students_card_id_key ON students (card_id);`,
		`CREATE TABLE IF NOT EXISTS card_application_events (
  id TEXT PRIMARY KEY,
  application_id TEXT NOT NULL,
  from_status TEXT NOT NULL,
  to_status TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}

	st := store.New(db)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc := NewService(st, testPasswordConfig(), metrics.NewCardMetrics(nil), logg)
	return svc, st
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func testApplication(email string) CreateApplicationInput {
	return CreateApplicationInput{
		FirstName: "Ali",
		LastName:  "Raza",
		Class:     "12th",
		Field:     "Computer Science",
		RollNo:    "45",
		Email:     email,
		Password:  "s3cret-pass",
	}
}

func TestCreateApplicationAllocatesBaseNumber(t *testing.T) {
	svc, _ := setupCardsTestDB(t)
	ctx := context.Background()

	created, err := svc.CreateApplication(ctx, testApplication("ali@gcmn.edu"))
	require.NoError(t, err)

	assert.Equal(t, "CS-45-12", created["cardNumber"])
	assert.Equal(t, StatusPending, created["status"])
	assert.Regexp(t, `^GCMN-\d{6}$`, created["studentId"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, created["issueDate"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, created["validThrough"])
}

func TestCreateApplicationHashesPassword(t *testing.T) {
	svc, _ := setupCardsTestDB(t)

	created, err := svc.CreateApplication(context.Background(), testApplication("hash@gcmn.edu"))
	require.NoError(t, err)

	stored, _ := created["password"].(string)
	require.True(t, strings.HasPrefix(stored, "$argon2id$"))

	ok, err := security.VerifyPassword("s3cret-pass", stored)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateApplicationUnknownFieldFallsBack(t *testing.T) {
	svc, _ := setupCardsTestDB(t)

	input := testApplication("bio@gcmn.edu")
	input.Field = "Biology"
	created, err := svc.CreateApplication(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "XX-45-12", created["cardNumber"])
}

func TestCreateApplicationRejectsDuplicateEmail(t *testing.T) {
	svc, _ := setupCardsTestDB(t)
	ctx := context.Background()

	_, err := svc.CreateApplication(ctx, testApplication("dup@gcmn.edu"))
	require.NoError(t, err)

	_, err = svc.CreateApplication(ctx, testApplication("dup@gcmn.edu"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateApplicationSuffixesOnCollision(t *testing.T) {
	svc, _ := setupCardsTestDB(t)
	ctx := context.Background()

	first, err := svc.CreateApplication(ctx, testApplication("a@gcmn.edu"))
	require.NoError(t, err)
	second, err := svc.CreateApplication(ctx, testApplication("b@gcmn.edu"))
	require.NoError(t, err)
	third, err := svc.CreateApplication(ctx, testApplication("c@gcmn.edu"))
	require.NoError(t, err)

	assert.Equal(t, "CS-45-12", first["cardNumber"])
	assert.Equal(t, "CS-45-12-1", second["cardNumber"])
	assert.Equal(t, "CS-45-12-2", third["cardNumber"])
}

func TestCreateApplicationExhaustedProbesIsValidationError(t *testing.T) {
	svc, st := setupCardsTestDB(t)
	ctx := context.Background()

	apps := records.NewRepository(st, records.LibraryCardApplications)
	base := BaseCardNumber("Computer Science", "45", "12th")
	for counter := 0; counter < maxAllocationProbes; counter++ {
		number := base
		if counter > 0 {
			number = Suffixed(base, counter)
		}
		_, err := apps.Create(ctx, records.Record{
			"firstName":    "Taken",
			"lastName":     fmt.Sprintf("Holder%d", counter),
			"class":        "12th",
			"field":        "Computer Science",
			"rollNo":       "45",
			"email":        fmt.Sprintf("holder%d@gcmn.edu", counter),
			"status":       StatusPending,
			"cardNumber":   number,
			"studentId":    fmt.Sprintf("GCMN-%06d", counter),
			"issueDate":    "2024-01-01",
			"validThrough": "2025-01-01",
			"password":     "x",
		})
		require.NoError(t, err)
	}

	_, err := svc.CreateApplication(ctx, testApplication("late@gcmn.edu"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.NotContains(t, err.Error(), "contention")
}

func TestCreateApplicationRejectsMissingFields(t *testing.T) {
	svc, _ := setupCardsTestDB(t)

	_, err := svc.CreateApplication(context.Background(), CreateApplicationInput{Email: "x@gcmn.edu"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetByCardNumberIsCaseInsensitive(t *testing.T) {
	svc, _ := setupCardsTestDB(t)
	ctx := context.Background()

	_, err := svc.CreateApplication(ctx, testApplication("ci@gcmn.edu"))
	require.NoError(t, err)

	found, ok, err := svc.GetByCardNumber(ctx, "cs-45-12")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ci@gcmn.edu", found["email"])
}

func TestApproveMaterializesStudent(t *testing.T) {
	svc, st := setupCardsTestDB(t)
	ctx := context.Background()

	created, err := svc.CreateApplication(ctx, testApplication("approve@gcmn.edu"))
	require.NoError(t, err)
	id := created["id"].(string)

	updated, err := svc.SetStatus(ctx, id, "Approved")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, updated["status"])
	assert.NotNil(t, updated["updatedAt"])

	students := records.NewRepository(st, records.Students)
	student, found, err := students.GetBy(ctx, students.Eq("cardId", "CS-45-12"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Ali Raza", student["name"])
	assert.Equal(t, "12th", student["class"])
	assert.Equal(t, id, student["userId"], "falls back to application id when no account is linked")
}

func TestApproveUsesLinkedAccount(t *testing.T) {
	svc, st := setupCardsTestDB(t)
	ctx := context.Background()

	input := testApplication("linked@gcmn.edu")
	input.UserID = "user-77"
	created, err := svc.CreateApplication(ctx, input)
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, created["id"].(string), StatusApproved)
	require.NoError(t, err)

	students := records.NewRepository(st, records.Students)
	student, found, err := students.GetBy(ctx, students.Eq("cardId", "CS-45-12"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "user-77", student["userId"])
}

func TestApproveTwiceIsIdempotent(t *testing.T) {
	svc, st := setupCardsTestDB(t)
	ctx := context.Background()

	created, err := svc.CreateApplication(ctx, testApplication("twice@gcmn.edu"))
	require.NoError(t, err)
	id := created["id"].(string)

	_, err = svc.SetStatus(ctx, id, StatusApproved)
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, id, StatusApproved)
	require.NoError(t, err)

	students := records.NewRepository(st, records.Students)
	rows, err := students.List(ctx, []store.Filter{students.Eq("cardId", "CS-45-12")})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRejectDoesNotMaterialize(t *testing.T) {
	svc, st := setupCardsTestDB(t)
	ctx := context.Background()

	created, err := svc.CreateApplication(ctx, testApplication("reject@gcmn.edu"))
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, created["id"].(string), StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, updated["status"])

	students := records.NewRepository(st, records.Students)
	rows, err := students.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSetStatusMissingApplication(t *testing.T) {
	svc, _ := setupCardsTestDB(t)

	_, err := svc.SetStatus(context.Background(), "missing", StatusApproved)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestSetStatusRecordsAuditTrail(t *testing.T) {
	svc, _ := setupCardsTestDB(t)
	ctx := context.Background()

	created, err := svc.CreateApplication(ctx, testApplication("audit@gcmn.edu"))
	require.NoError(t, err)
	id := created["id"].(string)

	_, err = svc.SetStatus(ctx, id, StatusApproved)
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, id, StatusRejected)
	require.NoError(t, err)

	events, err := svc.ListEvents(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 2)

	transitions := make(map[string]bool, len(events))
	for _, ev := range events {
		transitions[fmt.Sprintf("%v->%v", ev["fromStatus"], ev["toStatus"])] = true
	}
	assert.True(t, transitions["pending->approved"])
	assert.True(t, transitions["approved->rejected"])
}

func TestListApplicationsByUser(t *testing.T) {
	svc, _ := setupCardsTestDB(t)
	ctx := context.Background()

	mine := testApplication("mine@gcmn.edu")
	mine.UserID = "user-1"
	_, err := svc.CreateApplication(ctx, mine)
	require.NoError(t, err)

	other := testApplication("other@gcmn.edu")
	other.UserID = "user-2"
	other.RollNo = "46"
	_, err = svc.CreateApplication(ctx, other)
	require.NoError(t, err)

	apps, err := svc.ListApplicationsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "mine@gcmn.edu", apps[0]["email"])
}

func TestDeleteApplicationKeepsStudent(t *testing.T) {
	svc, st := setupCardsTestDB(t)
	ctx := context.Background()

	created, err := svc.CreateApplication(ctx, testApplication("del@gcmn.edu"))
	require.NoError(t, err)
	id := created["id"].(string)

	_, err = svc.SetStatus(ctx, id, StatusApproved)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteApplication(ctx, id))

	_, found, err := svc.GetApplication(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)

	students := records.NewRepository(st, records.Students)
	_, found, err = students.GetBy(ctx, students.Eq("cardId", "CS-45-12"))
	require.NoError(t, err)
	assert.True(t, found)
}
