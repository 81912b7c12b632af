package users

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

	"github.com/gcmn-library/backend/internal/store"
	pkgerrors "github.com/gcmn-library/backend/pkg/errors"
	"github.com/gcmn-library/backend/pkg/logger"
)

func setupUsersTestDB(t *testing.T, withProfiles bool) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS user_roles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`).Error)
	if withProfiles {
		require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  full_name TEXT NOT NULL DEFAULT 'User',
  phone TEXT,
  roll_number TEXT,
  department TEXT,
  student_class TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME
);`).Error)
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewService(store.New(db), logg)
}

func TestCreateUserMaterializesProfile(t *testing.T) {
	svc := setupUsersTestDB(t, true)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "reader@gcmn.edu",
		Password: "hashed",
		FullName: "Ayesha Khan",
		Phone:    "0300-1234567",
	})
	require.NoError(t, err)
	require.NotEmpty(t, user["id"])

	profile, found, err := svc.GetProfile(ctx, user["id"].(string))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Ayesha Khan", profile["fullName"])
	assert.Equal(t, "0300-1234567", profile["phone"])
}

func TestCreateUserDefaultsFullName(t *testing.T) {
	svc := setupUsersTestDB(t, true)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{Email: "anon@gcmn.edu", Password: "h"})
	require.NoError(t, err)

	profile, found, err := svc.GetProfile(ctx, user["id"].(string))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "User", profile["fullName"])
}

func TestCreateUserRejectsInvalidEmail(t *testing.T) {
	svc := setupUsersTestDB(t, true)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "not-an-email", Password: "h"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := setupUsersTestDB(t, true)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{Email: "dup@gcmn.edu", Password: "h"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, CreateUserInput{Email: "dup@gcmn.edu", Password: "h"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeWrite))
}

func TestCreateUserProfileFailureIsPartial(t *testing.T) {
	svc := setupUsersTestDB(t, false)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{Email: "partial@gcmn.edu", Password: "h"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodePartialFailure))
	require.NotNil(t, user, "account must still be returned")

	_, found, err := svc.GetUserByEmail(ctx, "partial@gcmn.edu")
	require.NoError(t, err)
	assert.True(t, found, "account persists despite missing profile")
}

func TestDeleteUserCascades(t *testing.T) {
	svc := setupUsersTestDB(t, true)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{Email: "gone@gcmn.edu", Password: "h", FullName: "G"})
	require.NoError(t, err)
	id := user["id"].(string)

	_, err = svc.CreateUserRole(ctx, id, "moderator")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, id))

	_, found, err := svc.GetUser(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = svc.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)

	roles, err := svc.GetUserRoles(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestHasRole(t *testing.T) {
	svc := setupUsersTestDB(t, true)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{Email: "admin@gcmn.edu", Password: "h"})
	require.NoError(t, err)
	id := user["id"].(string)

	_, err = svc.CreateUserRole(ctx, id, "admin")
	require.NoError(t, err)

	ok, err := svc.HasRole(ctx, id, "admin")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasRole(ctx, id, "moderator")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateProfileByUser(t *testing.T) {
	svc := setupUsersTestDB(t, true)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{Email: "p@gcmn.edu", Password: "h", FullName: "Old"})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user["id"].(string), map[string]any{"fullName": "New", "department": "Science"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated["fullName"])
	assert.Equal(t, "Science", updated["department"])
	assert.NotNil(t, updated["updatedAt"])
}
