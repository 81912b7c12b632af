package store

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStoreTestDB(t *testing.T) *Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`
	notifications := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  pin INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`
	require.NoError(t, db.Exec(users).Error)
	require.NoError(t, db.Exec(notifications).Error)

	return New(db)
}

func TestInsertAndSelectOne(t *testing.T) {
	client := setupStoreTestDB(t)
	ctx := context.Background()

	require.NoError(t, client.Insert(ctx, "users", Row{
		"id":       "u-1",
		"email":    "reader@gcmn.edu",
		"password": "hash",
	}))

	row, found, err := client.SelectOne(ctx, "users", nil, []Filter{Eq("id", "u-1")})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "reader@gcmn.edu", row["email"])
	assert.NotNil(t, row["created_at"], "store default should fill created_at")
}

func TestSelectOneAbsent(t *testing.T) {
	client := setupStoreTestDB(t)

	row, found, err := client.SelectOne(context.Background(), "users", nil, []Filter{Eq("id", "missing")})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, row)
}

func TestSelectColumnsSubset(t *testing.T) {
	client := setupStoreTestDB(t)
	ctx := context.Background()

	require.NoError(t, client.Insert(ctx, "users", Row{"id": "u-1", "email": "a@gcmn.edu", "password": "h"}))

	row, found, err := client.SelectOne(ctx, "users", []string{"id", "email"}, []Filter{Eq("id", "u-1")})
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, row, "email")
	assert.NotContains(t, row, "password")
}

func TestCaseInsensitiveFilter(t *testing.T) {
	client := setupStoreTestDB(t)
	ctx := context.Background()

	require.NoError(t, client.Insert(ctx, "users", Row{"id": "u-1", "email": "Mixed@GCMN.edu", "password": "h"}))

	_, found, err := client.SelectOne(ctx, "users", nil, []Filter{ILike("email", "mixed@gcmn.edu")})
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSelectOrdering(t *testing.T) {
	client := setupStoreTestDB(t)
	ctx := context.Background()

	require.NoError(t, client.Insert(ctx, "notifications", Row{"id": "n-1", "title": "old", "message": "m", "pin": false, "created_at": "2024-01-01 00:00:00"}))
	require.NoError(t, client.Insert(ctx, "notifications", Row{"id": "n-2", "title": "pinned", "message": "m", "pin": true, "created_at": "2024-01-02 00:00:00"}))
	require.NoError(t, client.Insert(ctx, "notifications", Row{"id": "n-3", "title": "new", "message": "m", "pin": false, "created_at": "2024-01-03 00:00:00"}))

	rows, err := client.Select(ctx, "notifications", []string{"id"}, nil, []Order{
		{Column: "pin", Descending: true},
		{Column: "created_at", Descending: true},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "n-2", rows[0]["id"])
	assert.Equal(t, "n-3", rows[1]["id"])
	assert.Equal(t, "n-1", rows[2]["id"])
}

func TestUpdateCountsRows(t *testing.T) {
	client := setupStoreTestDB(t)
	ctx := context.Background()

	require.NoError(t, client.Insert(ctx, "users", Row{"id": "u-1", "email": "a@gcmn.edu", "password": "h"}))

	affected, err := client.Update(ctx, "users", []Filter{Eq("id", "u-1")}, Row{"password": "h2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = client.Update(ctx, "users", []Filter{Eq("id", "missing")}, Row{"password": "h3"})
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestUpdateRefusesUnfiltered(t *testing.T) {
	client := setupStoreTestDB(t)

	_, err := client.Update(context.Background(), "users", nil, Row{"password": "oops"})
	require.Error(t, err)
}

func TestDeleteIsIdempotent(t *testing.T) {
	client := setupStoreTestDB(t)
	ctx := context.Background()

	require.NoError(t, client.Insert(ctx, "users", Row{"id": "u-1", "email": "a@gcmn.edu", "password": "h"}))
	require.NoError(t, client.Delete(ctx, "users", []Filter{Eq("id", "u-1")}))
	require.NoError(t, client.Delete(ctx, "users", []Filter{Eq("id", "u-1")}))

	_, found, err := client.SelectOne(ctx, "users", nil, []Filter{Eq("id", "u-1")})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInsertUniqueViolation(t *testing.T) {
	client := setupStoreTestDB(t)
	ctx := context.Background()

	require.NoError(t, client.Insert(ctx, "users", Row{"id": "u-1", "email": "dup@gcmn.edu", "password": "h"}))
	err := client.Insert(ctx, "users", Row{"id": "u-2", "email": "dup@gcmn.edu", "password": "h"})
	require.Error(t, err)
}

func TestInitProbesUsersTable(t *testing.T) {
	client := setupStoreTestDB(t)
	require.NoError(t, client.Init(context.Background()))
}
