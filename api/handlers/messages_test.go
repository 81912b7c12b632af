package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gcmn-library/backend/internal/messages"
	"github.com/gcmn-library/backend/internal/store"
	"github.com/gcmn-library/backend/pkg/logger"
)

func setupMessagesRouter(t *testing.T) http.Handler {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS contact_messages (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  subject TEXT,
  message TEXT NOT NULL,
  is_seen INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`).Error)

	svc := messages.NewService(store.New(db))
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	r := chi.NewRouter()
	r.Route("/contact-messages", func(r chi.Router) {
		r.Get("/", ListContactMessages(svc, logg))
		r.Post("/", CreateContactMessage(svc, logg))
		r.Get("/{messageId}", GetContactMessage(svc, logg))
		r.Patch("/{messageId}/seen", SetContactMessageSeen(svc, logg))
		r.Delete("/{messageId}", DeleteContactMessage(svc, logg))
	})
	return r
}

func TestContactMessageFlow(t *testing.T) {
	router := setupMessagesRouter(t)

	body := `{"name":"Visitor","email":"visitor@example.com","subject":"Hours","message":"Open on Sunday?"}`
	req := httptest.NewRequest(http.MethodPost, "/contact-messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	id, _ := created.Data["id"].(string)
	require.NotEmpty(t, id)
	assert.EqualValues(t, 0, created.Data["isSeen"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contact-messages/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPatch, "/contact-messages/"+id+"/seen", strings.NewReader(`{"isSeen":true}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var seen struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&seen))
	assert.EqualValues(t, 1, seen.Data["isSeen"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/contact-messages/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contact-messages", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var all struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&all))
	assert.Empty(t, all.Data)
}

func TestGetContactMessageNotFound(t *testing.T) {
	router := setupMessagesRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contact-messages/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestCreateContactMessageIgnoresClientID(t *testing.T) {
	router := setupMessagesRouter(t)

	body := `{"id":"client-chosen","name":"V","email":"v@example.com","message":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/contact-messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NotEqual(t, "client-chosen", created.Data["id"])
	assert.NotEmpty(t, created.Data["id"])
}

func TestCreateContactMessageRejectsEmptyBody(t *testing.T) {
	router := setupMessagesRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/contact-messages", strings.NewReader(``))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
