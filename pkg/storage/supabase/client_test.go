package supabase

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gcmn-library/backend/pkg/config"
	pkgerrors "github.com/gcmn-library/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.StorageConfig{
		URL:            srv.URL,
		ServiceKey:     "test-key",
		RequestTimeout: 5 * time.Second,
	}, nil)
	require.NoError(t, err)
	return client, srv
}

func TestNewClientRequiresSecret(t *testing.T) {
	_, err := NewClient(config.StorageConfig{URL: "https://example.supabase.co"}, nil)
	require.Error(t, err)

	_, err = NewClient(config.StorageConfig{ServiceKey: "key"}, nil)
	require.Error(t, err)
}

func TestUploadReturnsPublicURL(t *testing.T) {
	var gotAuth, gotContentType, gotPath string
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "fake-png", string(body))
		w.WriteHeader(http.StatusOK)
	}))

	url, err := client.Upload(context.Background(), "covers", "my photo!.png", []byte("fake-png"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "image/png", gotContentType)
	assert.True(t, strings.HasPrefix(gotPath, "/storage/v1/object/covers/"))
	assert.True(t, strings.HasPrefix(url, srv.URL+"/storage/v1/object/public/covers/"))
	assert.True(t, strings.HasSuffix(url, "my_photo_.png"))
}

func TestUploadEmptyBuffer(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty buffer")
	}))

	_, err := client.Upload(context.Background(), "covers", "x.png", nil, "image/png")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUpload))
}

func TestUploadServerRejection(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bucket quota exceeded", http.StatusForbidden)
	}))

	_, err := client.Upload(context.Background(), "covers", "x.png", []byte("data"), "image/png")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUpload))
	assert.Contains(t, err.Error(), "failed to upload file")
}

func TestDeleteParsesPublicURL(t *testing.T) {
	var gotMethod, gotPath string
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))

	url := srv.URL + "/storage/v1/object/public/covers/123-456-img.png"
	require.NoError(t, client.Delete(context.Background(), url))

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/storage/v1/object/covers/123-456-img.png", gotPath)
}

func TestDeleteIgnoresForeignShapes(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for unparseable URL")
	}))

	require.NoError(t, client.Delete(context.Background(), ""))
	require.NoError(t, client.Delete(context.Background(), "covers/img.png"))
	require.NoError(t, client.Delete(context.Background(), "https://cdn.example.com/other/path.png"))
}

func TestDeleteMissingObjectIsIdempotent(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	url := srv.URL + "/storage/v1/object/public/covers/gone.png"
	require.NoError(t, client.Delete(context.Background(), url))
}

func TestObjectNameSanitizes(t *testing.T) {
	name := ObjectName("weird name@#$.pdf")
	assert.Regexp(t, regexp.MustCompile(`^\d+-\d+-weird_name___\.pdf$`), name)

	fallback := ObjectName("")
	assert.Regexp(t, regexp.MustCompile(`^\d+-\d+-file$`), fallback)
}

func TestParsePublicURL(t *testing.T) {
	bucket, object, ok := ParsePublicURL("https://x.supabase.co/storage/v1/object/public/covers/a/b.png")
	require.True(t, ok)
	assert.Equal(t, "covers", bucket)
	assert.Equal(t, "a/b.png", object)

	_, _, ok = ParsePublicURL("https://x.supabase.co/storage/v1/object/covers/a.png")
	assert.False(t, ok)

	_, _, ok = ParsePublicURL("ftp://x/storage/v1/object/public/covers/a.png")
	assert.False(t, ok)
}
