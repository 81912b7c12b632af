package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gcmn-library/backend/pkg/config"
	pkgerrors "github.com/gcmn-library/backend/pkg/errors"
	"github.com/gcmn-library/backend/pkg/logger"
)

const (
	objectPath     = "/storage/v1/object"
	publicURLToken = "/storage/v1/object/public/"
	pingTimeout    = 5 * time.Second
)

var unsafeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// Client uploads and deletes binary assets against the hosted storage API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	serviceKey string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient builds a storage client from configuration. The service key is
// validated at boot; there is no fallback secret.
func NewClient(cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("storage URL is required")
	}
	if cfg.ServiceKey == "" {
		return nil, errors.New("storage service key is required")
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
	}

	if logg != nil {
		logg.Info(context.Background(), "storage client initialized")
	}

	return client, nil
}

// Ping verifies the storage endpoint answers authenticated requests.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.httpClient == nil {
		return errors.New("storage client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/storage/v1/bucket", nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("storage bucket check failed: %s", resp.Status)
	}
	return nil
}

// Upload stores data under a sanitized, collision-resistant object name and
// returns the public URL.
func (c *Client) Upload(ctx context.Context, bucket, filename string, data []byte, contentType string) (string, error) {
	if bucket == "" {
		return "", pkgerrors.New(pkgerrors.CodeUpload, "bucket is required")
	}
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeUpload, "file buffer is empty")
	}

	object := ObjectName(filename)

	endpoint := fmt.Sprintf("%s%s/%s/%s", c.baseURL, objectPath, url.PathEscape(bucket), url.PathEscape(object))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpload, err, "building upload request")
	}
	c.authorize(req)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpload, err, "uploading file")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return "", pkgerrors.New(pkgerrors.CodeUpload, "failed to upload file: "+msg)
	}

	return fmt.Sprintf("%s%s%s/%s", c.baseURL, publicURLToken, bucket, object), nil
}

// Delete removes the object referenced by a public URL. URLs that do not
// follow the public-object shape are ignored.
func (c *Client) Delete(ctx context.Context, publicURL string) error {
	bucket, object, ok := ParsePublicURL(publicURL)
	if !ok {
		return nil
	}

	endpoint := fmt.Sprintf("%s%s/%s/%s", c.baseURL, objectPath, url.PathEscape(bucket), object)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpload, err, "building delete request")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpload, err, "deleting file")
	}
	defer func() { _ = resp.Body.Close() }()

	if (resp.StatusCode < 200 || resp.StatusCode >= 300) && resp.StatusCode != http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeUpload, "failed to delete file: "+resp.Status)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
}

// ObjectName sanitizes the original filename and prepends a timestamp+random
// prefix so concurrent uploads of the same name cannot collide.
func ObjectName(filename string) string {
	safe := unsafeFilenameRe.ReplaceAllString(filename, "_")
	if safe == "" {
		safe = "file"
	}
	return fmt.Sprintf("%d-%d-%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), safe)
}

// ParsePublicURL extracts bucket and object path from a conventional public
// object URL. ok is false for any other shape, including non-http values.
func ParsePublicURL(publicURL string) (bucket, object string, ok bool) {
	if !strings.HasPrefix(publicURL, "http") {
		return "", "", false
	}
	_, rest, found := strings.Cut(publicURL, publicURLToken)
	if !found || rest == "" {
		return "", "", false
	}
	bucket, object, found = strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}
