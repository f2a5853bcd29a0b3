package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/garage/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{AccessKeyID: "k", SecretAccessKey: "s"}, "bucket is required"},
		{"missing access key", &config.StorageConfig{Bucket: "b", SecretAccessKey: "s"}, "access key is required"},
		{"missing secret key", &config.StorageConfig{Bucket: "b", AccessKeyID: "k"}, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3ObjectStorage(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("defaults", func(t *testing.T) {
		s, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "receipts", AccessKeyID: "k", SecretAccessKey: "s"})
		require.NoError(t, err)
		assert.Equal(t, "receipts", s.Bucket())
		assert.Equal(t, 15*time.Minute, s.presignExpiry)
	})
}

// fakeS3 records the requests an S3 client sends
type fakeS3 struct {
	mu       sync.Mutex
	requests []recordedRequest
}

type recordedRequest struct {
	method      string
	path        string
	contentType string
	body        string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		method:      r.Method,
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
		body:        string(body),
	})
	f.mu.Unlock()
	w.Header().Set("ETag", `"etag"`)
	w.WriteHeader(http.StatusOK)
}

func newTestStorage(t *testing.T) (*S3ObjectStorage, *fakeS3) {
	t.Helper()
	fake := &fakeS3{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Endpoint:        server.URL,
		Bucket:          "receipts",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
		PresignExpiry:   5 * time.Minute,
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return s, fake
}

func TestS3ObjectStorage_Upload(t *testing.T) {
	s, fake := newTestStorage(t)

	err := s.Upload(context.Background(), "closings/abc.pdf", "application/pdf", []byte("%PDF-1.3 receipt"))
	require.NoError(t, err)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/receipts/closings/abc.pdf", req.path)
	assert.Equal(t, "application/pdf", req.contentType)
	assert.Contains(t, req.body, "%PDF-1.3 receipt")

	assert.Error(t, s.Upload(context.Background(), "", "application/pdf", nil))
}

func TestS3ObjectStorage_EnsureBucketExisting(t *testing.T) {
	s, fake := newTestStorage(t)

	require.NoError(t, s.EnsureBucket(context.Background()))
	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodHead, fake.requests[0].method)
}

func TestS3ObjectStorage_DownloadURL(t *testing.T) {
	s, fake := newTestStorage(t)

	raw, err := s.DownloadURL(context.Background(), "closings/abc.pdf")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/receipts/closings/abc.pdf", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Empty(t, fake.requests, "presigning must not call the server")

	_, err = s.DownloadURL(context.Background(), "")
	assert.Error(t, err)
}
