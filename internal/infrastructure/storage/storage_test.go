package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("half of the credentials returns error", func(t *testing.T) {
		_, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "exports", AccessKeyID: "key"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be set together")
	})

	t.Run("valid config creates storage", func(t *testing.T) {
		s, err := NewS3ObjectStorage(&config.StorageConfig{
			Bucket:          "exports",
			Endpoint:        "localhost:9000",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
			UsePathStyle:    true,
		})
		require.NoError(t, err)
		assert.Equal(t, "exports", s.Bucket())
	})
}

// fakeS3 records PUT requests and answers HEAD for known keys
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[r.URL.Path]; ok {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3ObjectStorage_PutAndExists(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Bucket:          "exports",
		Endpoint:        srv.URL,
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "exports/2026/03/01/a.xlsx", "application/test", []byte("payload")))

	fake.mu.Lock()
	assert.Equal(t, []byte("payload"), fake.objects["/exports/exports/2026/03/01/a.xlsx"])
	assert.Equal(t, "application/test", fake.types["/exports/exports/2026/03/01/a.xlsx"])
	fake.mu.Unlock()

	ok, err := s.Exists(ctx, "exports/2026/03/01/a.xlsx")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "missing.xlsx")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3ObjectStorage_EmptyKey(t *testing.T) {
	s, err := NewS3ObjectStorage(&config.StorageConfig{Bucket: "exports", Endpoint: "http://localhost:1"})
	require.NoError(t, err)
	assert.Error(t, s.Put(context.Background(), "", "text/plain", nil))
	_, err = s.Exists(context.Background(), "")
	assert.Error(t, err)
}

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryObjectStorage()

	body := []byte("xlsx")
	require.NoError(t, s.Put(ctx, "k", "application/x", body))
	body[0] = 'X'

	obj, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "xlsx", string(obj.Body))
	assert.Equal(t, "application/x", obj.ContentType)

	exists, _ := s.Exists(ctx, "k")
	assert.True(t, exists)
	assert.Error(t, s.Put(ctx, "", "", nil))
}
