package hosting

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reel-pipeline/config"
)

func writeTestVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reel.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0644))
	return path
}

func newTestUploader(primary, secondary string) *Uploader {
	return NewUploader(config.HostingConfig{
		PrimaryURL:   primary,
		SecondaryURL: secondary,
		Expiry:       "1d",
	}, zap.NewNop())
}

func TestUploadPrimarySucceeds(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "1d", r.FormValue("expires"))
		assert.Equal(t, "false", r.FormValue("autoDelete"))
		_, _, err := r.FormFile("file")
		assert.NoError(t, err)
		w.Write([]byte(`{"success":true,"link":"https://file.io/abc123","expires":"2026-09-01T00:00:00Z"}`))
	}))
	defer primary.Close()

	u := newTestUploader(primary.URL, "http://127.0.0.1:1/unused")
	asset, err := u.Upload(context.Background(), writeTestVideo(t))
	require.NoError(t, err)
	assert.Equal(t, "https://file.io/abc123", asset.URL)
	assert.Equal(t, "2026-09-01T00:00:00Z", asset.ExpiresAt)
}

func TestUploadFallsBackToSecondary(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()

	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"url":"https://tmpfiles.org/123/reel.mp4"}}`))
	}))
	defer secondary.Close()

	u := newTestUploader(primary.URL, secondary.URL)
	asset, err := u.Upload(context.Background(), writeTestVideo(t))
	require.NoError(t, err)
	assert.Equal(t, "https://tmpfiles.org/dl/123/reel.mp4", asset.URL)
}

func TestUploadRewritesOnlyHostSegment(t *testing.T) {
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"url":"https://tmpfiles.org/9/tmpfiles.org.mp4"}}`))
	}))
	defer secondary.Close()

	u := newTestUploader("http://127.0.0.1:1/unused", secondary.URL)
	asset, err := u.Upload(context.Background(), writeTestVideo(t))
	require.NoError(t, err)
	assert.Equal(t, "https://tmpfiles.org/dl/9/tmpfiles.org.mp4", asset.URL)
}

func TestUploadAcceptsAny2xxStatus(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"link":"https://file.io/created","expires":"2026-09-01T00:00:00Z"}`))
	}))
	defer primary.Close()

	u := newTestUploader(primary.URL, "http://127.0.0.1:1/unused")
	asset, err := u.Upload(context.Background(), writeTestVideo(t))
	require.NoError(t, err)
	assert.Equal(t, "https://file.io/created", asset.URL)
}

func TestUploadBothTargetsFail(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("over capacity"))
	}))
	defer primary.Close()

	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error"}`))
	}))
	defer secondary.Close()

	u := newTestUploader(primary.URL, secondary.URL)
	_, err := u.Upload(context.Background(), writeTestVideo(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllUploadTargetsFailed)
	assert.Contains(t, err.Error(), "over capacity")
	assert.Contains(t, err.Error(), "status")
}

func TestUploadRejectsUnsuccessfulPrimaryBody(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"quota exceeded"}`))
	}))
	defer primary.Close()

	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"url":"https://tmpfiles.org/5/reel.mp4"}}`))
	}))
	defer secondary.Close()

	u := newTestUploader(primary.URL, secondary.URL)
	asset, err := u.Upload(context.Background(), writeTestVideo(t))
	require.NoError(t, err)
	assert.Contains(t, asset.URL, "/dl/")
}
