package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newImageServer(t *testing.T, broken ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, b := range broken {
			if strings.HasSuffix(r.URL.Path, b) {
				w.WriteHeader(http.StatusNotFound)
				return
			}
		}
		w.Write([]byte("jpeg-bytes:" + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchWritesFile(t *testing.T) {
	srv := newImageServer(t)
	d := NewDownloader(zap.NewNop())
	dest := filepath.Join(t.TempDir(), "sub", "a.jpg")

	require.NoError(t, d.Fetch(context.Background(), srv.URL+"/a.jpg", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes:/a.jpg", string(data))
}

func TestFetchRejectsNonOK(t *testing.T) {
	srv := newImageServer(t, "missing.jpg")
	d := NewDownloader(zap.NewNop())

	err := d.Fetch(context.Background(), srv.URL+"/missing.jpg", filepath.Join(t.TempDir(), "x.jpg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFetchImagesPreservesOrderAndSkipsFailures(t *testing.T) {
	srv := newImageServer(t, "1.jpg")
	d := NewDownloader(zap.NewNop())
	dir := t.TempDir()

	paths, err := d.FetchImages(context.Background(),
		[]string{srv.URL + "/0.jpg", srv.URL + "/1.jpg", srv.URL + "/2.jpg"}, dir)
	require.NoError(t, err)

	// The failed middle image is dropped; the survivors keep their
	// original index in the filename.
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "img_0.jpg"), paths[0])
	assert.Equal(t, filepath.Join(dir, "img_2.jpg"), paths[1])
}

func TestFetchImagesAllFailed(t *testing.T) {
	srv := newImageServer(t, "0.jpg", "1.jpg")
	d := NewDownloader(zap.NewNop())

	_, err := d.FetchImages(context.Background(),
		[]string{srv.URL + "/0.jpg", srv.URL + "/1.jpg"}, t.TempDir())
	assert.Error(t, err)
}
