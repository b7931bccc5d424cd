// Package assets downloads remote product images and audio tracks into a
// run's working directory.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Downloader fetches remote files over HTTP with a bounded per-file timeout.
type Downloader struct {
	httpClient *http.Client
	log        *zap.Logger
}

func NewDownloader(log *zap.Logger) *Downloader {
	return &Downloader{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log,
	}
}

// Fetch downloads url to destPath, creating parent directories as needed.
func (d *Downloader) Fetch(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return nil
}

// FetchImages downloads the given image URLs into dir as img_<i>.jpg,
// preserving order. A failed image is skipped with a warning; the caller
// decides whether the surviving count is enough.
func (d *Downloader) FetchImages(ctx context.Context, urls []string, dir string) ([]string, error) {
	var paths []string
	for i, u := range urls {
		dest := filepath.Join(dir, fmt.Sprintf("img_%d.jpg", i))
		if err := d.Fetch(ctx, u, dest); err != nil {
			d.log.Warn("image download failed, skipping", zap.String("url", u), zap.Error(err))
			continue
		}
		paths = append(paths, dest)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no product images could be downloaded")
	}
	return paths, nil
}
