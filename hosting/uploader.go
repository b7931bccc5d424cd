package hosting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

// ErrAllUploadTargetsFailed means neither hosting service accepted the
// video; there is no public URL to publish from.
var ErrAllUploadTargetsFailed = errors.New("all upload targets failed")

// Uploader pushes the rendered video to a temporary hosting service so the
// Graph API can fetch it by URL. The primary target gets one attempt; on
// any failure the secondary gets one attempt.
type Uploader struct {
	cfg        config.HostingConfig
	httpClient *http.Client
	log        *zap.Logger
}

func NewUploader(cfg config.HostingConfig, log *zap.Logger) *Uploader {
	return &Uploader{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		log:        log,
	}
}

// Upload hosts the file and returns its public URL. When both targets fail,
// the error retains both failure messages for the caller's diagnostics.
func (u *Uploader) Upload(ctx context.Context, path string) (*types.HostedAsset, error) {
	asset, primaryErr := u.uploadPrimary(ctx, path)
	if primaryErr == nil {
		u.log.Info("video hosted", zap.String("url", asset.URL))
		return asset, nil
	}
	u.log.Warn("primary upload target failed, trying secondary", zap.Error(primaryErr))

	asset, secondaryErr := u.uploadSecondary(ctx, path)
	if secondaryErr == nil {
		u.log.Info("video hosted on secondary", zap.String("url", asset.URL))
		return asset, nil
	}

	return nil, fmt.Errorf("%w: primary: %v; secondary: %v",
		ErrAllUploadTargetsFailed, primaryErr, secondaryErr)
}

// uploadPrimary posts to a file.io style endpoint. The expiry form field
// asks the service to keep the file long enough for remote processing.
func (u *Uploader) uploadPrimary(ctx context.Context, path string) (*types.HostedAsset, error) {
	fields := map[string]string{
		"expires":    u.cfg.Expiry,
		"autoDelete": "false",
	}
	body, err := u.postFile(ctx, u.cfg.PrimaryURL, path, fields)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Success bool   `json:"success"`
		Link    string `json:"link"`
		Expires string `json:"expires"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !resp.Success || resp.Link == "" {
		return nil, fmt.Errorf("upload rejected: %s", truncate(body))
	}
	return &types.HostedAsset{URL: resp.Link, ExpiresAt: resp.Expires}, nil
}

// uploadSecondary posts to a tmpfiles.org style endpoint. The returned page
// URL is rewritten to the direct-download form so the Graph API fetch does
// not land on an HTML page.
func (u *Uploader) uploadSecondary(ctx context.Context, path string) (*types.HostedAsset, error) {
	body, err := u.postFile(ctx, u.cfg.SecondaryURL, path, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.Status != "success" || resp.Data.URL == "" {
		return nil, fmt.Errorf("upload rejected: %s", truncate(body))
	}

	directURL := strings.Replace(resp.Data.URL, "tmpfiles.org/", "tmpfiles.org/dl/", 1)
	return &types.HostedAsset{URL: directURL}, nil
}

// postFile sends one multipart upload and returns the response body.
func (u *Uploader) postFile(ctx context.Context, target, path string, fields map[string]string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read video: %w", err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body))
	}
	return body, nil
}

func truncate(b []byte) string {
	const keep = 200
	if len(b) <= keep {
		return string(b)
	}
	return string(b[:keep])
}
