package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reel-pipeline/config"
	"reel-pipeline/script"
	"reel-pipeline/timeline"
	"reel-pipeline/types"
)

type stubStore struct{ product *types.Product }

func (s *stubStore) ProductByID(ctx context.Context, id string) (*types.Product, error) {
	return s.product, nil
}

func (s *stubStore) RandomProduct(ctx context.Context) (*types.Product, error) {
	return s.product, nil
}

type stubTrends struct{}

func (stubTrends) Hints(ctx context.Context) []string { return []string{"oversized fits"} }

type stubComposer struct{}

func (stubComposer) Compose(ctx context.Context, product *types.Product, req script.Request) *types.ReelScript {
	return &types.ReelScript{
		Goal:     types.GoalReach,
		Hook:     "wait for it",
		Caption:  "new drop",
		Hashtags: []string{"#RIIQX"},
	}
}

// stubFetcher writes one fake image into the run directory so the run has a
// file to carry through the later stages.
type stubFetcher struct{}

func (stubFetcher) FetchImages(ctx context.Context, urls []string, dir string) ([]string, error) {
	p := filepath.Join(dir, "img_0.jpg")
	if err := os.WriteFile(p, []byte("jpg"), 0644); err != nil {
		return nil, err
	}
	return []string{p}, nil
}

type stubBuilder struct{}

func (stubBuilder) Build(ctx context.Context, in timeline.Inputs) (*types.Timeline, error) {
	return &types.Timeline{TotalSec: 12}, nil
}

type stubEncoder struct{ err error }

func (s *stubEncoder) Encode(ctx context.Context, tl *types.Timeline, outPath string) (*types.RenderedAsset, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &types.RenderedAsset{Path: outPath, Duration: tl.TotalSec, Resolution: "1080x1920"}, nil
}

type stubHost struct{}

func (stubHost) Upload(ctx context.Context, path string) (*types.HostedAsset, error) {
	return &types.HostedAsset{URL: "https://file.io/abc123", ExpiresAt: "2026-09-14"}, nil
}

type stubPublisher struct {
	mediaID string
	err     error
}

func (s *stubPublisher) PublishReel(ctx context.Context, cfg config.PublishConfig, videoURL, caption string) (string, error) {
	return s.mediaID, s.err
}

func newTestOrchestrator(t *testing.T, enc VideoEncoder, pub ReelPublisher) (*Orchestrator, string) {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = base

	store := &stubStore{product: &types.Product{
		ID:     "gid://shopify/Product/1",
		Title:  "Oversized Acid Tee",
		Images: []string{"https://cdn.example.com/tee.jpg"},
	}}
	orch := NewOrchestrator(cfg, store, stubTrends{}, nil, stubComposer{},
		stubFetcher{}, stubBuilder{}, enc, stubHost{}, pub, zap.NewNop())
	return orch, base
}

func runDirsLeft(t *testing.T, base string) int {
	t.Helper()
	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	return len(entries)
}

func TestRunPublishesAndRemovesWorkDir(t *testing.T) {
	orch, base := newTestOrchestrator(t, &stubEncoder{}, &stubPublisher{mediaID: "1789"})

	result, err := orch.Run(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, "1789", result.MediaID)
	assert.Empty(t, result.PostError)
	assert.Equal(t, "https://file.io/abc123", result.Video.PublicURL)
	assert.Equal(t, "Oversized Acid Tee", result.Product.Title)
	assert.Zero(t, runDirsLeft(t, base), "run directory should be removed after a clean run")
}

func TestRunRemovesWorkDirOnStageFailure(t *testing.T) {
	orch, base := newTestOrchestrator(t,
		&stubEncoder{err: errors.New("ffmpeg exploded")},
		&stubPublisher{mediaID: "1789"})

	_, err := orch.Run(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode")
	assert.Zero(t, runDirsLeft(t, base), "run directory should be removed after a failed run")
}

func TestRunPublishFailureLandsInPostError(t *testing.T) {
	orch, base := newTestOrchestrator(t, &stubEncoder{},
		&stubPublisher{err: errors.New("media container expired")})

	result, err := orch.Run(context.Background(), Options{})
	require.NoError(t, err, "a publish failure reports through the result, not the error")

	assert.Contains(t, result.PostError, "media container expired")
	assert.Empty(t, result.MediaID)
	assert.NotEmpty(t, result.Video.PublicURL, "the hosted URL survives so the reel can be posted by hand")
	assert.Zero(t, runDirsLeft(t, base))
}

func TestRunNoPublishSkipsPublisher(t *testing.T) {
	orch, _ := newTestOrchestrator(t, &stubEncoder{},
		&stubPublisher{err: errors.New("should not be called")})

	result, err := orch.Run(context.Background(), Options{NoPublish: true})
	require.NoError(t, err)
	assert.Empty(t, result.MediaID)
	assert.Empty(t, result.PostError)
}

func TestMakeWorkDirUsesConfiguredBase(t *testing.T) {
	base := t.TempDir()
	o := &Orchestrator{cfg: &config.Config{Paths: config.PathsConfig{WorkDir: base}}}

	dir, err := o.makeWorkDir("run-1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "run-1"), dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMakeWorkDirFallsBackToTempDir(t *testing.T) {
	o := &Orchestrator{cfg: config.Default()}

	dir, err := o.makeWorkDir("run-2")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	assert.Contains(t, dir, filepath.Join(os.TempDir(), "reel-pipeline"))
}

func TestBuildCaptionJoinsHashtags(t *testing.T) {
	s := &types.ReelScript{
		Caption:  "new drop just landed",
		Hashtags: []string{"#RIIQX", "#Streetwear"},
	}
	assert.Equal(t, "new drop just landed\n\n#RIIQX #Streetwear", buildCaption(s))

	bare := &types.ReelScript{Caption: "plain"}
	assert.Equal(t, "plain", buildCaption(bare))
}
