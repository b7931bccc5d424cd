package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reel-pipeline/config"
	"reel-pipeline/script"
	"reel-pipeline/timeline"
	"reel-pipeline/types"
)

// maxVisionImages caps the concurrent image-description pass; the script
// prompt only needs a few visual notes.
const maxVisionImages = 3

// Options select what one run produces.
type Options struct {
	ProductID    string
	Goal         types.Goal
	Style        types.AudioStyle
	HookOverride string
	NoPublish    bool
}

// The stage contracts the orchestrator drives. Each is the slice of one
// concrete component's surface that a run actually touches.
type (
	// ProductSource selects the catalog item for a run.
	ProductSource interface {
		ProductByID(ctx context.Context, id string) (*types.Product, error)
		RandomProduct(ctx context.Context) (*types.Product, error)
	}

	// TrendSource supplies optional hints; it never fails a run.
	TrendSource interface {
		Hints(ctx context.Context) []string
	}

	// ImageFetcher downloads product images into the run directory.
	ImageFetcher interface {
		FetchImages(ctx context.Context, urls []string, dir string) ([]string, error)
	}

	// ImageDescriber produces a short note about one product photo.
	ImageDescriber interface {
		DescribeImage(ctx context.Context, imageBase64, prompt string) (string, error)
	}

	// ScriptComposer turns the product into a creative plan.
	ScriptComposer interface {
		Compose(ctx context.Context, product *types.Product, req script.Request) *types.ReelScript
	}

	// TimelineBuilder turns images and script into a render plan.
	TimelineBuilder interface {
		Build(ctx context.Context, in timeline.Inputs) (*types.Timeline, error)
	}

	// VideoEncoder renders the plan to a video file.
	VideoEncoder interface {
		Encode(ctx context.Context, tl *types.Timeline, outPath string) (*types.RenderedAsset, error)
	}

	// VideoHost makes the rendered file publicly reachable.
	VideoHost interface {
		Upload(ctx context.Context, path string) (*types.HostedAsset, error)
	}

	// ReelPublisher posts the hosted video. Nil disables publishing.
	ReelPublisher interface {
		PublishReel(ctx context.Context, cfg config.PublishConfig, videoURL, caption string) (string, error)
	}
)

// Orchestrator wires the stages into one run: pick a product, compose the
// script, build and render the timeline, host the video, publish the reel.
// Each run works inside its own temp directory, removed when the run ends.
type Orchestrator struct {
	cfg       *config.Config
	store     ProductSource
	scout     TrendSource
	describer ImageDescriber
	composer  ScriptComposer
	fetcher   ImageFetcher
	builder   TimelineBuilder
	encoder   VideoEncoder
	uploader  VideoHost
	publisher ReelPublisher
	log       *zap.Logger
}

func NewOrchestrator(
	cfg *config.Config,
	store ProductSource,
	scout TrendSource,
	describer ImageDescriber,
	composer ScriptComposer,
	fetcher ImageFetcher,
	builder TimelineBuilder,
	encoder VideoEncoder,
	uploader VideoHost,
	publisher ReelPublisher,
	log *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		store:     store,
		scout:     scout,
		describer: describer,
		composer:  composer,
		fetcher:   fetcher,
		builder:   builder,
		encoder:   encoder,
		uploader:  uploader,
		publisher: publisher,
		log:       log,
	}
}

// Run executes the full pipeline once. A publish failure does not fail the
// run; the rendered and hosted video is still a usable result, so the
// failure is annotated on it instead.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*types.ReelResult, error) {
	runID := uuid.NewString()
	result := &types.ReelResult{RunID: runID, StartedAt: time.Now()}
	log := o.log.With(zap.String("run_id", runID))

	product, err := o.pickProduct(ctx, opts.ProductID)
	if err != nil {
		return nil, fmt.Errorf("pick product: %w", err)
	}
	result.Product = types.ProductRef{ID: product.ID, Title: product.Title}
	log.Info("product selected", zap.String("title", product.Title))

	workDir, err := o.makeWorkDir(runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("workdir cleanup failed", zap.Error(err))
		}
	}()

	imagePaths, err := o.fetcher.FetchImages(ctx, product.Images, workDir)
	if err != nil {
		return nil, fmt.Errorf("fetch images: %w", err)
	}

	hints := o.scout.Hints(ctx)
	notes := o.describeImages(ctx, imagePaths)

	reelScript := o.composer.Compose(ctx, product, script.Request{
		Goal:       opts.Goal,
		TrendHints: hints,
		ImageNotes: strings.Join(notes, "; "),
	})
	if opts.HookOverride != "" {
		reelScript.Hook = opts.HookOverride
	}
	result.Script = reelScript

	tl, err := o.builder.Build(ctx, timeline.Inputs{
		Product:    product,
		Script:     reelScript,
		ImagePaths: imagePaths,
		Style:      opts.Style,
		WorkDir:    workDir,
	})
	if err != nil {
		return nil, fmt.Errorf("build timeline: %w", err)
	}

	asset, err := o.encoder.Encode(ctx, tl, filepath.Join(workDir, "reel.mp4"))
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	result.Video = types.VideoInfo{
		Duration:   asset.Duration,
		Resolution: asset.Resolution,
	}

	hosted, err := o.uploader.Upload(ctx, asset.Path)
	if err != nil {
		return nil, fmt.Errorf("host video: %w", err)
	}
	result.Video.PublicURL = hosted.URL
	result.Video.ExpiresAt = hosted.ExpiresAt

	if opts.NoPublish || o.publisher == nil {
		log.Info("publish skipped", zap.String("url", hosted.URL))
		result.CompletedAt = time.Now()
		return result, nil
	}

	mediaID, err := o.publisher.PublishReel(ctx, o.cfg.Publish, hosted.URL, buildCaption(reelScript))
	if err != nil {
		log.Error("publish failed", zap.Error(err))
		result.PostError = err.Error()
	} else {
		result.MediaID = mediaID
	}

	result.CompletedAt = time.Now()
	return result, nil
}

func (o *Orchestrator) pickProduct(ctx context.Context, id string) (*types.Product, error) {
	if id != "" {
		return o.store.ProductByID(ctx, id)
	}
	return o.store.RandomProduct(ctx)
}

func (o *Orchestrator) makeWorkDir(runID string) (string, error) {
	base := o.cfg.Paths.WorkDir
	if base == "" {
		base = filepath.Join(os.TempDir(), "reel-pipeline")
	}
	dir := filepath.Join(base, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create workdir: %w", err)
	}
	return dir, nil
}

// describeImages asks the vision model about the first few product shots
// concurrently. Nothing downstream requires the notes, so every failure is
// simply an absent note.
func (o *Orchestrator) describeImages(ctx context.Context, paths []string) []string {
	if o.describer == nil {
		return nil
	}
	if len(paths) > maxVisionImages {
		paths = paths[:maxVisionImages]
	}

	notes := make([]string, len(paths))
	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			data, err := os.ReadFile(path)
			if err != nil {
				return
			}
			note, err := o.describer.DescribeImage(ctx,
				base64.StdEncoding.EncodeToString(data),
				"Describe this product photo in one short sentence for a fashion reel.")
			if err != nil {
				return
			}
			notes[i] = note
		}(i, p)
	}
	wg.Wait()

	out := notes[:0]
	for _, n := range notes {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

func buildCaption(s *types.ReelScript) string {
	caption := s.Caption
	if len(s.Hashtags) > 0 {
		caption += "\n\n" + strings.Join(s.Hashtags, " ")
	}
	return caption
}
