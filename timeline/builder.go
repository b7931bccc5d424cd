package timeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"reel-pipeline/assets"
	"reel-pipeline/config"
	"reel-pipeline/types"
)

const maxOverlayChars = 15

// Inputs is everything Build needs for one run. ImagePaths are local files,
// already downloaded, in catalog order.
type Inputs struct {
	Product    *types.Product
	Script     *types.ReelScript
	ImagePaths []string
	Style      types.AudioStyle
	WorkDir    string
}

// Builder turns downloaded product images and a script into a fully
// specified render plan: ordered clips with zoom directions and text
// overlays, plus the audio mixing plan.
type Builder struct {
	cfg    config.TimelineConfig
	tracks *TrackLibrary
	synth  *Synthesizer
	dl     *assets.Downloader
	log    *zap.Logger
}

func NewBuilder(cfg config.TimelineConfig, tracks *TrackLibrary, synth *Synthesizer, dl *assets.Downloader, log *zap.Logger) *Builder {
	return &Builder{cfg: cfg, tracks: tracks, synth: synth, dl: dl, log: log}
}

// Build produces the timeline. It fails only when no usable image exists;
// audio problems degrade the plan instead of aborting the run.
func (b *Builder) Build(ctx context.Context, in Inputs) (*types.Timeline, error) {
	if len(in.ImagePaths) == 0 {
		return nil, fmt.Errorf("timeline: no images to build from")
	}

	clips := b.planClips(in.Product, in.ImagePaths)
	total := float64(len(clips)) * b.cfg.ClipSec

	audio := b.planAudio(ctx, in)

	b.log.Info("timeline built",
		zap.Int("clips", len(clips)),
		zap.Float64("total_sec", total),
		zap.Bool("silent", audio.Silent))

	return &types.Timeline{
		Clips:         clips,
		TotalSec:      total,
		TransitionSec: b.cfg.TransitionSec,
		Audio:         audio,
	}, nil
}

// planClips caps the image set, loops it until the reel reaches the
// minimum duration, then truncates to the maximum clip count. Zoom
// direction and overlay text alternate by clip index so adjacent clips
// never repeat the same motion or text.
func (b *Builder) planClips(product *types.Product, paths []string) []types.Clip {
	if len(paths) > b.cfg.MaxImages {
		paths = paths[:b.cfg.MaxImages]
	}
	// The looping below appends the slice to itself; work on a copy so
	// the caller's backing array is never written through.
	paths = append([]string(nil), paths...)

	for float64(len(paths))*b.cfg.ClipSec < b.cfg.MinTotalSec {
		paths = append(paths, paths...)
	}

	maxClips := int(b.cfg.MaxTotalSec / b.cfg.ClipSec)
	if len(paths) > maxClips {
		paths = paths[:maxClips]
	}

	name := overlayName(product.Title)
	price := overlayPrice(product)

	clips := make([]types.Clip, len(paths))
	for i, p := range paths {
		clip := types.Clip{
			ImagePath: p,
			Duration:  b.cfg.ClipSec,
		}
		if i%2 == 0 {
			clip.Zoom = types.ZoomOut
			clip.OverlayText = []string{name}
		} else {
			clip.Zoom = types.ZoomIn
			clip.OverlayText = []string{price}
		}
		clips[i] = clip
	}
	return clips
}

// planAudio assembles the mix: curated background track plus synthesized
// narration of the hook. A lone stream plays at unity gain; when neither
// stream materializes the plan is marked silent and the render proceeds
// without an audio graph.
func (b *Builder) planAudio(ctx context.Context, in Inputs) types.AudioPlan {
	plan := types.AudioPlan{FadeOutSec: b.cfg.AudioFadeSec}

	var track types.AudioTrack
	if in.Style != "" {
		track = b.tracks.ByStyle(in.Style, in.Product.ID)
	} else {
		track = b.tracks.Random()
	}
	musicPath := filepath.Join(in.WorkDir, "music.mp3")
	if err := b.dl.Fetch(ctx, track.URL, musicPath); err != nil {
		b.log.Warn("music download failed, continuing without track",
			zap.String("track", track.Name), zap.Error(err))
	} else {
		plan.MusicPath = musicPath
		plan.MusicTrack = &track
	}

	narration := b.synth.Synthesize(ctx, in.Script.Hook, filepath.Join(in.WorkDir, "narration.mp3"))
	plan.NarrationPath = narration.Path

	switch {
	case plan.MusicPath != "" && plan.NarrationPath != "":
		plan.MusicGain = b.cfg.MusicGain
		plan.NarrationGain = b.cfg.NarrationGain
	case plan.MusicPath != "":
		plan.MusicGain = 1.0
	case plan.NarrationPath != "":
		plan.NarrationGain = 1.0
	default:
		plan.Silent = true
	}
	return plan
}

func overlayName(title string) string {
	return truncateRunes(strings.ToUpper(strings.TrimSpace(title)), maxOverlayChars)
}

// truncateRunes shortens s to at most n runes, never splitting a
// multi-byte sequence.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func overlayPrice(p *types.Product) string {
	symbol := p.Currency
	switch p.Currency {
	case "INR":
		symbol = "₹"
	case "USD":
		symbol = "$"
	case "EUR":
		symbol = "€"
	}
	return fmt.Sprintf("%s%d", symbol, p.Price)
}
