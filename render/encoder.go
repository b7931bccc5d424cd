package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

// ErrEncodingFailed means both the full-effects pass and the degraded
// fallback pass failed; the run cannot produce a video.
var ErrEncodingFailed = errors.New("video encoding failed")

type runFunc func(ctx context.Context, name string, args []string) (stderr string, err error)

// Encoder renders a timeline to an mp4 by shelling out to ffmpeg. The
// full-effects pass carries the zoompan, grade, and overlay graph; when it
// fails or times out, a degraded pass produces a plain slideshow instead.
type Encoder struct {
	cfg config.RenderConfig
	bin string
	run runFunc
	log *zap.Logger
}

// NewEncoder resolves the ffmpeg binary once at construction.
func NewEncoder(cfg config.RenderConfig, log *zap.Logger) (*Encoder, error) {
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	return &Encoder{cfg: cfg, bin: bin, run: runCommand, log: log}, nil
}

// Encode renders the timeline to outPath. The primary pass runs under its
// own timeout; any failure triggers the degraded pass under a second
// timeout. Only when both fail does the caller see ErrEncodingFailed.
func (e *Encoder) Encode(ctx context.Context, tl *types.Timeline, outPath string) (*types.RenderedAsset, error) {
	primaryCtx, cancel := context.WithTimeout(ctx, e.cfg.PrimaryTimeout())
	defer cancel()

	stderr, primaryErr := e.run(primaryCtx, e.bin, e.primaryArgs(tl, outPath))
	if primaryErr == nil {
		return e.asset(tl, outPath), nil
	}
	e.log.Warn("full-effects encode failed, falling back to plain slideshow",
		zap.Error(primaryErr), zap.String("ffmpeg", tail(stderr)))

	fallbackCtx, cancel := context.WithTimeout(ctx, e.cfg.FallbackTimeout())
	defer cancel()

	if fallbackErr := e.encodeDegraded(fallbackCtx, tl, outPath); fallbackErr != nil {
		return nil, fmt.Errorf("%w: primary: %v; fallback: %v", ErrEncodingFailed, primaryErr, fallbackErr)
	}
	return e.asset(tl, outPath), nil
}

func (e *Encoder) asset(tl *types.Timeline, outPath string) *types.RenderedAsset {
	return &types.RenderedAsset{
		Path:       outPath,
		Duration:   tl.TotalSec,
		Resolution: fmt.Sprintf("%dx%d", e.cfg.Width, e.cfg.Height),
	}
}

// primaryArgs builds the single-invocation command: one looped image input
// per clip, the audio inputs, the filter graph, and the x264 settings.
func (e *Encoder) primaryArgs(tl *types.Timeline, outPath string) []string {
	args := make([]string, 0, 64)
	args = append(args, "-hide_banner", "-nostdin", "-y", "-loglevel", "error")

	// Each input carries the transition allowance on top of its clip
	// duration so adjacent clips have footage to blend over; the trailing
	// -t on the output keeps the total length unchanged.
	for _, clip := range tl.Clips {
		args = append(args,
			"-loop", "1",
			"-t", formatSec(clip.Duration+tl.TransitionSec),
			"-i", clip.ImagePath,
		)
	}

	// Audio inputs follow the images, narration before music, matching
	// the stream indices the filter graph assigns.
	a := tl.Audio
	if a.NarrationPath != "" {
		args = append(args, "-i", a.NarrationPath)
	}
	if a.MusicPath != "" {
		args = append(args, "-i", a.MusicPath)
	}

	graph, vLabel, aLabel := BuildFilterGraph(tl, e.cfg)
	args = append(args, "-filter_complex", graph, "-map", vLabel)
	if aLabel != "" {
		args = append(args, "-map", aLabel, "-c:a", "aac", "-b:a", "192k")
	} else {
		args = append(args, "-an")
	}

	args = append(args,
		"-c:v", "libx264",
		"-preset", e.cfg.Preset,
		"-crf", strconv.Itoa(e.cfg.CRF),
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(e.cfg.FPS),
		"-t", formatSec(tl.TotalSec),
		outPath,
	)
	return args
}

// encodeDegraded produces a plain slideshow: each clip becomes a letterboxed
// segment, then the segments are concatenated without re-encoding. No zoom,
// no overlays, no audio.
func (e *Encoder) encodeDegraded(ctx context.Context, tl *types.Timeline, outPath string) error {
	dir := filepath.Dir(outPath)
	pad := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		e.cfg.Width, e.cfg.Height, e.cfg.Width, e.cfg.Height)

	var list bytes.Buffer
	for i, clip := range tl.Clips {
		seg := filepath.Join(dir, fmt.Sprintf("seg_%d.mp4", i))
		args := []string{
			"-hide_banner", "-nostdin", "-y", "-loglevel", "error",
			"-loop", "1",
			"-t", formatSec(clip.Duration),
			"-i", clip.ImagePath,
			"-vf", pad,
			"-c:v", "libx264",
			"-preset", e.cfg.Preset,
			"-pix_fmt", "yuv420p",
			"-r", strconv.Itoa(e.cfg.FPS),
			seg,
		}
		if stderr, err := e.run(ctx, e.bin, args); err != nil {
			return fmt.Errorf("segment %d: %v: %s", i, err, tail(stderr))
		}
		fmt.Fprintf(&list, "file '%s'\n", seg)
	}

	listPath := filepath.Join(dir, "segments.txt")
	if err := os.WriteFile(listPath, list.Bytes(), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	args := []string{
		"-hide_banner", "-nostdin", "-y", "-loglevel", "error",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	}
	if stderr, err := e.run(ctx, e.bin, args); err != nil {
		return fmt.Errorf("concat: %v: %s", err, tail(stderr))
	}
	return nil
}

func runCommand(ctx context.Context, name string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

func formatSec(sec float64) string {
	return strconv.FormatFloat(sec, 'f', -1, 64)
}

// tail keeps the end of ffmpeg's stderr, where the actual failure lands.
func tail(s string) string {
	const keep = 300
	if len(s) <= keep {
		return s
	}
	return s[len(s)-keep:]
}
