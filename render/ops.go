package render

import (
	"fmt"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

// clipOp is the typed render plan for one input: everything the filter
// translation needs, resolved to concrete values. Building ops first keeps
// the ffmpeg syntax confined to filter.go.
type clipOp struct {
	Index    int
	Frames   int
	ZoomExpr string
	Overlays []string
}

// audioOp is the resolved audio mix: which input indices feed the graph
// and at what gain. Inputs follow the image inputs, narration before music.
type audioOp struct {
	NarrationIndex int
	MusicIndex     int
	NarrationGain  float64
	MusicGain      float64
	FadeStart      float64
	FadeDur        float64
}

// planOps resolves a timeline into per-clip operations.
func planOps(tl *types.Timeline, cfg config.RenderConfig) []clipOp {
	ops := make([]clipOp, len(tl.Clips))
	for i, clip := range tl.Clips {
		ops[i] = clipOp{
			Index:    i,
			Frames:   int(clip.Duration * float64(cfg.FPS)),
			ZoomExpr: zoomExpr(clip.Zoom),
			Overlays: clip.OverlayText,
		}
	}
	return ops
}

// planAudioOp resolves the mix, or nil for a silent plan.
func planAudioOp(tl *types.Timeline) *audioOp {
	a := tl.Audio
	if a.Silent {
		return nil
	}

	fadeStart := tl.TotalSec - a.FadeOutSec
	if fadeStart < 0 {
		fadeStart = 0
	}
	op := &audioOp{
		NarrationIndex: -1,
		MusicIndex:     -1,
		NarrationGain:  a.NarrationGain,
		MusicGain:      a.MusicGain,
		FadeStart:      fadeStart,
		FadeDur:        a.FadeOutSec,
	}

	next := len(tl.Clips)
	if a.NarrationPath != "" {
		op.NarrationIndex = next
		next++
	}
	if a.MusicPath != "" {
		op.MusicIndex = next
	}
	return op
}

func zoomExpr(dir types.ZoomDirection) string {
	if dir == types.ZoomIn {
		return zoomInExpr
	}
	return zoomOutExpr
}

func (o clipOp) inLabel() string  { return fmt.Sprintf("[%d:v]", o.Index) }
func (o clipOp) outLabel() string { return fmt.Sprintf("[v%d]", o.Index) }
