package render

import (
	"fmt"
	"strings"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

// Zoom expressions for the pan/zoom motion. Frame counter `on` advances
// at the output frame rate, so the factor drifts slowly across a clip.
const (
	zoomOutExpr = "1.5-0.002*on"
	zoomInExpr  = "1.0+0.002*on"
)

// colorGrade is applied to every clip so catalog photos read punchy on
// a phone screen.
const colorGrade = "eq=saturation=1.5:contrast=1.2"

// BuildFilterGraph translates a timeline into the complete -filter_complex
// graph for the full-effects encode pass, including the audio mix when the
// plan is not silent. It returns the graph plus the labels of the final
// video and audio streams ("" audio label means no audio graph).
func BuildFilterGraph(tl *types.Timeline, cfg config.RenderConfig) (graph, vLabel, aLabel string) {
	ops := planOps(tl, cfg)

	chains := make([]string, 0, len(ops)+2)
	for _, op := range ops {
		chains = append(chains, translateClip(op, cfg))
	}

	// Concat the per-clip streams into one video stream.
	var concat strings.Builder
	for _, op := range ops {
		concat.WriteString(op.outLabel())
	}
	fmt.Fprintf(&concat, "concat=n=%d:v=1:a=0[vout]", len(ops))
	chains = append(chains, concat.String())

	vLabel = "[vout]"

	if op := planAudioOp(tl); op != nil {
		chains = append(chains, translateAudio(op))
		aLabel = "[aout]"
	}

	return strings.Join(chains, ";"), vLabel, aLabel
}

// translateClip renders one clip op to its filter chain: fill-crop to the
// reel frame, pan/zoom, color grade, then the text overlays.
func translateClip(op clipOp, cfg config.RenderConfig) string {
	steps := []string{
		fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", cfg.Width, cfg.Height),
		fmt.Sprintf("crop=%d:%d", cfg.Width, cfg.Height),
		fmt.Sprintf("zoompan=z='%s':d=%d:s=%dx%d:fps=%d",
			op.ZoomExpr, op.Frames, cfg.Width, cfg.Height, cfg.FPS),
		colorGrade,
	}

	steps = append(steps, brandOverlay(cfg))
	for _, text := range op.Overlays {
		steps = append(steps, textOverlay(text))
	}
	steps = append(steps, "setsar=1")

	return op.inLabel() + strings.Join(steps, ",") + op.outLabel()
}

// brandOverlay pins the brand mark near the top of every clip.
func brandOverlay(cfg config.RenderConfig) string {
	return fmt.Sprintf(
		"drawtext=text='%s':fontsize=48:fontcolor=white:borderw=2:bordercolor=black:x=(w-text_w)/2:y=120",
		escapeDrawtext(cfg.BrandMark))
}

// textOverlay places clip text in the lower third with a dim box behind it.
func textOverlay(text string) string {
	return fmt.Sprintf(
		"drawtext=text='%s':fontsize=64:fontcolor=white:box=1:boxcolor=black@0.5:boxborderw=16:x=(w-text_w)/2:y=h-380",
		escapeDrawtext(text))
}

// translateAudio renders the mix op. A lone stream skips amix entirely.
func translateAudio(op *audioOp) string {
	fade := fmt.Sprintf("afade=t=out:st=%.2f:d=%.2f", op.FadeStart, op.FadeDur)

	switch {
	case op.NarrationIndex >= 0 && op.MusicIndex >= 0:
		return fmt.Sprintf(
			"[%d:a]volume=%.2f[narr];[%d:a]volume=%.2f[mus];[narr][mus]amix=inputs=2:duration=first,%s[aout]",
			op.NarrationIndex, op.NarrationGain, op.MusicIndex, op.MusicGain, fade)
	case op.NarrationIndex >= 0:
		return fmt.Sprintf("[%d:a]volume=%.2f,%s[aout]", op.NarrationIndex, op.NarrationGain, fade)
	default:
		return fmt.Sprintf("[%d:a]volume=%.2f,%s[aout]", op.MusicIndex, op.MusicGain, fade)
	}
}

// escapeDrawtext escapes the characters drawtext treats specially inside
// a single-quoted text value.
func escapeDrawtext(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\\\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return r.Replace(s)
}
