// Package script composes the structured creative plan for a reel. The
// composer asks the provider cascade for a JSON-shaped script and falls
// back to static templates when generation or validation fails. The
// fallback is the terminal safety net of the pipeline's text stage and
// never fails itself.
package script

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"reel-pipeline/config"
	"reel-pipeline/textgen"
	"reel-pipeline/types"
)

// Generator is the slice of the provider cascade the composer needs.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts textgen.Options) (string, error)
}

// Composer turns a product into a ReelScript.
type Composer struct {
	gen Generator
	cfg config.ScriptConfig
	log *zap.Logger
	now func() time.Time
}

func NewComposer(gen Generator, cfg config.ScriptConfig, log *zap.Logger) *Composer {
	return &Composer{gen: gen, cfg: cfg, log: log, now: time.Now}
}

// Request carries the optional inputs of a composition.
type Request struct {
	Goal       types.Goal
	TrendHints []string
	// ImageNotes is the output of an image-understanding pass, folded
	// into the prompt when present.
	ImageNotes string
}

// scriptJSON is the raw JSON shape requested from the provider.
type scriptJSON struct {
	Hook         string   `json:"hook"`
	Scenes       []string `json:"scenes"`
	OnScreenText []string `json:"on_screen_text"`
	Caption      string   `json:"caption"`
	Hashtags     []string `json:"hashtags"`
	CTA          string   `json:"cta"`
}

// Compose builds a ReelScript for the product. Provider failure and
// malformed output are both recovered locally via the template fallback,
// so Compose always returns a usable script.
func (c *Composer) Compose(ctx context.Context, product *types.Product, req Request) *types.ReelScript {
	prompt := buildPrompt(product, req)

	raw, err := c.gen.Generate(ctx, prompt, textgen.Options{
		Temperature: c.cfg.Temperature,
		JSONMode:    true,
	})
	if err != nil {
		c.log.Warn("script generation failed, using template fallback", zap.Error(err))
		return c.fallback(product, req)
	}

	parsed, err := parseScript(raw)
	if err != nil {
		c.log.Warn("script validation failed, using template fallback", zap.Error(err))
		return c.fallback(product, req)
	}

	parsed.Goal = effectiveGoal(req.Goal, c.now())
	if len(req.TrendHints) > 0 {
		parsed.Caption += fmt.Sprintf("\n\ninspired by the '%s' wave 🌊", req.TrendHints[0])
	}
	return parsed
}

// parseScript strips markdown fences, decodes the provider JSON, and
// enforces the shape contract: non-empty hook, caption, hashtags, and
// scene list. Missing fields trigger fallback rather than partial success.
func parseScript(raw string) (*types.ReelScript, error) {
	cleaned := cleanJSON(raw)

	var s scriptJSON
	if err := json.Unmarshal([]byte(cleaned), &s); err != nil {
		return nil, fmt.Errorf("parse script JSON: %w", err)
	}

	switch {
	case strings.TrimSpace(s.Hook) == "":
		return nil, fmt.Errorf("script missing hook")
	case strings.TrimSpace(s.Caption) == "":
		return nil, fmt.Errorf("script missing caption")
	case len(s.Hashtags) == 0:
		return nil, fmt.Errorf("script missing hashtags")
	case len(s.Scenes) == 0:
		return nil, fmt.Errorf("script missing scenes")
	}

	return &types.ReelScript{
		Hook:         s.Hook,
		Scenes:       s.Scenes,
		OnScreenText: s.OnScreenText,
		Caption:      s.Caption,
		Hashtags:     s.Hashtags,
		CTA:          s.CTA,
	}, nil
}

func buildPrompt(product *types.Product, req Request) string {
	var sb strings.Builder
	sb.WriteString("You are a viral Reels strategist for RIIQX, an Indian streetwear brand.\n\n")
	sb.WriteString("Generate a viral Instagram REEL SCRIPT for this product:\n")
	sb.WriteString(fmt.Sprintf("- Name: %s\n", product.Title))
	sb.WriteString(fmt.Sprintf("- Description: %s\n", product.Description))
	sb.WriteString(fmt.Sprintf("- Price: %s %d\n", product.Currency, product.Price))
	sb.WriteString(fmt.Sprintf("- Category: %s\n", product.Category))
	if len(product.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("- Tags: %s\n", strings.Join(product.Tags, ", ")))
	}
	if req.ImageNotes != "" {
		sb.WriteString(fmt.Sprintf("- Visual notes from product photos: %s\n", req.ImageNotes))
	}
	if req.Goal != "" {
		sb.WriteString(fmt.Sprintf("- Target goal: %s\n", req.Goal))
	}
	if len(req.TrendHints) > 0 {
		sb.WriteString(fmt.Sprintf("- Trending right now: %s\n", strings.Join(req.TrendHints, "; ")))
	}

	sb.WriteString(`
Return JSON with this EXACT structure:
{
  "hook": "The opening 0-2 second hook (must stop the scroll)",
  "scenes": [
    "Scene 1 (0-3s): Detailed description of what happens",
    "Scene 2 (3-6s): ...",
    "Scene 3 (6-10s): ...",
    "Scene 4 (10-15s): End frame with CTA"
  ],
  "on_screen_text": ["Text overlay line 1", "..."],
  "caption": "Reel caption (short, punchy, lowercase)",
  "hashtags": ["#RIIQX", "...8-10 hashtags"],
  "cta": "Strong conversion CTA"
}

Rules:
- Hook MUST stop the scroll in under 2 seconds
- Include text overlay ideas in scene descriptions
- Reference trending formats (silent reveal, GRWM, POV)
- Music sync points where relevant
- End with clear conversion action
Respond ONLY with valid JSON. No markdown. No explanation.`)

	return sb.String()
}

// cleanJSON strips markdown fences if the provider wraps its response in
// ```json ... ```
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
