package timeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	texttospeech "google.golang.org/api/texttospeech/v1"

	"reel-pipeline/assets"
	"reel-pipeline/config"
)

const translateTTSURL = "https://translate.google.com/translate_tts"

// Narration is the outcome of a synthesis attempt. When neither synthesis
// path is available, Path is empty and Transcript carries the text so the
// caller can still surface the hook as on-screen copy.
type Narration struct {
	Path       string
	Transcript string
}

// Synthesizer turns hook text into a narration track. Cloud Text-to-Speech
// is the primary path when an API key is configured; the public translate
// endpoint is the keyless fallback.
type Synthesizer struct {
	apiKey       string
	voice        string
	language     string
	translateURL string
	dl           *assets.Downloader
	log          *zap.Logger
}

func NewSynthesizer(creds *config.Credentials, cfg config.TimelineConfig, dl *assets.Downloader, log *zap.Logger) *Synthesizer {
	return &Synthesizer{
		apiKey:       creds.GoogleTTSAPIKey,
		voice:        cfg.TTSVoice,
		language:     cfg.TTSLanguage,
		translateURL: translateTTSURL,
		dl:           dl,
		log:          log,
	}
}

// Synthesize renders text to an MP3 at destPath. It never fails hard:
// when both paths are unavailable it returns a transcript-only Narration.
func (s *Synthesizer) Synthesize(ctx context.Context, text, destPath string) Narration {
	if s.apiKey != "" {
		if err := s.synthesizeCloud(ctx, text, destPath); err == nil {
			return Narration{Path: destPath, Transcript: text}
		} else {
			s.log.Warn("cloud TTS failed, trying translate endpoint", zap.Error(err))
		}
	}

	if err := s.synthesizeTranslate(ctx, text, destPath); err == nil {
		return Narration{Path: destPath, Transcript: text}
	} else {
		s.log.Warn("TTS unavailable, narration degraded to transcript only", zap.Error(err))
	}

	return Narration{Transcript: text}
}

func (s *Synthesizer) synthesizeCloud(ctx context.Context, text, destPath string) error {
	svc, err := texttospeech.NewService(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return fmt.Errorf("tts service: %w", err)
	}

	resp, err := svc.Text.Synthesize(&texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: s.language,
			Name:         s.voice,
		},
		AudioConfig: &texttospeech.AudioConfig{AudioEncoding: "MP3"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("tts synthesize: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return fmt.Errorf("decode tts audio: %w", err)
	}
	return os.WriteFile(destPath, audio, 0644)
}

// synthesizeTranslate fetches speech from the public translate TTS
// endpoint. The endpoint caps input length, so long hooks are clipped.
func (s *Synthesizer) synthesizeTranslate(ctx context.Context, text, destPath string) error {
	text = truncateRunes(text, 200)

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", "en")
	q.Set("q", text)

	return s.dl.Fetch(ctx, s.translateURL+"?"+q.Encode(), destPath)
}
