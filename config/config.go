package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Script   ScriptConfig   `yaml:"script"`
	Timeline TimelineConfig `yaml:"timeline"`
	Render   RenderConfig   `yaml:"render"`
	Hosting  HostingConfig  `yaml:"hosting"`
	Publish  PublishConfig  `yaml:"publish"`
	Trends   TrendsConfig   `yaml:"trends"`
	Paths    PathsConfig    `yaml:"paths"`
}

type ScriptConfig struct {
	GroqModel   string  `yaml:"groq_model"`
	Temperature float64 `yaml:"temperature"`
	MaxRetries  int     `yaml:"max_retries"`
}

type TimelineConfig struct {
	MaxImages     int     `yaml:"max_images"`
	ClipSec       float64 `yaml:"clip_sec"`
	TransitionSec float64 `yaml:"transition_sec"`
	MinTotalSec   float64 `yaml:"min_total_sec"`
	MaxTotalSec   float64 `yaml:"max_total_sec"`
	MusicGain     float64 `yaml:"music_gain"`
	NarrationGain float64 `yaml:"narration_gain"`
	AudioFadeSec  float64 `yaml:"audio_fade_sec"`
	TTSVoice      string  `yaml:"tts_voice"`
	TTSLanguage   string  `yaml:"tts_language"`
}

type RenderConfig struct {
	Width              int    `yaml:"width"`
	Height             int    `yaml:"height"`
	FPS                int    `yaml:"fps"`
	CRF                int    `yaml:"crf"`
	Preset             string `yaml:"preset"`
	BrandMark          string `yaml:"brand_mark"`
	PrimaryTimeoutSec  int    `yaml:"primary_timeout_sec"`
	FallbackTimeoutSec int    `yaml:"fallback_timeout_sec"`
}

// PrimaryTimeout is the bound on the full-effects encode pass.
func (r RenderConfig) PrimaryTimeout() time.Duration {
	return time.Duration(r.PrimaryTimeoutSec) * time.Second
}

// FallbackTimeout is the bound on the degraded encode pass.
func (r RenderConfig) FallbackTimeout() time.Duration {
	return time.Duration(r.FallbackTimeoutSec) * time.Second
}

type HostingConfig struct {
	PrimaryURL   string `yaml:"primary_url"`
	SecondaryURL string `yaml:"secondary_url"`
	Expiry       string `yaml:"expiry"`
}

type PublishConfig struct {
	PollIntervalSec int `yaml:"poll_interval_sec"`
	MaxPolls        int `yaml:"max_polls"`
}

// PollInterval is the cadence of container status reads.
func (p PublishConfig) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalSec) * time.Second
}

type TrendsConfig struct {
	Subreddits []string `yaml:"subreddits"`
	MaxHints   int      `yaml:"max_hints"`
}

type PathsConfig struct {
	WorkDir string `yaml:"work_dir"`
}

// Credentials carries every secret and endpoint override the pipeline
// reads from the environment. Absent credentials disable the provider
// or feature that needs them rather than failing startup.
type Credentials struct {
	GroqAPIKey      string `env:"GROQ_API_KEY"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	OllamaHost      string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	GoogleTTSAPIKey string `env:"GOOGLE_TTS_API_KEY"`
	MetaAccessToken string `env:"META_ACCESS_TOKEN"`
	ShopifyDomain   string `env:"SHOPIFY_DOMAIN"`
	ShopifyToken    string `env:"SHOPIFY_STOREFRONT_ACCESS_TOKEN"`
	RedditID        string `env:"REDDIT_CLIENT_ID"`
	RedditSecret    string `env:"REDDIT_CLIENT_SECRET"`
	RedditUsername  string `env:"REDDIT_USERNAME"`
	RedditPassword  string `env:"REDDIT_PASSWORD"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads config.yaml and overlays it on the built-in defaults.
// A missing file is not an error; the defaults describe a working pipeline.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadCredentials parses the environment into a Credentials struct.
func LoadCredentials() (*Credentials, error) {
	creds := &Credentials{}
	if err := env.Parse(creds); err != nil {
		return nil, err
	}
	return creds, nil
}

// Default returns the pipeline defaults used when config.yaml is absent.
func Default() *Config {
	return &Config{
		Script: ScriptConfig{
			GroqModel:   "llama-3.3-70b-versatile",
			Temperature: 0.9,
			MaxRetries:  3,
		},
		Timeline: TimelineConfig{
			MaxImages:     12,
			ClipSec:       0.6,
			TransitionSec: 0.1,
			MinTotalSec:   7,
			MaxTotalSec:   15,
			MusicGain:     0.4,
			NarrationGain: 1.5,
			AudioFadeSec:  2,
			TTSVoice:      "en-US-Neural2-D",
			TTSLanguage:   "en-US",
		},
		Render: RenderConfig{
			Width:              1080,
			Height:             1920,
			FPS:                30,
			CRF:                23,
			Preset:             "fast",
			BrandMark:          "RIIQX",
			PrimaryTimeoutSec:  180,
			FallbackTimeoutSec: 120,
		},
		Hosting: HostingConfig{
			PrimaryURL:   "https://file.io",
			SecondaryURL: "https://tmpfiles.org/api/v1/upload",
			Expiry:       "1d",
		},
		Publish: PublishConfig{
			PollIntervalSec: 10,
			MaxPolls:        30,
		},
		Trends: TrendsConfig{
			Subreddits: []string{"streetwear", "indianfashionaddicts"},
			MaxHints:   3,
		},
		Paths: PathsConfig{
			WorkDir: "",
		},
	}
}
