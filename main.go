package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"reel-pipeline/assets"
	"reel-pipeline/catalog"
	"reel-pipeline/config"
	"reel-pipeline/hosting"
	"reel-pipeline/instagram"
	"reel-pipeline/logging"
	"reel-pipeline/pipeline"
	"reel-pipeline/render"
	"reel-pipeline/script"
	"reel-pipeline/textgen"
	"reel-pipeline/timeline"
	"reel-pipeline/trends"
	"reel-pipeline/types"
)

func main() {
	var (
		productID  = flag.String("product", "", "catalog product id or handle (random when empty)")
		goal       = flag.String("goal", "", "reel goal: reach, engagement, or conversion (rotates by weekday when empty)")
		style      = flag.String("style", "", "music style: phonk, lofi, upbeat, or cinematic (random when empty)")
		hook       = flag.String("hook", "", "override the generated hook line")
		noPublish  = flag.Bool("no-publish", false, "render and host the reel but skip publishing")
		configPath = flag.String("config", "config.yaml", "path to the yaml config")
		timeout    = flag.Duration("timeout", 15*time.Minute, "deadline for the whole run")
	)
	flag.Parse()

	// .env is optional; real deployments export the variables directly.
	_ = godotenv.Load()

	if err := run(*productID, *goal, *style, *hook, *noPublish, *configPath, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(productID, goal, style, hook string, noPublish bool, configPath string, timeout time.Duration) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	log, err := logging.New(creds.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if creds.ShopifyDomain == "" || creds.ShopifyToken == "" {
		return fmt.Errorf("SHOPIFY_DOMAIN and SHOPIFY_STOREFRONT_ACCESS_TOKEN are required")
	}

	ollama := textgen.NewOllamaProvider(creds.OllamaHost)
	cascade := textgen.NewCascade([]textgen.Provider{
		ollama,
		textgen.NewGroqProvider(creds.GroqAPIKey, cfg.Script.GroqModel),
		textgen.NewGeminiProvider(creds.GeminiAPIKey),
	}, ollama, cfg.Script.MaxRetries, log)

	scout, err := trends.NewScout(creds, cfg.Trends, log)
	if err != nil {
		return fmt.Errorf("init trends scout: %w", err)
	}

	dl := assets.NewDownloader(log)
	synth := timeline.NewSynthesizer(creds, cfg.Timeline, dl, log)
	builder := timeline.NewBuilder(cfg.Timeline, timeline.NewTrackLibrary(), synth, dl, log)

	encoder, err := render.NewEncoder(cfg.Render, log)
	if err != nil {
		return err
	}

	// A nil *instagram.Client wrapped in the interface would not compare
	// equal to nil, so only assign when a client actually exists.
	var publisher pipeline.ReelPublisher
	if creds.MetaAccessToken != "" {
		publisher = instagram.NewClient(creds.MetaAccessToken, log)
	} else if !noPublish {
		log.Warn("META_ACCESS_TOKEN not set, run will skip publishing")
	}

	orch := pipeline.NewOrchestrator(
		cfg,
		catalog.NewStore(creds.ShopifyDomain, creds.ShopifyToken, log),
		scout,
		cascade,
		script.NewComposer(cascade, cfg.Script, log),
		dl,
		builder,
		encoder,
		hosting.NewUploader(cfg.Hosting, log),
		publisher,
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := orch.Run(ctx, pipeline.Options{
		ProductID:    productID,
		Goal:         types.Goal(goal),
		Style:        types.AudioStyle(style),
		HookOverride: hook,
		NoPublish:    noPublish,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
