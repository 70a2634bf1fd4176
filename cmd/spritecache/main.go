package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/juju/loggo"

	"sprite-assets/internal/assets"
	"sprite-assets/internal/batch"
	"sprite-assets/internal/config"
	"sprite-assets/internal/manifest"
	"sprite-assets/internal/telemetry"
	"sprite-assets/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	assetDir := flag.String("assets", "", "Asset root directory (default: auto-detect)")
	manifestFile := flag.String("manifest", "", "Bundle manifest (default: <assets>/bundles.yaml)")
	outputDir := flag.String("output", "", "Output directory (default: sprite-exports next to assets)")
	bundleName := flag.String("bundle", "", "Export only this bundle")
	frameSize := flag.Int("size", 0, "Largest exported side in pixels (default: 128)")
	workers := flag.Int("workers", 0, "Number of bundles exported at once (default: NumCPU)")
	logSpec := flag.String("log", "", `Logging config, e.g. "<root>=DEBUG"`)

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// CLI flags override config file and environment
	cfg.Resolve(config.Flags{
		AssetDir:  *assetDir,
		Manifest:  *manifestFile,
		OutputDir: *outputDir,
		FrameSize: *frameSize,
		Workers:   *workers,
		Log:       *logSpec,
	})

	if err := loggo.ConfigureLoggers(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: bad -log value: %v\n", err)
		os.Exit(1)
	}

	if cfg.AssetDir == "" {
		fmt.Fprintln(os.Stderr, "Error: cannot find assets directory. Use -assets flag or config.json.")
		os.Exit(1)
	}

	if code := run(cfg, *bundleName); code != 0 {
		os.Exit(code)
	}
}

func run(cfg config.Config, bundleName string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, "spritecache")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: tracing disabled: %v\n", err)
	}
	defer shutdown(context.Background())

	// Load bundle manifest
	bundles, err := manifest.Parse(cfg.Manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		return 1
	}
	if bundleName != "" {
		b, err := manifest.Find(bundles, bundleName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		bundles = []assets.BundleDescriptor{b}
	}
	if len(bundles) == 0 {
		fmt.Println("No bundles to export.")
		return 0
	}

	// Build the loader over the texture store
	texIndex := texture.BuildIndex(cfg.AssetDir)
	decoder := texture.NewDecoder(cfg.AssetDir, texIndex, cfg.FetchTimeout())
	store := texture.NewStore(decoder, cfg.FetchWorkers)
	loader, err := assets.New(assets.Config{Backend: store})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := loader.UnloadAll(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: teardown: %v\n", err)
		}
	}()
	fmt.Printf("Textures: %d indexed\n", texIndex.Len())

	fmt.Println("Sprite bundle export → WebP")
	fmt.Printf("Bundles: %d, Workers: %d, Frame size: %d\n", len(bundles), cfg.Workers, cfg.FrameSize)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(ctx, batch.Config{
		Loader:    loader,
		OutputDir: cfg.OutputDir,
		FrameSize: cfg.FrameSize,
		Workers:   cfg.Workers,
	}, bundles)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, images := 0, 0
	var failures []batch.Result
	for _, r := range results {
		if r.Success {
			success++
			images += len(r.Images)
		} else {
			failures = append(failures, r)
		}
	}

	stats := loader.Stats()
	fmt.Printf("Exported: %d/%d assets, %d images\n", success, len(results), images)
	fmt.Printf("Fetches: %d, joins: %d, cache hits: %d, fetch time: %s\n",
		stats.Fetches, stats.Joins, stats.CacheHits, stats.FetchTime.Round(time.Millisecond))

	if len(failures) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failures))
		limit := min(len(failures), 20)
		for _, r := range failures[:limit] {
			fmt.Printf("  %s/%s: %s\n", r.Bundle, r.Alias, r.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if len(failures) > 0 {
		return 1
	}
	return 0
}
