package batch

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"sprite-assets/internal/assets"
	"sprite-assets/internal/postprocess"
	"sprite-assets/internal/texture"
)

var logger = loggo.GetLogger("sprites.batch")

// Config holds all shared resources for an export run.
type Config struct {
	Loader    *assets.Loader
	OutputDir string
	FrameSize int
	Workers   int
}

// Result holds the outcome of exporting one asset.
type Result struct {
	Bundle  string
	Alias   string
	Kind    string
	Images  []string
	Success bool
	Error   string
}

// Run exports every bundle using a worker pool. Each bundle is loaded,
// written out as WebP and unloaded again before the worker moves on.
func Run(ctx context.Context, cfg Config, bundles []assets.BundleDescriptor) []Result {
	total := len(bundles)
	perBundle := make([][]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					logger.Infof("[%d/%d] %.1f bundles/sec", p, total, float64(p)/elapsed)
				}
			}
		}
	}()

	workers := max(cfg.Workers, 1)
	bundleChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range bundleChan {
				perBundle[idx] = processBundle(ctx, cfg, bundles[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range bundles {
		bundleChan <- i
	}
	close(bundleChan)

	wg.Wait()
	close(done)

	var results []Result
	for _, rs := range perBundle {
		results = append(results, rs...)
	}
	return results
}

func processBundle(ctx context.Context, cfg Config, b assets.BundleDescriptor) []Result {
	results := make([]Result, len(b.Assets))
	for i, a := range b.Assets {
		results[i] = Result{Bundle: b.Name, Alias: a.Alias}
	}

	err := ctx.Err()
	if err == nil {
		err = cfg.Loader.LoadBundle(ctx, b)
	}
	if err != nil {
		for i := range results {
			results[i].Error = err.Error()
		}
		return results
	}
	defer func() {
		if err := cfg.Loader.UnloadBundle(context.WithoutCancel(ctx), b.Name); err != nil {
			logger.Warningf("unload bundle %q: %v", b.Name, err)
		}
	}()

	for i, a := range b.Assets {
		r := &results[i]
		// Normally a cache hit. Another worker unloading a bundle that
		// shares this asset can evict it first, in which case it is
		// fetched again on its own.
		res, err := cfg.Loader.LoadSpritesheet(ctx, a.Alias, a.Source)
		if err != nil {
			r.Error = err.Error()
			continue
		}
		switch res := res.(type) {
		case *texture.Sheet:
			r.Kind = "sheet"
			r.Images, err = exportSheet(cfg, b.Name, r.Alias, res)
		case *texture.Texture:
			r.Kind = "texture"
			var rel string
			rel, err = exportImage(cfg, filepath.Join(b.Name, r.Alias+".webp"), res.Image)
			r.Images = []string{rel}
		default:
			err = errors.NotSupportedf("resource %T", res)
		}
		if err != nil {
			r.Error = err.Error()
			continue
		}
		r.Success = true
	}
	return results
}

func exportSheet(cfg Config, bundle, alias string, sheet *texture.Sheet) ([]string, error) {
	names := sheet.FrameNames()
	images := make([]string, 0, len(names))
	for _, name := range names {
		img, _ := sheet.Frame(name)
		rel, err := exportImage(cfg, filepath.Join(bundle, alias, frameFile(name)), img)
		if err != nil {
			return nil, errors.Annotatef(err, "frame %q", name)
		}
		images = append(images, rel)
	}
	return images, nil
}

// frameFile turns a frame name such as "run/0.png" into "run_0.webp".
func frameFile(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	return name + ".webp"
}

// exportImage writes img, scaled to fit FrameSize, to rel under OutputDir
// and returns rel with forward slashes.
func exportImage(cfg Config, rel string, img *image.NRGBA) (string, error) {
	outPath := filepath.Join(cfg.OutputDir, rel)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return "", errors.Trace(err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return "", errors.Trace(err)
	}

	if err := nativewebp.Encode(f, postprocess.Fit(img, cfg.FrameSize), nil); err != nil {
		f.Close()
		return "", errors.Annotate(err, "WebP encode")
	}
	if err := f.Close(); err != nil {
		return "", errors.Trace(err)
	}
	return filepath.ToSlash(rel), nil
}
