package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/juju/loggo"

	"sprite-assets/internal/assets"
	"sprite-assets/internal/texture"
)

func main() {
	root := flag.String("root", ".", "Asset root directory")
	timeout := flag.Duration("timeout", 30*time.Second, "Timeout for remote sources")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: sheetinfo [-root dir] <source>...")
		os.Exit(2)
	}
	if *verbose {
		loggo.ConfigureLoggers("<root>=DEBUG")
	}

	store := texture.NewStore(texture.NewDecoder(*root, texture.BuildIndex(*root), *timeout), 1)
	loader, err := assets.New(assets.Config{Backend: store})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	failed := 0
	for _, source := range flag.Args() {
		res, err := loader.LoadSpritesheet(ctx, source, source)
		if err != nil {
			fmt.Printf("FAIL %s: %v\n", source, err)
			failed++
			continue
		}
		describe(source, res)
	}
	if err := loader.UnloadAll(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func describe(source string, res assets.Resource) {
	switch r := res.(type) {
	case *texture.Sheet:
		b := r.Bounds()
		fmt.Printf("SHEET %s  image=%s  %dx%d  frames=%d\n", source, r.Source, b.Dx(), b.Dy(), len(r.Frames))
		for _, name := range r.FrameNames() {
			f := r.Frames[name]
			fmt.Printf("  %-32s %4d,%-4d %4dx%d\n", name, f.Min.X, f.Min.Y, f.Dx(), f.Dy())
		}
	case *texture.Texture:
		b := r.Bounds()
		fmt.Printf("IMAGE %s  %dx%d\n", source, b.Dx(), b.Dy())
	default:
		fmt.Printf("???   %s  %T\n", source, res)
	}
}
