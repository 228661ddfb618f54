package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"product-viewer/internal/config"
	"product-viewer/internal/model"
	"product-viewer/internal/scene"
	"product-viewer/internal/turntable"
)

func turntableCmd() *cobra.Command {
	var (
		flags config.Flags
		view  string
		size  int
	)
	cmd := &cobra.Command{
		Use:   "turntable <model.stl|model.glb|model.gltf>",
		Short: "Render a model into a 360° frame sequence",
		Long: `Render a model into numbered WebP frames for the 360° spinner.

Frames are written to <output>/<model name>/frame_NNN.webp together with
a manifest.json. Models that fail to load fall back to the image cube.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if size > 0 {
				cfg.RenderSize = size
			}
			return runTurntable(cfg, args[0], scene.View(view))
		},
	}
	cmd.Flags().StringVar(&flags.OutputDir, "output", "", "Output directory (default: <data>/renders)")
	cmd.Flags().IntVar(&flags.Frames, "frames", 0, "Number of frames (default: 36)")
	cmd.Flags().IntVar(&flags.Workers, "workers", 0, "Number of worker goroutines (default: NumCPU)")
	cmd.Flags().IntVar(&size, "size", 0, "Frame size in pixels (default: 512)")
	cmd.Flags().StringVar(&view, "view", "perspective", "Camera preset")
	return cmd
}

func runTurntable(cfg config.Config, uri string, view scene.View) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := viewerOptions(cfg, "")
	loader := model.NewLoader(opts.Fetcher, opts.Textures, model.Options{
		Placeholder: opts.Placeholder,
		TargetSize:  opts.TargetSize,
	}, log.Logger)
	res, err := loader.Load(ctx, model.Request{URI: uri}, nil)
	if err != nil {
		return err
	}
	defer res.Model.Dispose()
	if res.Warning != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", res.Warning)
	}

	name := strings.TrimSuffix(path.Base(uri), path.Ext(uri))
	out := filepath.Join(cfg.OutputDir, name)

	fmt.Printf("Turntable: %s (%s, %d triangles)\n", uri, res.Format.Label(), res.Model.Triangles())
	fmt.Printf("Frames: %d at %dpx, Workers: %d\n", cfg.Frames, cfg.RenderSize, cfg.Workers)
	fmt.Printf("Output: %s\n", out)
	printRule()

	start := time.Now()
	results, err := turntable.Run(ctx, turntable.Config{
		OutputDir:   out,
		Source:      uri,
		Format:      string(res.Format),
		Frames:      cfg.Frames,
		Size:        cfg.RenderSize,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		View:        view,
		Log:         log.Logger,
	}, res.Model)
	if err != nil {
		return err
	}

	printRule()
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	var failed []turntable.Result
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	fmt.Printf("Rendered: %d/%d\n", len(results)-len(failed), len(results))
	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		for _, r := range failed[:min(len(failed), 20)] {
			fmt.Printf("  %s: %s\n", r.Image, r.Error)
		}
		return fmt.Errorf("%d frames failed", len(failed))
	}
	fmt.Printf("Manifest: %s\n", filepath.Join(out, "manifest.json"))
	return nil
}
