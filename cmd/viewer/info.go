package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"product-viewer/internal/config"
	"product-viewer/internal/model"
)

func infoCmd() *cobra.Command {
	var images []string
	cmd := &cobra.Command{
		Use:   "info <model.stl|model.glb|model.gltf>",
		Short: "Display model information",
		Long:  "Load a model through the viewer's fallback chain and print its format, mesh and triangle counts and normalized bounds.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(config.Flags{})
			if err != nil {
				return err
			}
			return runInfo(cfg, args[0], images)
		},
	}
	cmd.Flags().StringSliceVar(&images, "images", nil, "Images for the fallback cube")
	return cmd
}

func runInfo(cfg config.Config, uri string, images []string) error {
	opts := viewerOptions(cfg, "")
	loader := model.NewLoader(opts.Fetcher, opts.Textures, model.Options{
		Placeholder: opts.Placeholder,
		TargetSize:  opts.TargetSize,
	}, log.Logger)
	res, err := loader.Load(context.Background(), model.Request{URI: uri, Images: images}, nil)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	defer res.Model.Dispose()

	m := res.Model
	fmt.Printf("Model:      %s\n", uri)
	fmt.Printf("Format:     %s\n", res.Format.Label())
	fmt.Println()
	fmt.Printf("Meshes:     %d\n", len(m.Meshes))
	fmt.Printf("Triangles:  %d\n", m.Triangles())
	fmt.Println()
	if lo, hi, ok := m.WorldBounds(); ok {
		size := hi.Sub(lo)
		fmt.Printf("Bounds Min: (%.3f, %.3f, %.3f)\n", lo[0], lo[1], lo[2])
		fmt.Printf("Bounds Max: (%.3f, %.3f, %.3f)\n", hi[0], hi[1], hi[2])
		fmt.Printf("Dimensions: %.3f x %.3f x %.3f\n", size[0], size[1], size[2])
	}
	fmt.Printf("Scale:      %.4f\n", m.Scale)
	if res.Warning != "" {
		fmt.Println()
		fmt.Printf("Warning:    %s\n", res.Warning)
		fmt.Printf("Cause:      %v\n", res.Cause)
	}
	return nil
}
