package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"product-viewer/internal/asset"
	"product-viewer/internal/config"
	"product-viewer/internal/scene"
	"product-viewer/internal/spin"
	"product-viewer/internal/texture"
	"product-viewer/internal/viewer"
)

var (
	configFile string
	baseDir    string
	assetDir   string
	verbose    bool
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	root := &cobra.Command{
		Use:   "viewer",
		Short: "Interactive 360° and 3D product viewer",
		Long: `viewer - Interactive 360° and 3D product viewer

Serves product pages with a 360° frame spinner and a 3D model viewer
(STL, GLB, glTF) that falls back to an image-textured cube.

Controls:
  Drag        - Rotate (shift/ctrl drag or zoomed in: pan)
  Scroll      - Zoom in/out
  Arrows      - Rotate 10°
  +/-         - Zoom
  0           - Reset view
  Space       - Toggle auto-rotate`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (.json, .yaml)")
	root.PersistentFlags().StringVar(&baseDir, "data", "", "Base directory (default: auto-detect)")
	root.PersistentFlags().StringVar(&assetDir, "assets", "", "Asset root (default: <data>/assets)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(serveCmd(), turntableCmd(), infoCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(flags config.Flags) (config.Config, error) {
	var cfg config.Config
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return cfg, err
		}
	}
	flags.BaseDir = baseDir
	flags.AssetDir = assetDir
	cfg.Resolve(flags)
	return cfg, nil
}

// viewerOptions builds the collaborators shared by every viewer. Relative
// asset URIs resolve below root; an empty root leaves local paths as given.
func viewerOptions(cfg config.Config, root string) viewer.Options {
	fetcher := asset.NewSource(root, nil, log.Logger)
	orbit := scene.DefaultOrbitOptions()
	orbit.FPS = cfg.FPS
	orbit.AutoRotateSpeed = cfg.AutoRotateSpeed
	orbit.Damping = !cfg.NoDamping
	return viewer.Options{
		Fetcher:     fetcher,
		Textures:    texture.NewCache(fetcher),
		Placeholder: cfg.Placeholder,
		TargetSize:  cfg.TargetSize,
		Spin: spin.Options{
			RotationSensitivity: cfg.RotationSensitivity,
			PanSensitivity:      cfg.PanSensitivity,
		},
		Orbit:       orbit,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		Log:         log.Logger,
	}
}

func printRule() {
	fmt.Println("------------------------------------------------------------")
}
