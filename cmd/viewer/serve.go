package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"product-viewer/internal/catalog"
	"product-viewer/internal/config"
	"product-viewer/internal/server"
)

func serveCmd() *cobra.Command {
	var flags config.Flags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve product pages and viewer sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			cat, err := catalog.Load(cfg.Catalog)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Options{
				Catalog:        cat,
				Viewer:         viewerOptions(cfg, cfg.AssetDir),
				AssetDir:       cfg.AssetDir,
				Width:          cfg.Width,
				Height:         cfg.Height,
				AutoRotate:     cfg.AutoRotate,
				RotationPeriod: cfg.RotationPeriod(),
				Log:            log.Logger,
			})
			log.Info().Str("catalog", cfg.Catalog).Str("assets", cfg.AssetDir).Msg("catalog loaded")
			return srv.ListenAndServe(ctx, cfg.Addr)
		},
	}
	cmd.Flags().StringVar(&flags.Addr, "addr", "", "Listen address (default: :8080)")
	cmd.Flags().StringVar(&flags.Catalog, "catalog", "", "Product list (.json, .yaml)")
	cmd.Flags().IntVar(&flags.Width, "width", 0, "Viewport width (default: 400)")
	cmd.Flags().IntVar(&flags.Height, "height", 0, "Viewport height (default: 400)")
	return cmd
}
