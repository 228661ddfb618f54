package turntable

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"product-viewer/internal/mathutil"
	"product-viewer/internal/postprocess"
	"product-viewer/internal/raster"
	"product-viewer/internal/scene"
)

// Config holds all shared settings for a turntable run.
type Config struct {
	OutputDir   string
	Source      string // recorded in the manifest
	Format      string
	Frames      int
	Size        int
	Supersample int
	Workers     int
	View        scene.View
	Log         zerolog.Logger
}

// Result holds the outcome of rendering one frame.
type Result struct {
	Index   int
	Angle   float64
	Image   string
	Success bool
	Error   string
}

// FrameName is the file name of frame i.
func FrameName(i int) string {
	return fmt.Sprintf("frame_%03d.webp", i)
}

// Angle is the turntable angle of frame i of n, in degrees. The first and
// last frames sit at 0° and 360° so the spin viewer maps angles back onto
// the same indices.
func Angle(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return 360 * float64(i) / float64(n-1)
}

// Run renders m into cfg.Frames frames with a worker pool and writes
// manifest.json next to them. m is only read.
func Run(ctx context.Context, cfg Config, m *scene.Model) ([]Result, error) {
	if cfg.Frames <= 0 {
		return nil, fmt.Errorf("turntable: need at least one frame, got %d", cfg.Frames)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Supersample <= 0 {
		cfg.Supersample = 1
	}
	if cfg.View == "" {
		cfg.View = scene.ViewPerspective
	}
	pos, err := scene.PresetPosition(cfg.View)
	if err != nil {
		return nil, fmt.Errorf("turntable: %w", err)
	}
	cam := scene.DefaultCamera()
	cam.Position = pos

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("turntable: create %s: %w", cfg.OutputDir, err)
	}

	total := cfg.Frames
	results := make([]Result, total)
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
					cfg.Log.Info().Int64("done", p).Int("total", total).
						Float64("fps", float64(p)/elapsed).Msg("rendering")
				}
			}
		}
	}()

	// Worker pool
	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = renderFrame(cfg, cam, m, idx)
				processed.Add(1)
			}
		}()
	}

send:
	for i := 0; i < total; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break send
		}
	}
	close(jobs)

	wg.Wait()
	close(done)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	man := Manifest{Source: cfg.Source, Format: cfg.Format, Size: cfg.Size}
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			continue
		}
		man.Frames = append(man.Frames, ManifestFrame{Index: r.Index, Angle: r.Angle, Image: r.Image})
	}
	if err := WriteManifest(filepath.Join(cfg.OutputDir, "manifest.json"), man); err != nil {
		return results, fmt.Errorf("turntable: write manifest: %w", err)
	}
	cfg.Log.Info().Int("frames", total).Int("failed", failed).
		Dur("elapsed", time.Since(start)).Msg("turntable done")
	return results, nil
}

func renderFrame(cfg Config, cam scene.Camera, m *scene.Model, idx int) Result {
	angle := Angle(idx, cfg.Frames)
	res := Result{Index: idx, Angle: angle, Image: FrameName(idx)}

	// a shallow copy shares the meshes; only the placement differs
	posed := *m
	posed.Rotation[1] = mathutil.WrapRadians(m.Rotation[1] + mathutil.Deg2Rad(angle))
	sc := scene.New()
	sc.Attach(&posed)

	img := raster.RenderScene(sc, cam, cfg.Size, cfg.Size, cfg.Supersample)
	if cfg.Supersample > 1 {
		img = postprocess.Downsample(img, cfg.Size, cfg.Size)
	}

	f, err := os.Create(filepath.Join(cfg.OutputDir, res.Image))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer f.Close()

	if err := postprocess.EncodeWebP(f, img); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Success = true
	return res
}
