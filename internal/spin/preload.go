package spin

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"product-viewer/internal/texture"
)

// Frames is the outcome of a best-effort preload. Images[i] is nil when
// frame i failed.
type Frames struct {
	Images []*image.NRGBA
	failed int
}

// Loaded returns the indices of frames that decoded, in order.
func (f *Frames) Loaded() []int {
	var out []int
	for i, img := range f.Images {
		if img != nil {
			out = append(out, i)
		}
	}
	return out
}

// Failed returns the number of frames that could not be loaded.
func (f *Frames) Failed() int {
	return f.failed
}

// Any reports whether at least one frame loaded.
func (f *Frames) Any() bool {
	return f.failed < len(f.Images)
}

// Nearest returns the loaded frame at i or the closest loaded one before it,
// wrapping around. ok is false when nothing loaded.
func (f *Frames) Nearest(i int) (idx int, img *image.NRGBA, ok bool) {
	n := len(f.Images)
	if n == 0 {
		return 0, nil, false
	}
	i = ((i % n) + n) % n
	for k := 0; k < n; k++ {
		j := ((i-k)%n + n) % n
		if f.Images[j] != nil {
			return j, f.Images[j], true
		}
	}
	return 0, nil, false
}

// Preload fetches every frame with a pool of workers. A failed frame is
// logged and left out; the others continue. The returned error is non-nil
// only when ctx ends first.
func Preload(ctx context.Context, r texture.Resolver, uris []string, workers int, log zerolog.Logger) (*Frames, error) {
	total := len(uris)
	frames := &Frames{Images: make([]*image.NRGBA, total)}
	if total == 0 {
		return frames, nil
	}
	if workers <= 0 {
		workers = 4
	}
	workers = min(workers, total)

	var failed atomic.Int64
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				img, err := r.Resolve(ctx, uris[idx])
				if err != nil {
					failed.Add(1)
					if ctx.Err() == nil {
						log.Warn().Err(err).Int("frame", idx).Str("uri", uris[idx]).Msg("frame failed to load")
					}
					continue
				}
				frames.Images[idx] = img
			}
		}()
	}

send:
	for i := range uris {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break send
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	frames.failed = int(failed.Load())
	log.Debug().Int("frames", total).Int("failed", frames.failed).Msg("frames preloaded")
	return frames, nil
}
