package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"product-viewer/internal/asset"
	"product-viewer/internal/scene"
	"product-viewer/internal/texture"
)

// DefaultTargetSize is the largest dimension of a normalized model, in world units.
const DefaultTargetSize = 3

// Options configures a Loader.
type Options struct {
	// Placeholder is the image URI used for cube faces without a product image.
	Placeholder string
	// TargetSize is the normalized largest dimension.
	TargetSize float64
}

// Request names the model to load and the product images for the fallback cube.
type Request struct {
	URI    string
	Images []string
}

// Result is a loaded model. Warning is set when the cube replaced the
// requested model; Cause holds the recovered error in that case.
type Result struct {
	Model   *scene.Model
	Format  Format
	Warning string
	Cause   error
	Trace   []LoadState
}

// Fallback reports whether the cube stands in for the requested model.
func (r Result) Fallback() bool {
	return r.Warning != ""
}

// Loader dispatches on the model extension and falls back to the image cube.
type Loader struct {
	fetch    asset.Fetcher
	textures texture.Resolver
	opts     Options
	log      zerolog.Logger
}

// NewLoader creates a Loader.
func NewLoader(f asset.Fetcher, textures texture.Resolver, opts Options, log zerolog.Logger) *Loader {
	if opts.TargetSize <= 0 {
		opts.TargetSize = DefaultTargetSize
	}
	if opts.Placeholder == "" {
		opts.Placeholder = texture.PlaceholderURI
	}
	return &Loader{fetch: f, textures: textures, opts: opts, log: log}
}

// Load runs the load algorithm. progress receives 0–100 while bytes arrive
// with a known length and -1 otherwise. Recoverable failures become a cube
// with a warning; the returned error is non-nil only for *asset.FatalError
// or a cancelled context.
func (l *Loader) Load(ctx context.Context, req Request, progress func(pct float64)) (Result, error) {
	if progress == nil {
		progress = func(float64) {}
	}
	tr := NewTracker()
	log := l.log.With().Str("model", req.URI).Logger()

	if req.URI == "" {
		return l.cube(ctx, tr, req, "", nil)
	}

	format, ok := DetectFormat(req.URI)
	if !ok {
		cause := &UnsupportedFormatError{URI: req.URI, Ext: string(format)}
		warning := fmt.Sprintf("Unsupported 3D model format: .%s. Falling back to image-based model.", format)
		log.Warn().Err(cause).Msg("unsupported model format")
		return l.cube(ctx, tr, req, warning, cause)
	}

	m, err := l.loadModel(ctx, req.URI, format, progress)
	if err != nil {
		if ctx.Err() != nil {
			return Result{Trace: tr.Trace()}, ctx.Err()
		}
		warning := fmt.Sprintf("Failed to load %s model from %s. Falling back to image-based model.", format.Label(), req.URI)
		log.Warn().Err(err).Msg("model load failed")
		if terr := tr.To(StateError, err.Error()); terr != nil {
			return Result{}, terr
		}
		if terr := tr.To(StateLoading, ""); terr != nil {
			return Result{}, terr
		}
		return l.cube(ctx, tr, req, warning, err)
	}

	m.Normalize(l.opts.TargetSize)
	if err := tr.To(StateReady, ""); err != nil {
		return Result{}, err
	}
	progress(100)
	log.Debug().Str("format", string(format)).Int("triangles", m.Triangles()).Msg("model loaded")
	return Result{Model: m, Format: format, Trace: tr.Trace()}, nil
}

func (l *Loader) loadModel(ctx context.Context, uri string, format Format, progress func(float64)) (*scene.Model, error) {
	data, err := l.fetch.Fetch(ctx, uri, func(loaded, total int64) {
		if total > 0 {
			progress(100 * float64(loaded) / float64(total))
			return
		}
		progress(-1)
	})
	if err != nil {
		var fe *asset.FetchError
		if !errors.As(err, &fe) {
			err = &asset.FetchError{URI: uri, Err: err}
		}
		return nil, err
	}

	var m *scene.Model
	switch format {
	case FormatSTL:
		m, err = DecodeSTL(data)
	default:
		m, err = DecodeGLTF(data)
	}
	if err != nil {
		return nil, &DecodeError{URI: uri, Format: format, Err: err}
	}
	return m, nil
}

func (l *Loader) cube(ctx context.Context, tr *Tracker, req Request, warning string, cause error) (Result, error) {
	m, err := Cube(ctx, l.textures, req.Images, l.opts.Placeholder)
	if err != nil {
		if ctx.Err() != nil {
			return Result{Trace: tr.Trace()}, ctx.Err()
		}
		if terr := tr.To(StateError, err.Error()); terr != nil {
			return Result{}, terr
		}
		l.log.Error().Err(err).Msg("fallback model unavailable")
		return Result{Format: FormatCube, Trace: tr.Trace()}, err
	}
	if err := tr.To(StateReady, ""); err != nil {
		return Result{}, err
	}
	return Result{Model: m, Format: FormatCube, Warning: warning, Cause: cause, Trace: tr.Trace()}, nil
}
