package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Progress receives byte counts while an asset downloads. total is -1 when the
// transport does not expose a length.
type Progress func(loaded, total int64)

// Fetcher retrieves raw asset bytes by URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string, progress Progress) ([]byte, error)
}

// Source fetches http(s) URIs over the network and everything else from a
// local asset root.
type Source struct {
	Root   string
	Client *http.Client
	Log    zerolog.Logger
}

// NewSource creates a Source rooted at dir. A nil client gets a 30 s timeout.
func NewSource(dir string, client *http.Client, log zerolog.Logger) *Source {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Source{Root: dir, Client: client, Log: log}
}

// Fetch downloads uri. Every failure is returned as *FetchError.
func (s *Source) Fetch(ctx context.Context, uri string, progress Progress) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		data, err = s.fetchHTTP(ctx, uri, progress)
	default:
		data, err = s.fetchFile(ctx, uri, progress)
	}
	if err != nil {
		s.Log.Debug().Err(err).Str("uri", uri).Msg("fetch failed")
		return nil, &FetchError{URI: uri, Err: err}
	}
	return data, nil
}

func (s *Source) fetchHTTP(ctx context.Context, uri string, progress Progress) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return readAll(ctx, resp.Body, resp.ContentLength, progress)
}

func (s *Source) fetchFile(ctx context.Context, uri string, progress Progress) ([]byte, error) {
	name, err := s.resolvePath(uri)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", name)
	}
	return readAll(ctx, f, info.Size(), progress)
}

// resolvePath maps file:// URIs and rooted or relative paths below Root.
func (s *Source) resolvePath(uri string) (string, error) {
	p := uri
	if strings.HasPrefix(uri, "file://") {
		u, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "", fs.ErrNotExist
	}
	fp := filepath.FromSlash(p)
	if s.Root == "" {
		return fp, nil
	}
	if filepath.IsAbs(fp) {
		rel, err := filepath.Rel(s.Root, fp)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fp, nil
		}
	}
	// anything else is confined to Root
	return filepath.Join(s.Root, filepath.FromSlash(path.Clean("/"+filepath.ToSlash(p)))), nil
}

const (
	chunkSize = 32 * 1024
	// upper bound on the buffer reserved from a declared length
	maxPrealloc = 64 << 20
)

func readAll(ctx context.Context, r io.Reader, total int64, progress Progress) ([]byte, error) {
	if total < 0 {
		total = -1
	}
	var buf []byte
	if total > 0 {
		buf = make([]byte, 0, min(total, maxPrealloc))
	}
	chunk := make([]byte, chunkSize)
	var loaded int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			loaded += int64(n)
			if progress != nil {
				progress(loaded, total)
			}
		}
		if errors.Is(err, io.EOF) {
			return buf, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Static is an in-memory Fetcher keyed by URI.
type Static map[string][]byte

// Fetch returns a copy of the stored bytes or a *FetchError wrapping fs.ErrNotExist.
func (s Static) Fetch(ctx context.Context, uri string, progress Progress) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URI: uri, Err: err}
	}
	data, ok := s[uri]
	if !ok {
		return nil, &FetchError{URI: uri, Err: fs.ErrNotExist}
	}
	if progress != nil {
		progress(int64(len(data)), int64(len(data)))
	}
	return append([]byte(nil), data...), nil
}
