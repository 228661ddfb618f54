// Package catalog is the read-only product repository the host builds
// viewer inputs from.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"product-viewer/internal/viewer"
)

// ErrNotFound is returned for an unknown product id.
var ErrNotFound = errors.New("catalog: product not found")

// Product is one catalog entry.
type Product struct {
	ID           int      `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Subtitle     string   `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category     int      `json:"category_id,omitempty" yaml:"category_id,omitempty"`
	CategoryName string   `json:"category,omitempty" yaml:"category,omitempty"`
	MainImage    string   `json:"main_image,omitempty" yaml:"main_image,omitempty"`
	Images360    []string `json:"images_360,omitempty" yaml:"images_360,omitempty"`
	Model3D      string   `json:"model_3d,omitempty" yaml:"model_3d,omitempty"`
	Images       []string `json:"images,omitempty" yaml:"images,omitempty"`
	Featured     bool     `json:"is_featured,omitempty" yaml:"is_featured,omitempty"`

	// Display poses the 3D model when it loads.
	Display viewer.Display `json:"display,omitempty" yaml:"display,omitempty"`
}

// CubeImages returns the images used to texture the fallback cube.
func (p Product) CubeImages() []string {
	switch {
	case len(p.Images) > 0:
		return p.Images
	case len(p.Images360) > 0:
		return p.Images360
	case p.MainImage != "":
		return []string{p.MainImage}
	}
	return nil
}

// Input builds the viewer input for p. An empty mode picks the 3D viewer
// when the product has a model.
func (p Product) Input(mode viewer.Mode, width, height int) viewer.Input {
	if mode == "" {
		mode = viewer.ModeSpin
		if p.Model3D != "" {
			mode = viewer.ModeModel
		}
	}
	return viewer.Input{
		Mode:     mode,
		Frames:   p.Images360,
		ModelURI: p.Model3D,
		Images:   p.CubeImages(),
		Alt:      p.Title,
		Width:    width,
		Height:   height,
		Display:  p.Display,
	}
}

// Source supplies products.
type Source interface {
	Products(ctx context.Context) ([]Product, error)
	Product(ctx context.Context, id int) (Product, error)
}

// File is a Source backed by a JSON or YAML list loaded once.
type File struct {
	products []Product
	byID     map[int]int
}

// Load reads a JSON, YAML or XML product list, chosen by extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var products []Product
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &products)
	case ".xml":
		products, err = parseXML(data)
	default:
		err = json.Unmarshal(data, &products)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	f, err := New(products)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return f, nil
}

// New indexes products. Featured products sort first, then by id.
func New(products []Product) (*File, error) {
	f := &File{
		products: append([]Product(nil), products...),
		byID:     make(map[int]int, len(products)),
	}
	sort.SliceStable(f.products, func(i, j int) bool {
		a, b := f.products[i], f.products[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		return a.ID < b.ID
	})
	for i, p := range f.products {
		if _, dup := f.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d", p.ID)
		}
		f.byID[p.ID] = i
	}
	return f, nil
}

// Products returns all products in display order.
func (f *File) Products(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Product(nil), f.products...), nil
}

// Product returns the product with id or ErrNotFound.
func (f *File) Product(ctx context.Context, id int) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	i, ok := f.byID[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return f.products[i], nil
}
