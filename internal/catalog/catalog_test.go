package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-viewer/internal/viewer"
)

const productsYAML = `
- id: 2
  title: Rover
  images_360: [rover/00.webp, rover/01.webp]
- id: 1
  title: Arm
  model_3d: arm.glb
  images: [arm/front.png]
  is_featured: true
  display:
    view: left
    flip: x
- id: 3
  title: Sensor
  main_image: sensor.png
`

const productsJSON = `[
  {"id": 7, "title": "Drone", "model_3d": "drone.stl", "images_360": ["d0.png"]}
]`

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadYAML(t *testing.T) {
	f, err := Load(write(t, "products.yaml", productsYAML))
	require.NoError(t, err)

	ps, err := f.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 3)
	// featured first, then by id
	assert.Equal(t, []int{1, 2, 3}, []int{ps[0].ID, ps[1].ID, ps[2].ID})

	p, err := f.Product(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Rover", p.Title)
	assert.Len(t, p.Images360, 2)

	arm, err := f.Product(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, viewer.Display{View: "left", Flip: "x"}, arm.Display)
}

func TestLoadJSON(t *testing.T) {
	f, err := Load(write(t, "products.json", productsJSON))
	require.NoError(t, err)
	p, err := f.Product(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "drone.stl", p.Model3D)
}

func TestNotFound(t *testing.T) {
	f, err := New(nil)
	require.NoError(t, err)
	_, err = f.Product(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicateID(t *testing.T) {
	_, err := New([]Product{{ID: 1}, {ID: 1}})
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "catalog: read")

	_, err = Load(write(t, "bad.json", "{"))
	assert.ErrorContains(t, err, "catalog: parse")
}

func TestCancelledContext(t *testing.T) {
	f, err := New([]Product{{ID: 1}})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Products(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProductInput(t *testing.T) {
	arm := Product{ID: 1, Title: "Arm", Model3D: "arm.glb", Images360: []string{"a0.png"}}
	in := arm.Input("", 300, 200)
	assert.Equal(t, viewer.ModeModel, in.Mode)
	assert.Equal(t, "arm.glb", in.ModelURI)
	assert.Equal(t, []string{"a0.png"}, in.Images)
	assert.Equal(t, "Arm", in.Alt)
	assert.Equal(t, 300, in.Width)

	in = arm.Input(viewer.ModeSpin, 0, 0)
	assert.Equal(t, viewer.ModeSpin, in.Mode)
	assert.Equal(t, []string{"a0.png"}, in.Frames)

	sensor := Product{MainImage: "s.png"}
	assert.Equal(t, viewer.ModeSpin, sensor.Input("", 1, 1).Mode)
	assert.Equal(t, []string{"s.png"}, sensor.CubeImages())
	assert.Nil(t, Product{}.CubeImages())
}

const productsXML = `<?xml version="1.0"?>
<Catalog>
  <Category Index="1" Name="Robots">
    <Product ID="4" Title="Rover" Model3D="rover.glb" Featured="true">
      <Image360>rover/00.webp</Image360>
      <Image360>rover/01.webp</Image360>
      <Image>rover/front.png</Image>
    </Product>
    <Product ID="x" Title="Broken"/>
  </Category>
  <Category Index="2" Name="Sensors">
    <Product ID="5" Title="Lidar" MainImage="lidar.png" View="front" Flip="y" Color="#ff8800"/>
  </Category>
  <Category Index="bad" Name="Skipped">
    <Product ID="6" Title="Ghost"/>
  </Category>
</Catalog>`

func TestLoadXML(t *testing.T) {
	f, err := Load(write(t, "products.xml", productsXML))
	require.NoError(t, err)

	ps, err := f.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)

	rover := ps[0]
	assert.Equal(t, 4, rover.ID)
	assert.Equal(t, 1, rover.Category)
	assert.Equal(t, "Robots", rover.CategoryName)
	assert.True(t, rover.Featured)
	assert.Equal(t, []string{"rover/00.webp", "rover/01.webp"}, rover.Images360)
	assert.Equal(t, []string{"rover/front.png"}, rover.Images)

	lidar, err := f.Product(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Sensors", lidar.CategoryName)
	assert.Equal(t, viewer.Display{View: "front", Flip: "y", Color: "#ff8800"}, lidar.Display)
	assert.Equal(t, lidar.Display, lidar.Input("", 1, 1).Display)

	_, err = Load(write(t, "bad.xml", "<Catalog>"))
	assert.ErrorContains(t, err, "catalog: parse")
}
