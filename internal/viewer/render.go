package viewer

import (
	"fmt"
	"image"
	"math"

	"product-viewer/internal/postprocess"
	"product-viewer/internal/raster"
	"product-viewer/internal/scene"
)

// EmptyMessage is shown in spin mode when the product has no frames.
const EmptyMessage = "No 360° images available"

// Render draws the current presentation at the viewport size.
func (v *Viewer) Render() *image.NRGBA {
	w, h := v.in.Width, v.in.Height
	bg := v.scene.Background.NRGBA()

	switch v.state {
	case StateFatal:
		img := raster.ComposeFrame(nil, w, h, 1, 0, 0, bg)
		raster.DrawFatal(img, v.err.Error())
		return img
	case StateEmpty:
		img := raster.ComposeFrame(nil, w, h, 1, 0, 0, bg)
		raster.DrawMessage(img, EmptyMessage)
		return img
	case StateLoading:
		img := raster.ComposeFrame(nil, w, h, 1, 0, 0, bg)
		label := "Loading 360° view"
		if v.in.Mode == ModeModel {
			label = "Loading 3D model"
		}
		pct := v.progress
		if pct >= 0 {
			label = fmt.Sprintf("%s %d%%", label, int(math.Round(pct)))
		} else {
			pct = 0
		}
		raster.DrawLoading(img, label, pct)
		return img
	}

	var img *image.NRGBA
	if v.in.Mode == ModeModel {
		img = v.renderModel(w, h)
	} else {
		img = v.renderSpin(w, h)
	}
	if st := v.Status(); st.Warning != "" {
		raster.DrawWarning(img, st.Warning)
	}
	return img
}

func (v *Viewer) renderSpin(w, h int) *image.NRGBA {
	st := v.spinner.State()
	bg := scene.Background.NRGBA()

	var frame image.Image
	if v.placeholder != nil {
		frame = v.placeholder
	}
	if v.frames != nil {
		if _, f, ok := v.frames.Nearest(st.Frame); ok {
			frame = f
		}
	}
	img := raster.ComposeFrame(frame, w, h, st.Zoom, st.Pan.X, st.Pan.Y, bg)
	raster.DrawBadge(img, fmt.Sprintf("360° %3d%%", int(v.spinner.Progress()*100)))
	return img
}

func (v *Viewer) renderModel(w, h int) *image.NRGBA {
	ss := v.opts.Supersample
	img := raster.RenderScene(v.scene, v.orbit.Camera(), w, h, ss)
	if ss > 1 {
		img = postprocess.Downsample(img, w, h)
	}
	if v.format != "" {
		raster.DrawBadge(img, v.format.Label())
	}
	return img
}
