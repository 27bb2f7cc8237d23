package geometry

import "math"

// Placement selects where a newly inserted layer is anchored within its
// target area.
type Placement string

// Supported placements for new layers.
const (
	PlaceTopLeft Placement = "top-left"
	PlaceCenter  Placement = "center"
)

// PositioningInput carries everything the positioning calculator needs.
//
// LayerWidth/LayerHeight are the layer's native (unscaled) image dimensions.
// CanvasWidth/CanvasHeight are the current output-canvas dimensions. When
// Viewport is nil the layer is fitted against the whole canvas (fit mode);
// when set, it is fitted against the currently visible part of the scrolled,
// zoomed preview (zoom mode) and the result is reprojected into canvas
// coordinates.
type PositioningInput struct {
	LayerWidth  float64
	LayerHeight float64

	CanvasWidth  float64
	CanvasHeight float64

	// ScaleFactor shrinks the fitted layer below the target area so it reads
	// as an overlay rather than a replacement. Zero means DefaultScaleFactor.
	ScaleFactor float64

	// Placement defaults to PlaceTopLeft when empty.
	Placement Placement

	Viewport *Viewport
}

// CalculateOptimalLayerPositioning computes the initial box for a newly
// added layer, in output-canvas coordinates.
//
// The layer is scaled to the target area's fit ratio (clamped so a layer is
// never upscaled past native resolution) times the scale factor. In zoom
// mode the factor is additionally multiplied by how much of the image is
// visible, floored at MinVisibleScale, which keeps inserted layers visually
// proportionate whether the user is zoomed in tightly or viewing the whole
// image.
//
// This is a pure function (atom); zero-sized inputs are caller bugs.
func CalculateOptimalLayerPositioning(in PositioningInput) Rect {
	factor := in.ScaleFactor
	if factor <= 0 {
		factor = DefaultScaleFactor
	}

	target := Rect{Width: in.CanvasWidth, Height: in.CanvasHeight}
	if in.Viewport != nil {
		target = visibleImageRect(*in.Viewport)
		visible := (target.Width * target.Height) /
			(in.Viewport.ImageWidth * in.Viewport.ImageHeight)
		factor *= math.Max(MinVisibleScale, visible)
	}

	fit := math.Min(target.Width/in.LayerWidth, target.Height/in.LayerHeight)
	scale := math.Min(fit, 1) * factor
	if scale > 1 {
		scale = 1
	}

	box := Rect{
		X:      target.X,
		Y:      target.Y,
		Width:  in.LayerWidth * scale,
		Height: in.LayerHeight * scale,
	}
	if in.Placement == PlaceCenter {
		box.X = target.X + (target.Width-box.Width)/2
		box.Y = target.Y + (target.Height-box.Height)/2
	}

	if in.Viewport != nil {
		// Reproject from preview display pixels into output-canvas pixels.
		kx := in.CanvasWidth / in.Viewport.ImageWidth
		ky := in.CanvasHeight / in.Viewport.ImageHeight
		box.X *= kx
		box.Width *= kx
		box.Y *= ky
		box.Height *= ky
	}
	return box
}

// visibleImageRect returns the part of the rendered preview image currently
// inside the viewport, in image-local display pixels.
//
// The preview wrapper follows the editor's symmetric padding convention:
// wrapper = image ÷ 0.5, so the image occupies the middle 50% and starts at
// wrapper × 0.25 = image × 0.5 on each axis.
func visibleImageRect(vp Viewport) Rect {
	padX := vp.ImageWidth * 0.5
	padY := vp.ImageHeight * 0.5

	x0 := clamp(vp.ScrollLeft-padX, 0, vp.ImageWidth)
	x1 := clamp(vp.ScrollLeft+vp.ClientWidth-padX, 0, vp.ImageWidth)
	y0 := clamp(vp.ScrollTop-padY, 0, vp.ImageHeight)
	y1 := clamp(vp.ScrollTop+vp.ClientHeight-padY, 0, vp.ImageHeight)

	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
