package geometry

import "strconv"

// CalculateLayerPosition resolves a declarative layer position into percent
// strings relative to the canvas, for overlay rendering.
//
// Per axis: alignment keywords resolve to the matching edge or the centered
// offset, non-negative offsets are absolute from the canvas origin, negative
// offsets are distances into the canvas from the far edge (canvas + value −
// layer), and an unset axis falls back to the owning image's padding. The
// result only feeds CSS-style rendering, so percent precision loss is fine.
//
// Example:
//
//	left, top := geometry.CalculateLayerPosition(
//	    geometry.Align(geometry.AlignRight), geometry.Align(geometry.AlignCenter),
//	    100, 50, 1000, 800, 0, 0)
//	// left == "90%", top == "46.875%"
func CalculateLayerPosition(x, y AxisPosition, layerWidth, layerHeight, canvasWidth, canvasHeight, fallbackPadLeft, fallbackPadTop float64) (leftPercent, topPercent string) {
	left := ResolveAxisOffset(x, layerWidth, canvasWidth, fallbackPadLeft)
	top := ResolveAxisOffset(y, layerHeight, canvasHeight, fallbackPadTop)
	return formatPercent(left / canvasWidth * 100), formatPercent(top / canvasHeight * 100)
}

// ResolveAxisOffset converts a single declarative axis value into a pixel
// offset from the canvas origin, using the same rules as
// CalculateLayerPosition but returning the raw pixel value.
func ResolveAxisOffset(p AxisPosition, layerDim, canvasDim, fallback float64) float64 {
	switch {
	case !p.Defined():
		return fallback
	case p.IsKeyword():
		switch p.Keyword() {
		case AlignCenter:
			return (canvasDim - layerDim) / 2
		case AlignRight, AlignBottom:
			return canvasDim - layerDim
		default: // left, top
			return 0
		}
	case p.Value() < 0:
		return canvasDim + p.Value() - layerDim
	default:
		return p.Value()
	}
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// RotatePadding permutes the four stored padding edges into the display
// orientation of a rotated owner.
//
// 90°: top→left, right→top, bottom→right, left→bottom. 180° swaps opposite
// pairs. 270° is the inverse permutation of 90°.
func RotatePadding(p Padding, rotation Rotation) Padding {
	switch rotation.Normalize() {
	case Rotate90:
		return Padding{Left: p.Top, Top: p.Right, Right: p.Bottom, Bottom: p.Left}
	case Rotate180:
		return Padding{Left: p.Right, Right: p.Left, Top: p.Bottom, Bottom: p.Top}
	case Rotate270:
		return Padding{Left: p.Bottom, Top: p.Left, Right: p.Top, Bottom: p.Right}
	default:
		return p
	}
}

// CalculateLayerImageDimensions recovers a layer's original (stored) image
// dimensions from its rendered display size.
//
// When fillColor is empty, padding was never baked into the rendered size, so
// the original dimensions equal the display dimensions after undoing any
// 90°/270° axis swap. When fillColor is set, the rendered size includes the
// rotated padding: subtract it, then undo the swap.
//
// This must invert exactly what CalculateLayerFootprint does; the round-trip
// is relied on by the display→declarative conversion.
func CalculateLayerImageDimensions(displayWidth, displayHeight float64, padding Padding, rotation Rotation, fillColor string) Size {
	w, h := displayWidth, displayHeight
	if fillColor != "" {
		rotated := RotatePadding(padding, rotation)
		w -= rotated.Horizontal()
		h -= rotated.Vertical()
	}
	if rotation.SwapsAxes() {
		w, h = h, w
	}
	return Size{Width: w, Height: h}
}

// CalculateLayerFootprint returns a layer's total on-canvas footprint: its
// image dimensions after the rotation axis swap, plus its rotated padding.
// The footprint is the box the declarative position places on the canvas.
func CalculateLayerFootprint(image Size, padding Padding, rotation Rotation) Size {
	w, h := image.Width, image.Height
	if rotation.SwapsAxes() {
		w, h = h, w
	}
	rotated := RotatePadding(padding, rotation)
	return Size{Width: w + rotated.Horizontal(), Height: h + rotated.Vertical()}
}
