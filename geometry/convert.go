package geometry

import "math"

// DisplayConversionInput is the full context for reprojecting a live
// drag/resize rectangle back into the declarative position format.
type DisplayConversionInput struct {
	// Display is the layer's current pixel rectangle inside the overlay
	// container (transient interaction state).
	Display Rect

	// Overlay is the overlay container size, which equals the rendered
	// preview image size.
	Overlay Size

	// Canvas is the output-canvas size.
	Canvas Size

	// Padding is the layer's stored (unrotated) padding.
	Padding Padding

	Rotation Rotation

	// X and Y are the layer's current declarative position. An unset axis is
	// locked: it is not draggable and the conversion leaves it untouched.
	X AxisPosition
	Y AxisPosition

	// FillColor is non-empty when padding is baked into the displayed size.
	FillColor string

	// Resizing distinguishes a resize tick from a drag move. Resizing never
	// breaks an existing center alignment.
	Resizing bool
}

// LayerTransforms is the updated layer image size, in canvas pixels.
type LayerTransforms struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DisplayConversionResult carries the converted declarative state. X and Y
// are nil for axes that were locked on input; Transforms is always set.
type DisplayConversionResult struct {
	X          *AxisPosition
	Y          *AxisPosition
	Transforms LayerTransforms
}

// ConvertDisplayToLayerPosition converts a live display rectangle into
// declarative layer state.
//
// The image size is recovered by inverting the render path (padding and
// rotation), clamped to MinLayerDimension. Each draggable axis then keeps
// its current anchoring as long as that representation can still express the
// position:
//
//   - a near anchoring (left/top keyword or non-negative offset) holds while
//     the footprint's near edge is at or past the canvas origin;
//   - a far anchoring (right/bottom keyword or negative offset) holds while
//     the footprint's far edge is inside the canvas;
//   - when the current form runs out, the axis switches to the opposite form,
//     and a far-edge offset of exactly zero is emitted as the clean
//     right/bottom keyword so the declarative format stays canonical;
//   - a footprint overflowing the canvas on both sides of an axis forces that
//     axis to center, so a layer can never get stuck off-canvas;
//   - a centered axis stays centered through any resize, and through drags
//     shorter than CenterEscapeRatio of the canvas dimension.
func ConvertDisplayToLayerPosition(in DisplayConversionInput) DisplayConversionResult {
	sx := in.Canvas.Width / in.Overlay.Width
	sy := in.Canvas.Height / in.Overlay.Height

	img := CalculateLayerImageDimensions(
		in.Display.Width*sx, in.Display.Height*sy,
		in.Padding, in.Rotation, in.FillColor)

	transforms := LayerTransforms{
		Width:  math.Max(MinLayerDimension, img.Width),
		Height: math.Max(MinLayerDimension, img.Height),
	}
	res := DisplayConversionResult{Transforms: transforms}

	foot := CalculateLayerFootprint(
		Size{Width: transforms.Width, Height: transforms.Height},
		in.Padding, in.Rotation)

	if in.X.Defined() {
		v := convertAxis(in.Display.X*sx, foot.Width, in.Canvas.Width, in.X, in.Resizing, AlignRight)
		res.X = &v
	}
	if in.Y.Defined() {
		v := convertAxis(in.Display.Y*sy, foot.Height, in.Canvas.Height, in.Y, in.Resizing, AlignBottom)
		res.Y = &v
	}
	return res
}

// convertAxis reprojects one axis. pos is the footprint's near-edge offset
// from the canvas origin, in canvas pixels; far is the keyword for the
// axis's far edge (right or bottom).
func convertAxis(pos, footprint, canvasDim float64, current AxisPosition, resizing bool, far Alignment) AxisPosition {
	// Overflow on both sides leaves no representable anchoring; force center.
	if pos < 0 && pos+footprint > canvasDim {
		return Align(AlignCenter)
	}

	farOffset := pos + footprint - canvasDim // negative while inside

	if current.IsCenter() {
		if resizing {
			return Align(AlignCenter)
		}
		centered := (canvasDim - footprint) / 2
		if math.Abs(pos-centered) < canvasDim*CenterEscapeRatio {
			return Align(AlignCenter)
		}
		if pos > centered {
			return farAnchored(pos, farOffset, far)
		}
		return nearAnchored(pos, farOffset, far)
	}

	if isFarAnchored(current, far) {
		return farAnchored(pos, farOffset, far)
	}
	return nearAnchored(pos, farOffset, far)
}

func isFarAnchored(p AxisPosition, far Alignment) bool {
	if p.IsKeyword() {
		return p.Keyword() == far
	}
	return p.IsOffset() && p.Value() < 0
}

// farAnchored emits the far-edge representation, falling back to absolute
// form once the far edge crosses outside the canvas.
func farAnchored(pos, farOffset float64, far Alignment) AxisPosition {
	switch {
	case farOffset < 0:
		return Offset(farOffset)
	case farOffset == 0:
		// Offset(0) would re-anchor to the origin; the flush position is the
		// keyword by definition.
		return Align(far)
	default:
		return Offset(pos)
	}
}

// nearAnchored emits the absolute representation, switching to the far-edge
// form once the near edge crosses the canvas origin.
func nearAnchored(pos, farOffset float64, far Alignment) AxisPosition {
	if pos >= 0 {
		return Offset(pos)
	}
	if farOffset == 0 {
		return Align(far)
	}
	return Offset(farOffset)
}
