package geometry

import "math"

// OutputDimensionsInput describes the transform pipeline state that
// determines the final rendered canvas size.
type OutputDimensionsInput struct {
	// SourceWidth and SourceHeight are the original image dimensions.
	SourceWidth  float64
	SourceHeight float64

	// CropWidth and CropHeight are the explicit crop region size; zero means
	// no crop on that axis.
	CropWidth  float64
	CropHeight float64

	// TargetWidth and TargetHeight are the requested resize; zero means the
	// axis is unconstrained.
	TargetWidth  float64
	TargetHeight float64

	// FitIn selects downscale-to-fit (never upscaling, aspect preserved)
	// instead of fill/exact sizing.
	FitIn bool

	// Padding is the base-image padding added after resizing.
	Padding Padding

	// Proportion is a final percentage scale over the fully padded canvas.
	// Zero and 100 both mean no scaling.
	Proportion float64
}

// CalculateOutputDimensions computes the final output canvas size for the
// pipeline crop → resize → padding → proportion.
//
// The ordering is load-bearing: proportion scales the entire padded canvas,
// not just the image, and padding is added after the resize step. Reordering
// any of these produces visibly different output.
//
// Example:
//
//	geometry.CalculateOutputDimensions(geometry.OutputDimensionsInput{
//	    SourceWidth: 1000, SourceHeight: 600,
//	    TargetWidth: 500, TargetHeight: 500, FitIn: true,
//	    Padding:    geometry.Padding{Left: 10, Right: 10},
//	    Proportion: 50,
//	})
//	// => {260, 150}: fit scale 0.5 → 500×300, +padding → 520×300, ×50% → 260×150
func CalculateOutputDimensions(in OutputDimensionsInput) Size {
	srcW := in.SourceWidth
	if in.CropWidth > 0 {
		srcW = in.CropWidth
	}
	srcH := in.SourceHeight
	if in.CropHeight > 0 {
		srcH = in.CropHeight
	}

	w, h := srcW, srcH
	if in.TargetWidth > 0 || in.TargetHeight > 0 {
		if in.FitIn {
			scale := 1.0
			if in.TargetWidth > 0 {
				scale = math.Min(scale, in.TargetWidth/srcW)
			}
			if in.TargetHeight > 0 {
				scale = math.Min(scale, in.TargetHeight/srcH)
			}
			w = math.Round(srcW * scale)
			h = math.Round(srcH * scale)
		} else {
			// Fill, stretch, smart, or exact sizing: the request wins, with
			// the source dimension standing in for an unset axis.
			if in.TargetWidth > 0 {
				w = in.TargetWidth
			}
			if in.TargetHeight > 0 {
				h = in.TargetHeight
			}
		}
	}

	w += in.Padding.Horizontal()
	h += in.Padding.Vertical()

	if in.Proportion > 0 && in.Proportion != 100 {
		w = math.Round(w * in.Proportion / 100)
		h = math.Round(h * in.Proportion / 100)
	}
	return Size{Width: w, Height: h}
}
