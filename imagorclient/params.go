// Package imagorclient translates editor state into imagor transform
// requests: the URL parameter set via imagorpath, and an HTTP client for
// fetching rendered previews from a running imagor instance.
package imagorclient

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cshum/imagor/imagorpath"

	"go_editor/editor"
	"go_editor/geometry"
)

// BuildParams maps an editor state onto imagor's URL parameter set.
//
// The transform pipeline order matches the renderer: crop and resize are
// path segments, then filters run in sequence: padding, fill, rotate,
// one watermark per layer in z-order, proportion last.
func BuildParams(s editor.State) imagorpath.Params {
	p := imagorpath.Params{
		Image: s.Source,
	}

	if s.CropWidth > 0 && s.CropHeight > 0 {
		p.CropLeft = s.CropLeft
		p.CropTop = s.CropTop
		p.CropRight = s.CropLeft + s.CropWidth
		p.CropBottom = s.CropTop + s.CropHeight
	}

	if s.TargetWidth > 0 {
		p.Width = int(math.Round(s.TargetWidth))
	}
	if s.TargetHeight > 0 {
		p.Height = int(math.Round(s.TargetHeight))
	}
	p.FitIn = s.FitIn

	if !s.Padding.IsZero() {
		p.Filters = append(p.Filters, imagorpath.Filter{
			Name: "padding",
			Args: fmt.Sprintf("%d,%d,%d,%d",
				roundPx(s.Padding.Left), roundPx(s.Padding.Top),
				roundPx(s.Padding.Right), roundPx(s.Padding.Bottom)),
		})
	}

	if s.FillColor != "" {
		p.Filters = append(p.Filters, imagorpath.Filter{
			Name: "fill",
			Args: s.FillColor,
		})
	}

	if r := s.Rotation.Normalize(); r != geometry.Rotate0 {
		p.Filters = append(p.Filters, imagorpath.Filter{
			Name: "rotate",
			Args: strconv.Itoa(int(r)),
		})
	}

	canvas := s.CanvasSize()
	for _, layer := range s.Layers {
		p.Filters = append(p.Filters, watermarkFilter(s, layer, canvas))
	}

	if s.Proportion > 0 && s.Proportion != 100 {
		p.Filters = append(p.Filters, imagorpath.Filter{
			Name: "proportion",
			Args: strconv.FormatFloat(s.Proportion, 'f', -1, 64),
		})
	}

	return p
}

// watermarkFilter renders one layer as an imagor watermark filter:
// watermark(image, x, y, alpha[, w_ratio, h_ratio]).
func watermarkFilter(s editor.State, layer editor.Layer, canvas geometry.Size) imagorpath.Filter {
	args := layer.Source +
		"," + watermarkAxis(layer.X, s.Padding.Left) +
		"," + watermarkAxis(layer.Y, s.Padding.Top) +
		"," + strconv.Itoa(int(math.Round(layer.Alpha)))

	// Size the watermark as a percentage of the canvas when the layer
	// carries explicit dimensions
	if layer.Width > 0 && layer.Height > 0 && canvas.Width > 0 && canvas.Height > 0 {
		wRatio := layer.Width / canvas.Width * 100
		hRatio := layer.Height / canvas.Height * 100
		args += "," + formatRatio(wRatio) + "," + formatRatio(hRatio)
	}

	return imagorpath.Filter{Name: "watermark", Args: args}
}

// watermarkAxis renders one axis of the declarative position in imagor's
// x/y argument syntax: the alignment keyword, or a whole-pixel offset.
// An unset axis falls back to the base padding offset for that edge.
func watermarkAxis(pos geometry.AxisPosition, paddingFallback float64) string {
	if !pos.Defined() {
		return strconv.Itoa(roundPx(paddingFallback))
	}
	if pos.IsKeyword() {
		return string(pos.Keyword())
	}
	return strconv.Itoa(roundPx(pos.Value()))
}

func formatRatio(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func roundPx(v float64) int {
	return int(math.Round(v))
}
