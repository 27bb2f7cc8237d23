// Package preview renders quick server-side thumbnails of an editing
// session without a round-trip to imagor. It applies the same pipeline
// order as the renderer of record: crop, resize, padding fill, rotation,
// layer compositing, proportion. Output fidelity is thumbnail-grade;
// imagor remains authoritative for final renders.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"

	"go_editor/editor"
	"go_editor/geometry"
)

// Compositor errors
var (
	ErrEmptyImage    = errors.New("preview: empty image data")
	ErrInvalidImage  = errors.New("preview: invalid image data")
	ErrZeroSizedBase = errors.New("preview: state produces a zero-sized output")
)

// DefaultMaxSize caps the longest preview edge when no limit is configured.
const DefaultMaxSize = 1024

// DecodeImage decodes image data from common formats (PNG, JPEG, GIF).
// This is a pure function with no side effects.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// EncodePNG serializes a composed preview as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("preview: png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseColor resolves a fill color string: #rgb or #rrggbb hex, or one of
// the named colors the editor exposes. The second return is false for
// unknown values, in which case callers fall back to transparent.
func ParseColor(s string) (color.Color, bool) {
	switch s {
	case "":
		return color.Transparent, false
	case "white":
		return color.White, true
	case "black":
		return color.Black, true
	case "none", "transparent":
		return color.Transparent, true
	}

	if len(s) == 4 && s[0] == '#' {
		// #rgb expands each nibble
		expanded := "#" + string([]byte{s[1], s[1], s[2], s[2], s[3], s[3]})
		return ParseColor(expanded)
	}
	if len(s) == 7 && s[0] == '#' {
		r, errR := strconv.ParseUint(s[1:3], 16, 8)
		g, errG := strconv.ParseUint(s[3:5], 16, 8)
		b, errB := strconv.ParseUint(s[5:7], 16, 8)
		if errR == nil && errG == nil && errB == nil {
			return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, true
		}
	}
	return color.Transparent, false
}

// Compose renders the state into an RGBA thumbnail. base is the decoded
// source image; layerImages maps layer ids to their decoded images (missing
// entries are skipped). maxSize caps the longest output edge; zero or
// negative means DefaultMaxSize.
func Compose(s editor.State, base image.Image, layerImages map[string]image.Image, maxSize int) (*image.RGBA, error) {
	if base == nil {
		return nil, ErrInvalidImage
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	out := s.OutputSize()
	if out.Width <= 0 || out.Height <= 0 {
		return nil, ErrZeroSizedBase
	}
	canvas := s.CanvasSize()

	// Downscale factor from output pixels to preview pixels
	scale := 1.0
	if longest := math.Max(out.Width, out.Height); longest > float64(maxSize) {
		scale = float64(maxSize) / longest
	}
	// Canvas coordinates carry the proportion on top of the preview scale
	prop := s.Proportion
	if prop <= 0 {
		prop = 100
	}
	factor := prop / 100 * scale

	dst := image.NewRGBA(image.Rect(0, 0,
		atLeastOne(out.Width*scale), atLeastOne(out.Height*scale)))

	if fill, ok := ParseColor(s.FillColor); ok {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
	}

	// Base content box in canvas coordinates: the padded frame interior
	content := geometry.Rect{
		X:      s.Padding.Left,
		Y:      s.Padding.Top,
		Width:  canvas.Width - s.Padding.Horizontal(),
		Height: canvas.Height - s.Padding.Vertical(),
	}
	if content.Width > 0 && content.Height > 0 {
		src := cropBounds(base, s)
		rotated := rotateImage(base, src, s.Rotation)
		draw.ApproxBiLinear.Scale(dst, scaleRect(content, factor), rotated, rotated.Bounds(), draw.Over, nil)
	}

	for _, layer := range s.Layers {
		img, ok := layerImages[layer.ID]
		if !ok || img == nil {
			continue
		}
		composeLayer(dst, s, layer, img, canvas, factor)
	}

	return dst, nil
}

// composeLayer draws one layer at its resolved canvas position.
func composeLayer(dst *image.RGBA, s editor.State, layer editor.Layer, img image.Image, canvas geometry.Size, factor float64) {
	foot := geometry.CalculateLayerFootprint(
		geometry.Size{Width: layer.Width, Height: layer.Height},
		layer.Padding, layer.Rotation)

	x := geometry.ResolveAxisOffset(layer.X, foot.Width, canvas.Width, s.Padding.Left)
	y := geometry.ResolveAxisOffset(layer.Y, foot.Height, canvas.Height, s.Padding.Top)

	// Padding fill bakes the footprint background
	if fill, ok := ParseColor(layer.FillColor); ok && layer.FillColor != "" {
		footRect := scaleRect(geometry.Rect{X: x, Y: y, Width: foot.Width, Height: foot.Height}, factor)
		draw.Draw(dst, footRect, image.NewUniform(fill), image.Point{}, draw.Over)
	}

	// The image sits inside the footprint offset by the rotated padding
	rp := geometry.RotatePadding(layer.Padding, layer.Rotation)
	w, h := layer.Width, layer.Height
	if layer.Rotation.SwapsAxes() {
		w, h = h, w
	}
	imgRect := scaleRect(geometry.Rect{X: x + rp.Left, Y: y + rp.Top, Width: w, Height: h}, factor)

	rotated := rotateImage(img, img.Bounds(), layer.Rotation)

	if layer.Alpha > 0 {
		// Alpha is the transparency percentage; scale first, then mask
		scaled := image.NewRGBA(image.Rect(0, 0, imgRect.Dx(), imgRect.Dy()))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), rotated, rotated.Bounds(), draw.Src, nil)
		opacity := uint8(math.Round((100 - clampPercent(layer.Alpha)) / 100 * 255))
		mask := image.NewUniform(color.Alpha{A: opacity})
		draw.DrawMask(dst, imgRect, scaled, image.Point{}, mask, image.Point{}, draw.Over)
		return
	}

	draw.ApproxBiLinear.Scale(dst, imgRect, rotated, rotated.Bounds(), draw.Over, nil)
}

// cropBounds returns the source rectangle of the base image after the crop,
// clamped to the image bounds.
func cropBounds(base image.Image, s editor.State) image.Rectangle {
	bounds := base.Bounds()
	if s.CropWidth <= 0 || s.CropHeight <= 0 {
		return bounds
	}

	crop := image.Rect(
		bounds.Min.X+int(math.Round(s.CropLeft)),
		bounds.Min.Y+int(math.Round(s.CropTop)),
		bounds.Min.X+int(math.Round(s.CropLeft+s.CropWidth)),
		bounds.Min.Y+int(math.Round(s.CropTop+s.CropHeight)),
	)
	crop = crop.Intersect(bounds)
	if crop.Empty() {
		return bounds
	}
	return crop
}

// rotateImage returns the src sub-rectangle rotated by a quarter-turn
// rotation. Rotate0 copies are avoided by returning a sub-image view.
func rotateImage(img image.Image, src image.Rectangle, rotation geometry.Rotation) image.Image {
	if rotation.Normalize() == geometry.Rotate0 {
		if sub, ok := img.(interface {
			SubImage(image.Rectangle) image.Image
		}); ok {
			return sub.SubImage(src)
		}
	}

	w, h := src.Dx(), src.Dy()
	outW, outH := w, h
	if rotation.SwapsAxes() {
		outW, outH = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(src.Min.X+x, src.Min.Y+y)
			switch rotation.Normalize() {
			case geometry.Rotate90:
				dst.Set(h-1-y, x, c)
			case geometry.Rotate180:
				dst.Set(w-1-x, h-1-y, c)
			case geometry.Rotate270:
				dst.Set(y, w-1-x, c)
			default:
				dst.Set(x, y, c)
			}
		}
	}
	return dst
}

// scaleRect maps a canvas-space rectangle into integer preview pixels.
func scaleRect(r geometry.Rect, factor float64) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X*factor)),
		int(math.Round(r.Y*factor)),
		int(math.Round((r.X+r.Width)*factor)),
		int(math.Round((r.Y+r.Height)*factor)),
	)
}

func atLeastOne(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	return n
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
