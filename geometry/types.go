// Package geometry implements the pure coordinate-transform engine behind the
// image editor: initial layer placement, the bidirectional codec between the
// declarative imagor position format and on-screen display coordinates, edge
// and center snapping, and the output dimension pipeline.
//
// Every function in this package is a pure atom: synchronous, O(1), no I/O,
// no shared state. Calls are made per interaction frame (pointer move, resize
// tick), so nothing here allocates beyond its return values. Callers are
// responsible for guarding against zero-sized canvases before invoking
// anything that divides by a canvas dimension.
package geometry

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Alignment is a named edge or center position on one axis.
type Alignment string

// Alignment keywords as persisted in the declarative position format.
// Left/Center/Right apply to the x axis, Top/Center/Bottom to the y axis.
const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
	AlignTop    Alignment = "top"
	AlignBottom Alignment = "bottom"
)

// Tuning constants for interactive geometry. These match the thresholds the
// editor front-end was built around; the center snap-in distance (2%) is
// deliberately smaller than the escape distance (3%) so a layer near center
// does not flicker between aligned and free-floating during small drags.
const (
	// EdgeSnapDistance is the fixed pixel distance for edge snapping.
	EdgeSnapDistance = 8.0

	// CenterSnapRatio is the overlay-relative distance for snapping into center.
	CenterSnapRatio = 0.02

	// CenterEscapeRatio is the canvas-relative distance a drag must exceed to
	// break an existing center alignment.
	CenterEscapeRatio = 0.03

	// DefaultScaleFactor sizes newly inserted layers at 90% of the target area.
	DefaultScaleFactor = 0.9

	// MinVisibleScale floors the zoom-mode scale correction so layers inserted
	// while zoomed far in do not collapse to slivers.
	MinVisibleScale = 0.3

	// MinLayerDimension is the smallest width/height a resize may produce.
	MinLayerDimension = 1.0
)

type axisKind int

const (
	axisUnset axisKind = iota
	axisAlign
	axisOffset
)

// AxisPosition is the declarative position of a layer on a single axis: a
// named alignment keyword, a signed pixel offset, or unset (axis locked).
//
// Offset semantics follow the imagor convention: a non-negative value is an
// absolute offset from the canvas origin; a negative value is a distance into
// the canvas from the opposite edge, resolved as canvas + value − layer.
//
// The zero value is the unset position.
type AxisPosition struct {
	kind   axisKind
	align  Alignment
	offset float64
}

// Align returns an AxisPosition holding an alignment keyword.
func Align(a Alignment) AxisPosition {
	return AxisPosition{kind: axisAlign, align: a}
}

// Offset returns an AxisPosition holding a signed pixel offset.
func Offset(px float64) AxisPosition {
	return AxisPosition{kind: axisOffset, offset: px}
}

// Defined reports whether the axis carries a value. An undefined axis is
// locked: the codec leaves it untouched and rendering falls back to the base
// image padding.
func (p AxisPosition) Defined() bool { return p.kind != axisUnset }

// IsKeyword reports whether the position is an alignment keyword.
func (p AxisPosition) IsKeyword() bool { return p.kind == axisAlign }

// IsOffset reports whether the position is a numeric offset.
func (p AxisPosition) IsOffset() bool { return p.kind == axisOffset }

// IsCenter reports whether the position is the center keyword.
func (p AxisPosition) IsCenter() bool {
	return p.kind == axisAlign && p.align == AlignCenter
}

// Keyword returns the alignment keyword. Only meaningful when IsKeyword.
func (p AxisPosition) Keyword() Alignment { return p.align }

// Value returns the numeric offset. Only meaningful when IsOffset.
func (p AxisPosition) Value() float64 { return p.offset }

// String renders the position in the wire syntax: the keyword itself, or the
// offset as a plain number. Unset renders as the empty string.
func (p AxisPosition) String() string {
	switch p.kind {
	case axisAlign:
		return string(p.align)
	case axisOffset:
		return strconv.FormatFloat(p.offset, 'f', -1, 64)
	default:
		return ""
	}
}

// MarshalJSON preserves the persisted union format: alignment keywords
// marshal as strings, offsets as numbers, unset as null.
func (p AxisPosition) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case axisAlign:
		return json.Marshal(string(p.align))
	case axisOffset:
		return json.Marshal(p.offset)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string keyword, a signed number, or null.
func (p *AxisPosition) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = AxisPosition{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Align(Alignment(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*p = Offset(f)
		return nil
	}
	return fmt.Errorf("axis position must be a keyword or a number, got %s", data)
}

// Rotation is a layer or base-image rotation in degrees.
type Rotation int

// Supported rotations. Any other value is normalized with Normalize.
const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Normalize maps an arbitrary degree count onto [0, 360).
func (r Rotation) Normalize() Rotation {
	n := r % 360
	if n < 0 {
		n += 360
	}
	return n
}

// SwapsAxes reports whether the rotation exchanges width and height.
func (r Rotation) SwapsAxes() bool {
	n := r.Normalize()
	return n == Rotate90 || n == Rotate270
}

// Padding holds four independent non-negative edge paddings in pixels.
// Padding is stored unrotated and reinterpreted per display orientation via
// RotatePadding.
type Padding struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Horizontal returns the total left+right padding.
func (p Padding) Horizontal() float64 { return p.Left + p.Right }

// Vertical returns the total top+bottom padding.
func (p Padding) Vertical() float64 { return p.Top + p.Bottom }

// IsZero reports whether all four edges are zero.
func (p Padding) IsZero() bool {
	return p.Left == 0 && p.Right == 0 && p.Top == 0 && p.Bottom == 0
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is a pixel rectangle. Depending on context the coordinate space is
// either the output canvas or the on-screen overlay container.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Viewport describes the scrolled, zoomed preview the user is looking at.
// It is only consulted when the user has zoomed past fit scale; ImageWidth
// and ImageHeight are the rendered preview image size in display pixels.
type Viewport struct {
	ScrollLeft   float64 `json:"scrollLeft"`
	ScrollTop    float64 `json:"scrollTop"`
	ClientWidth  float64 `json:"clientWidth"`
	ClientHeight float64 `json:"clientHeight"`
	ImageWidth   float64 `json:"imageWidth"`
	ImageHeight  float64 `json:"imageHeight"`

	// Scale relates rendered preview pixels to output-canvas pixels.
	Scale float64 `json:"scale"`
}
