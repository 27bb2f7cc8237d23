package editor

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"go_editor/geometry"
)

// ErrLayerNotFound is returned by layer transitions for unknown layer ids.
var ErrLayerNotFound = errors.New("layer not found")

// Layer is one composited overlay image. X and Y hold the declarative
// position; an unset axis is locked and cannot be dragged. Width and Height
// are the layer image dimensions in canvas pixels, before padding and
// rotation.
type Layer struct {
	ID     string `json:"id"`
	Source string `json:"source"`

	X geometry.AxisPosition `json:"x"`
	Y geometry.AxisPosition `json:"y"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Rotation geometry.Rotation `json:"rotation,omitempty"`
	Padding  geometry.Padding  `json:"padding"`

	// FillColor, when set, fills the layer padding and bakes it into the
	// rendered layer size.
	FillColor string `json:"fillColor,omitempty"`

	// Alpha is the watermark transparency percentage, 0 = opaque.
	Alpha float64 `json:"alpha,omitempty"`
}

// LayerPlacement tunes how a new layer is sized and anchored. The zero
// value means the positioning calculator's defaults (DefaultScaleFactor,
// top-left).
type LayerPlacement struct {
	ScaleFactor float64
	Placement   geometry.Placement
}

// AddLayer inserts a new layer sized and placed by the positioning
// calculator: fitted against the whole canvas, or against the visible part
// of the preview when a viewport is supplied. Returns the next state and
// the created layer.
func (s State) AddLayer(source string, nativeWidth, nativeHeight float64, viewport *geometry.Viewport) (State, Layer) {
	return s.AddLayerPlaced(source, nativeWidth, nativeHeight, viewport, LayerPlacement{})
}

// AddLayerPlaced is AddLayer with explicit placement tuning.
func (s State) AddLayerPlaced(source string, nativeWidth, nativeHeight float64, viewport *geometry.Viewport, place LayerPlacement) (State, Layer) {
	canvas := s.CanvasSize()
	box := geometry.CalculateOptimalLayerPositioning(geometry.PositioningInput{
		LayerWidth:   nativeWidth,
		LayerHeight:  nativeHeight,
		CanvasWidth:  canvas.Width,
		CanvasHeight: canvas.Height,
		ScaleFactor:  place.ScaleFactor,
		Placement:    place.Placement,
		Viewport:     viewport,
	})

	layer := Layer{
		ID:     uuid.NewString(),
		Source: source,
		X:      geometry.Offset(box.X),
		Y:      geometry.Offset(box.Y),
		Width:  box.Width,
		Height: box.Height,
	}

	next := s.clone()
	next.Layers = append(next.Layers, layer)
	return next, layer
}

// ApplyDisplay converts a live drag/resize rectangle for the given layer
// back into declarative state. overlay is the overlay container size (the
// rendered preview image size); resizing selects resize semantics.
func (s State) ApplyDisplay(layerID string, display geometry.Rect, overlay geometry.Size, resizing bool) (State, error) {
	idx := s.layerIndex(layerID)
	if idx < 0 {
		return s, fmt.Errorf("apply display to %s: %w", layerID, ErrLayerNotFound)
	}

	layer := s.Layers[idx]
	res := geometry.ConvertDisplayToLayerPosition(geometry.DisplayConversionInput{
		Display:   display,
		Overlay:   overlay,
		Canvas:    s.CanvasSize(),
		Padding:   layer.Padding,
		Rotation:  layer.Rotation,
		X:         layer.X,
		Y:         layer.Y,
		FillColor: layer.FillColor,
		Resizing:  resizing,
	})

	layer.Width = res.Transforms.Width
	layer.Height = res.Transforms.Height
	if res.X != nil {
		layer.X = *res.X
	}
	if res.Y != nil {
		layer.Y = *res.Y
	}

	next := s.clone()
	next.Layers[idx] = layer
	return next, nil
}

// RemoveLayer returns a copy without the given layer.
func (s State) RemoveLayer(layerID string) (State, error) {
	idx := s.layerIndex(layerID)
	if idx < 0 {
		return s, fmt.Errorf("remove layer %s: %w", layerID, ErrLayerNotFound)
	}
	next := s.clone()
	next.Layers = append(next.Layers[:idx], next.Layers[idx+1:]...)
	return next, nil
}

// RotateLayer returns a copy with the layer's rotation replaced. The stored
// padding is untouched; it is reinterpreted per orientation at render time.
func (s State) RotateLayer(layerID string, r geometry.Rotation) (State, error) {
	idx := s.layerIndex(layerID)
	if idx < 0 {
		return s, fmt.Errorf("rotate layer %s: %w", layerID, ErrLayerNotFound)
	}
	next := s.clone()
	next.Layers[idx].Rotation = r.Normalize()
	return next, nil
}

// UpdateLayer replaces a layer wholesale, keyed by its id.
func (s State) UpdateLayer(layer Layer) (State, error) {
	idx := s.layerIndex(layer.ID)
	if idx < 0 {
		return s, fmt.Errorf("update layer %s: %w", layer.ID, ErrLayerNotFound)
	}
	next := s.clone()
	next.Layers[idx] = layer
	return next, nil
}

// Layer returns the layer with the given id.
func (s State) Layer(layerID string) (Layer, bool) {
	idx := s.layerIndex(layerID)
	if idx < 0 {
		return Layer{}, false
	}
	return s.Layers[idx], true
}

// LayerOverlay resolves a layer's declarative position into the percent
// strings the preview overlay renders with.
func (s State) LayerOverlay(layer Layer) (leftPercent, topPercent string) {
	canvas := s.CanvasSize()
	foot := geometry.CalculateLayerFootprint(
		geometry.Size{Width: layer.Width, Height: layer.Height},
		layer.Padding, layer.Rotation)
	return geometry.CalculateLayerPosition(
		layer.X, layer.Y, foot.Width, foot.Height,
		canvas.Width, canvas.Height, s.Padding.Left, s.Padding.Top)
}

func (s State) layerIndex(layerID string) int {
	for i := range s.Layers {
		if s.Layers[i].ID == layerID {
			return i
		}
	}
	return -1
}
