// Package editor models an editing session as an immutable State value plus
// pure transition functions returning the next state. UI frameworks and
// transports stay outside: every transition takes the current value and
// explicit inputs, and nothing here mutates its receiver.
package editor

import (
	"encoding/json"
	"fmt"

	"go_editor/geometry"
)

// State is the complete editor document: the base image, its transform
// pipeline (crop → resize → padding → proportion), and the composited
// layers in z-order.
type State struct {
	// Source is the storage key or URL of the base image.
	Source       string  `json:"source"`
	SourceWidth  float64 `json:"sourceWidth"`
	SourceHeight float64 `json:"sourceHeight"`

	// Crop region, in source pixels. Zero width/height means no crop.
	CropLeft   float64 `json:"cropLeft,omitempty"`
	CropTop    float64 `json:"cropTop,omitempty"`
	CropWidth  float64 `json:"cropWidth,omitempty"`
	CropHeight float64 `json:"cropHeight,omitempty"`

	// Requested resize. Zero means the axis is unconstrained.
	TargetWidth  float64 `json:"targetWidth,omitempty"`
	TargetHeight float64 `json:"targetHeight,omitempty"`
	FitIn        bool    `json:"fitIn,omitempty"`

	Padding  geometry.Padding  `json:"padding"`
	Rotation geometry.Rotation `json:"rotation,omitempty"`

	// FillColor paints the padded area of the output canvas. Empty means
	// the renderer's default background.
	FillColor string `json:"fillColor,omitempty"`

	// Proportion is the final percentage scale over the padded canvas.
	// Zero and 100 both mean no scaling.
	Proportion float64 `json:"proportion,omitempty"`

	Layers []Layer `json:"layers,omitempty"`
}

// dimensionsInput maps the state onto the output dimension pipeline.
func (s State) dimensionsInput() geometry.OutputDimensionsInput {
	return geometry.OutputDimensionsInput{
		SourceWidth:  s.SourceWidth,
		SourceHeight: s.SourceHeight,
		CropWidth:    s.CropWidth,
		CropHeight:   s.CropHeight,
		TargetWidth:  s.TargetWidth,
		TargetHeight: s.TargetHeight,
		FitIn:        s.FitIn,
		Padding:      s.Padding,
		Proportion:   s.Proportion,
	}
}

// OutputSize returns the final rendered output size, proportion included.
func (s State) OutputSize() geometry.Size {
	return geometry.CalculateOutputDimensions(s.dimensionsInput())
}

// CanvasSize returns the layer coordinate canvas: the padded output area
// before proportion scaling. All layer geometry is expressed against this.
func (s State) CanvasSize() geometry.Size {
	in := s.dimensionsInput()
	in.Proportion = 100
	return geometry.CalculateOutputDimensions(in)
}

// WithCrop returns a copy with the crop region replaced. A zero-sized
// region clears the crop.
func (s State) WithCrop(left, top, width, height float64) State {
	next := s.clone()
	next.CropLeft, next.CropTop = left, top
	next.CropWidth, next.CropHeight = width, height
	return next
}

// WithResize returns a copy with the resize request replaced.
func (s State) WithResize(width, height float64, fitIn bool) State {
	next := s.clone()
	next.TargetWidth, next.TargetHeight = width, height
	next.FitIn = fitIn
	return next
}

// WithPadding returns a copy with the base padding replaced.
func (s State) WithPadding(p geometry.Padding) State {
	next := s.clone()
	next.Padding = p
	return next
}

// WithFillColor returns a copy with the canvas fill color replaced.
func (s State) WithFillColor(color string) State {
	next := s.clone()
	next.FillColor = color
	return next
}

// WithProportion returns a copy with the proportion percentage replaced.
func (s State) WithProportion(percent float64) State {
	next := s.clone()
	next.Proportion = percent
	return next
}

// WithRotation returns a copy with the base rotation replaced.
func (s State) WithRotation(r geometry.Rotation) State {
	next := s.clone()
	next.Rotation = r.Normalize()
	return next
}

// clone copies the state, including the layer slice, so transitions never
// alias the previous value.
func (s State) clone() State {
	next := s
	if len(s.Layers) > 0 {
		next.Layers = make([]Layer, len(s.Layers))
		copy(next.Layers, s.Layers)
	}
	return next
}

// Encode serializes the state in its persisted JSON wire form.
func (s State) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode editor state: %w", err)
	}
	return data, nil
}

// Decode deserializes a persisted state.
func Decode(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("decode editor state: %w", err)
	}
	return s, nil
}
