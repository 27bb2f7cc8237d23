package geometry_test

import (
	"testing"

	"go_editor/geometry"
)

// Common fixture: 500×400 overlay rendering a 1000×800 canvas, so display
// coordinates scale ×2 per axis. No padding, no rotation, no fill unless a
// case says otherwise.
func baseInput() geometry.DisplayConversionInput {
	return geometry.DisplayConversionInput{
		Overlay: geometry.Size{Width: 500, Height: 400},
		Canvas:  geometry.Size{Width: 1000, Height: 800},
		X:       geometry.Offset(0),
		Y:       geometry.Offset(0),
	}
}

func TestConvertDisplayToLayerPositionAbsoluteDrag(t *testing.T) {
	in := baseInput()
	in.Display = geometry.Rect{X: 50, Y: 60, Width: 100, Height: 75}
	in.X = geometry.Offset(20)
	in.Y = geometry.Offset(30)

	got := geometry.ConvertDisplayToLayerPosition(in)

	if got.Transforms.Width != 200 || got.Transforms.Height != 150 {
		t.Errorf("transforms = %+v, want 200×150", got.Transforms)
	}
	if got.X == nil || !got.X.IsOffset() || got.X.Value() != 100 {
		t.Errorf("x = %v, want offset 100", got.X)
	}
	if got.Y == nil || !got.Y.IsOffset() || got.Y.Value() != 120 {
		t.Errorf("y = %v, want offset 120", got.Y)
	}
}

func TestConvertDisplayToLayerPositionFarAnchoring(t *testing.T) {
	tests := []struct {
		name     string
		current  geometry.AxisPosition
		displayX float64 // display px; canvas position is ×2
		want     geometry.AxisPosition
	}{
		{
			name:     "right keyword stays far-anchored",
			current:  geometry.Align(geometry.AlignRight),
			displayX: 350, // canvas 700, footprint 200 → far offset -100
			want:     geometry.Offset(-100),
		},
		{
			name:     "negative offset stays far-anchored",
			current:  geometry.Offset(-250),
			displayX: 350,
			want:     geometry.Offset(-100),
		},
		{
			name:     "exact flush far edge canonicalizes to the keyword",
			current:  geometry.Offset(-40),
			displayX: 400, // canvas 800 + 200 = canvas width exactly
			want:     geometry.Align(geometry.AlignRight),
		},
		{
			name:     "far edge crossing outside switches to absolute",
			current:  geometry.Offset(-40),
			displayX: 450, // canvas 900, far offset +100
			want:     geometry.Offset(900),
		},
		{
			name:     "near edge crossing origin switches to far form",
			current:  geometry.Offset(10),
			displayX: -20, // canvas -40, far offset -840
			want:     geometry.Offset(-840),
		},
		{
			name:     "absolute position stays near-anchored",
			current:  geometry.Offset(500),
			displayX: 150,
			want:     geometry.Offset(300),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			in.Display = geometry.Rect{X: tt.displayX, Y: 0, Width: 100, Height: 75}
			in.X = tt.current

			got := geometry.ConvertDisplayToLayerPosition(in)
			if got.X == nil || *got.X != tt.want {
				t.Errorf("x = %v, want %v", got.X, tt.want)
			}
		})
	}
}

func TestConvertDisplayToLayerPositionCenterBehavior(t *testing.T) {
	// Footprint 200 on a 1000 canvas: centered position is 400; the escape
	// threshold is 3% of the canvas, i.e. 30 canvas px.
	tests := []struct {
		name     string
		displayX float64
		resizing bool
		want     geometry.AxisPosition
	}{
		{
			name:     "small drag snaps back to center",
			displayX: 210, // canvas 420, 20 px from centered
			want:     geometry.Align(geometry.AlignCenter),
		},
		{
			name:     "drag past threshold escapes toward the far side",
			displayX: 220, // canvas 440 → far offset -360
			want:     geometry.Offset(-360),
		},
		{
			name:     "drag past threshold escapes toward the near side",
			displayX: 180, // canvas 360
			want:     geometry.Offset(360),
		},
		{
			name:     "resize never breaks center",
			displayX: 20,
			resizing: true,
			want:     geometry.Align(geometry.AlignCenter),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			in.Display = geometry.Rect{X: tt.displayX, Y: 0, Width: 100, Height: 75}
			in.X = geometry.Align(geometry.AlignCenter)
			in.Resizing = tt.resizing

			got := geometry.ConvertDisplayToLayerPosition(in)
			if got.X == nil || *got.X != tt.want {
				t.Errorf("x = %v, want %v", got.X, tt.want)
			}
		})
	}
}

func TestConvertDisplayToLayerPositionFullOverflowForcesCenter(t *testing.T) {
	in := baseInput()
	// 600-wide display box → 1200 canvas px footprint on a 1000 canvas,
	// positioned so it overhangs both edges.
	in.Display = geometry.Rect{X: -50, Y: 0, Width: 600, Height: 75}
	in.X = geometry.Offset(10)

	got := geometry.ConvertDisplayToLayerPosition(in)
	if got.X == nil || !got.X.IsCenter() {
		t.Errorf("x = %v, want center", got.X)
	}
}

func TestConvertDisplayToLayerPositionLockedAxis(t *testing.T) {
	in := baseInput()
	in.Display = geometry.Rect{X: 50, Y: 60, Width: 100, Height: 75}
	in.Y = geometry.AxisPosition{} // locked

	got := geometry.ConvertDisplayToLayerPosition(in)
	if got.Y != nil {
		t.Errorf("locked axis should stay untouched, got %v", got.Y)
	}
	if got.X == nil {
		t.Error("draggable axis should be emitted")
	}
}

func TestConvertDisplayToLayerPositionClampsTransforms(t *testing.T) {
	in := baseInput()
	in.Display = geometry.Rect{X: 0, Y: 0, Width: 0.2, Height: 0.1}

	got := geometry.ConvertDisplayToLayerPosition(in)
	if got.Transforms.Width != 1 || got.Transforms.Height != 1 {
		t.Errorf("transforms = %+v, want clamped to 1×1", got.Transforms)
	}
}

func TestConvertDisplayToLayerPositionWithRotatedPadding(t *testing.T) {
	in := geometry.DisplayConversionInput{
		// Overlay equals canvas, so display px are canvas px.
		Overlay:   geometry.Size{Width: 1000, Height: 800},
		Canvas:    geometry.Size{Width: 1000, Height: 800},
		Display:   geometry.Rect{X: 100, Y: 50, Width: 300, Height: 200},
		Padding:   geometry.Padding{Left: 10, Right: 20, Top: 5, Bottom: 15},
		Rotation:  geometry.Rotate90,
		FillColor: "#ffffff",
		X:         geometry.Offset(0),
		Y:         geometry.Offset(0),
	}

	got := geometry.ConvertDisplayToLayerPosition(in)

	// Rotated padding at 90°: left 5, top 20, right 15, bottom 10.
	// Image = (300-20)×(200-30) swapped → 170×280.
	if got.Transforms.Width != 170 || got.Transforms.Height != 280 {
		t.Errorf("transforms = %+v, want 170×280", got.Transforms)
	}
	// Footprint is back to the display size, so positions pass through.
	if got.X == nil || got.X.Value() != 100 {
		t.Errorf("x = %v, want offset 100", got.X)
	}
	if got.Y == nil || got.Y.Value() != 50 {
		t.Errorf("y = %v, want offset 50", got.Y)
	}
}
