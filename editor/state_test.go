package editor_test

import (
	"testing"

	"go_editor/editor"
	"go_editor/geometry"
)

func baseState() editor.State {
	return editor.State{
		Source:       "gallery/beach.jpg",
		SourceWidth:  1000,
		SourceHeight: 800,
	}
}

func TestTransitionsDoNotMutateInput(t *testing.T) {
	s := baseState()
	s, layer := s.AddLayer("gallery/logo.png", 400, 300, nil)

	before, err := s.Encode()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.ApplyDisplay(layer.ID, geometry.Rect{X: 10, Y: 10, Width: 100, Height: 75},
		geometry.Size{Width: 500, Height: 400}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RemoveLayer(layer.ID); err != nil {
		t.Fatal(err)
	}
	_ = s.WithCrop(0, 0, 500, 400).WithPadding(geometry.Padding{Left: 10}).WithProportion(50)

	after, err := s.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Errorf("transitions mutated the input state:\nbefore %s\nafter  %s", before, after)
	}
}

func TestOutputAndCanvasSize(t *testing.T) {
	s := baseState().
		WithResize(500, 500, true).
		WithPadding(geometry.Padding{Left: 10, Right: 10}).
		WithProportion(50)

	// fit 0.5 → 500×400, +padding → 520×400
	if got := s.CanvasSize(); got != (geometry.Size{Width: 520, Height: 400}) {
		t.Errorf("canvas size = %+v, want 520×400", got)
	}
	// proportion applies only to the output size
	if got := s.OutputSize(); got != (geometry.Size{Width: 260, Height: 200}) {
		t.Errorf("output size = %+v, want 260×200", got)
	}
}

func TestStateEncodeDecodeRoundTrip(t *testing.T) {
	s := baseState().WithCrop(50, 40, 800, 600)
	s, _ = s.AddLayer("gallery/logo.png", 400, 300, nil)
	s.Layers[0].X = geometry.Align(geometry.AlignRight)
	s.Layers[0].Y = geometry.Offset(-25)

	data, err := s.Encode()
	if err != nil {
		t.Fatal(err)
	}
	back, err := editor.Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	if back.CropWidth != 800 || back.CropHeight != 600 {
		t.Errorf("crop lost in round trip: %+v", back)
	}
	if len(back.Layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(back.Layers))
	}
	x, y := back.Layers[0].X, back.Layers[0].Y
	if !x.IsKeyword() || x.Keyword() != geometry.AlignRight {
		t.Errorf("x = %v, want right keyword", x)
	}
	if !y.IsOffset() || y.Value() != -25 {
		t.Errorf("y = %v, want offset -25", y)
	}
}
