package geometry

import "math"

// SnapFlags records, per axis, whether the position was snapped to center.
// Edge snaps do not set a flag; the UI only needs center guides.
type SnapFlags struct {
	X bool `json:"x"`
	Y bool `json:"y"`
}

// SnapResult is the snapped overlay position plus center-snap flags.
type SnapResult struct {
	X               float64   `json:"x"`
	Y               float64   `json:"y"`
	SnappedToCenter SnapFlags `json:"snappedToCenter"`
}

// ApplySnapping snaps a dragged overlay rectangle to the overlay container's
// edges and center. Axes are evaluated independently, in priority order:
// near edge within EdgeSnapDistance, then far edge within EdgeSnapDistance,
// then center within CenterSnapRatio of the overlay dimension. Edge snapping
// always wins over center snapping.
//
// When disabled, coordinates pass through unchanged with both flags false.
// Applying ApplySnapping to its own output returns the same coordinates.
func ApplySnapping(x, y, width, height, overlayWidth, overlayHeight float64, disabled bool) SnapResult {
	if disabled {
		return SnapResult{X: x, Y: y}
	}
	var res SnapResult
	res.X, res.SnappedToCenter.X = snapAxis(x, width, overlayWidth)
	res.Y, res.SnappedToCenter.Y = snapAxis(y, height, overlayHeight)
	return res
}

func snapAxis(pos, dim, overlayDim float64) (float64, bool) {
	if math.Abs(pos) <= EdgeSnapDistance {
		return 0, false
	}
	if math.Abs(pos+dim-overlayDim) <= EdgeSnapDistance {
		return overlayDim - dim, false
	}
	centered := (overlayDim - dim) / 2
	// When the overlay nearly fills the axis the centered position falls
	// inside an edge window and reapplying would edge-snap it; no center
	// snap happens there.
	if math.Abs(centered) <= EdgeSnapDistance {
		return pos, false
	}
	if math.Abs(pos-centered) <= overlayDim*CenterSnapRatio {
		return centered, true
	}
	return pos, false
}
