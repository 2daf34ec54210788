// Package geometry aligns, distributes and resizes groups of element
// bounding boxes. All functions are pure: inputs are never modified.
package geometry

import (
	"math"
	"slices"
)

// Box is an element's bounding box in slide units.
type Box struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	W  float64 `json:"w"`
	H  float64 `json:"h"`
}

// Edge selects the alignment reference.
type Edge string

const (
	EdgeLeft   Edge = "left"
	EdgeRight  Edge = "right"
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
	EdgeCenter Edge = "center" // horizontal midpoint
	EdgeMiddle Edge = "middle" // vertical midpoint
)

// Axis selects the distribution direction.
type Axis string

const (
	AxisHorizontal Axis = "horizontal"
	AxisVertical   Axis = "vertical"
)

// Dimension selects which size to copy in MatchSize.
type Dimension string

const (
	DimensionWidth  Dimension = "width"
	DimensionHeight Dimension = "height"
	DimensionBoth   Dimension = "both"
)

// Rect is an axis-aligned bounding rectangle.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Bounds returns the bounding rectangle of boxes. The zero Rect is returned
// for an empty slice.
func Bounds(boxes []Box) Rect {
	if len(boxes) == 0 {
		return Rect{}
	}
	r := Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, b := range boxes {
		r.MinX = math.Min(r.MinX, b.X)
		r.MinY = math.Min(r.MinY, b.Y)
		r.MaxX = math.Max(r.MaxX, b.X+b.W)
		r.MaxY = math.Max(r.MaxY, b.Y+b.H)
	}
	return r
}

// Align moves every box to the group's edge or midpoint.
// Fewer than 2 boxes are returned unchanged.
func Align(boxes []Box, edge Edge) []Box {
	out := slices.Clone(boxes)
	if len(out) < 2 {
		return out
	}

	r := Bounds(out)
	for i := range out {
		switch edge {
		case EdgeLeft:
			out[i].X = r.MinX
		case EdgeRight:
			out[i].X = r.MaxX - out[i].W
		case EdgeTop:
			out[i].Y = r.MinY
		case EdgeBottom:
			out[i].Y = r.MaxY - out[i].H
		case EdgeCenter:
			out[i].X = (r.MinX+r.MaxX)/2 - out[i].W/2
		case EdgeMiddle:
			out[i].Y = (r.MinY+r.MaxY)/2 - out[i].H/2
		}
	}
	return out
}

// Distribute spreads boxes along axis so the gaps between consecutive
// edges are equal. The first and last boxes stay in place.
// Fewer than 3 boxes are returned unchanged. The result keeps input order.
func Distribute(boxes []Box, axis Axis) []Box {
	out := slices.Clone(boxes)
	if len(out) < 3 {
		return out
	}

	pos := func(b Box) float64 {
		if axis == AxisVertical {
			return b.Y
		}
		return b.X
	}
	size := func(b Box) float64 {
		if axis == AxisVertical {
			return b.H
		}
		return b.W
	}

	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		pa, pb := pos(out[a]), pos(out[b])
		switch {
		case pa < pb:
			return -1
		case pa > pb:
			return 1
		}
		return 0
	})

	first, last := out[order[0]], out[order[len(order)-1]]
	start := pos(first)
	end := pos(last) + size(last)

	occupied := 0.0
	for _, b := range out {
		occupied += size(b)
	}
	gap := ((end - start) - occupied) / float64(len(out)-1)

	cursor := start
	for _, idx := range order {
		if axis == AxisVertical {
			out[idx].Y = cursor
		} else {
			out[idx].X = cursor
		}
		cursor += size(out[idx]) + gap
	}
	return out
}

// MatchSize copies target's width and/or height onto every box.
func MatchSize(boxes []Box, dimension Dimension, target Box) []Box {
	out := slices.Clone(boxes)
	for i := range out {
		if dimension == DimensionWidth || dimension == DimensionBoth {
			out[i].W = target.W
		}
		if dimension == DimensionHeight || dimension == DimensionBoth {
			out[i].H = target.H
		}
	}
	return out
}

// Snap rounds every box position to the nearest multiple of grid.
// A non-positive grid returns boxes unchanged.
func Snap(boxes []Box, grid float64) []Box {
	out := slices.Clone(boxes)
	if grid <= 0 {
		return out
	}
	for i := range out {
		out[i].X = math.Round(out[i].X/grid) * grid
		out[i].Y = math.Round(out[i].Y/grid) * grid
	}
	return out
}

// ValidEdge reports whether e is a known alignment edge.
func ValidEdge(e Edge) bool {
	switch e {
	case EdgeLeft, EdgeRight, EdgeTop, EdgeBottom, EdgeCenter, EdgeMiddle:
		return true
	}
	return false
}

// ValidAxis reports whether a is a known distribution axis.
func ValidAxis(a Axis) bool {
	return a == AxisHorizontal || a == AxisVertical
}

// ValidDimension reports whether d is a known size dimension.
func ValidDimension(d Dimension) bool {
	return d == DimensionWidth || d == DimensionHeight || d == DimensionBoth
}
