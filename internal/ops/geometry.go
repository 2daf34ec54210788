package ops

import (
	"fmt"

	"github.com/hpungsan/slate/internal/errors"
	"github.com/hpungsan/slate/internal/geometry"
)

// AlignInput contains parameters for the Align operation.
type AlignInput struct {
	Boxes []geometry.Box
	Edge  string // left, right, top, bottom, center, middle
}

// DistributeInput contains parameters for the Distribute operation.
type DistributeInput struct {
	Boxes []geometry.Box
	Axis  string // horizontal, vertical
}

// MatchSizeInput contains parameters for the MatchSize operation.
type MatchSizeInput struct {
	Boxes     []geometry.Box
	Dimension string // width, height, both
	TargetID  string // required: the box whose size is copied
}

// SnapInput contains parameters for the Snap operation.
type SnapInput struct {
	Boxes []geometry.Box
	Grid  float64 // must be positive
}

// GeometryOutput contains the repositioned boxes, in input order.
type GeometryOutput struct {
	Boxes []geometry.Box `json:"boxes"`
}

// Align moves boxes to a shared edge or midpoint of the group.
func Align(input AlignInput) (*GeometryOutput, error) {
	edge := geometry.Edge(input.Edge)
	if !geometry.ValidEdge(edge) {
		return nil, errors.NewInvalidRequest("edge must be one of: left, right, top, bottom, center, middle")
	}
	return geometryOutput(geometry.Align(input.Boxes, edge)), nil
}

// Distribute spaces boxes so the gaps between them are equal.
func Distribute(input DistributeInput) (*GeometryOutput, error) {
	axis := geometry.Axis(input.Axis)
	if !geometry.ValidAxis(axis) {
		return nil, errors.NewInvalidRequest("axis must be one of: horizontal, vertical")
	}
	return geometryOutput(geometry.Distribute(input.Boxes, axis)), nil
}

// MatchSize copies the target box's width and/or height onto every box.
func MatchSize(input MatchSizeInput) (*GeometryOutput, error) {
	dim := geometry.Dimension(input.Dimension)
	if !geometry.ValidDimension(dim) {
		return nil, errors.NewInvalidRequest("dimension must be one of: width, height, both")
	}
	if input.TargetID == "" {
		return nil, errors.NewInvalidRequest("target_id is required")
	}
	for _, b := range input.Boxes {
		if b.ID == input.TargetID {
			return geometryOutput(geometry.MatchSize(input.Boxes, dim, b)), nil
		}
	}
	return nil, errors.NewInvalidRequest(fmt.Sprintf("target_id %q is not among the boxes", input.TargetID))
}

// Snap rounds box positions to a grid.
func Snap(input SnapInput) (*GeometryOutput, error) {
	if input.Grid <= 0 {
		return nil, errors.NewInvalidRequest("grid must be positive")
	}
	return geometryOutput(geometry.Snap(input.Boxes, input.Grid)), nil
}

func geometryOutput(boxes []geometry.Box) *GeometryOutput {
	if boxes == nil {
		boxes = []geometry.Box{}
	}
	return &GeometryOutput{Boxes: boxes}
}
