// Package raster stamps trajectory segments into a 2 dimensional tree.
// A segment is walked at tree resolution and a circular brush footprint
// is written at every step, so a produced toolpath turns into attribute
// regions without the producer knowing anything about tree geometry.
package raster

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/voxelforge/voxtree/ntree"
)

// Stamper writes a circular brush of the given width along segments.
type Stamper struct {
	tree   *ntree.Tree
	bounds [][2]float64
	rows   []brushRow
	step   float64
}

// brushRow is one horizontal span of the brush footprint: a vertical
// offset from the brush center and the half width of the span there.
type brushRow struct {
	dy   float64
	half float64
}

// NewStamper returns a stamper for the given tree and brush width. The
// tree must be 2 dimensional.
func NewStamper(tree *ntree.Tree, width float64) (*Stamper, error) {
	if tree.Dims() != 2 {
		return nil, errors.New("stamping requires a 2 dimensional tree").
			WithType(ntree.ErrTypeConfig).
			WithTag("dimensions", tree.Dims())
	}
	if width <= 0 {
		return nil, errors.New("brush width is not positive").
			WithType(ntree.ErrTypeConfig).
			WithTag("width", width)
	}

	res := tree.Resolution()
	radius := width / 2

	var rows []brushRow
	for k := -int(math.Floor(radius / res[1])); k <= int(math.Floor(radius/res[1])); k++ {
		dy := float64(k) * res[1]
		half := math.Sqrt(radius*radius - dy*dy)
		if half < res[0]/2 {
			// Keep at least one cell per row so the brush outline stays
			// connected.
			half = res[0] / 2
		}
		rows = append(rows, brushRow{dy: dy, half: half})
	}

	return &Stamper{
		tree:   tree,
		bounds: tree.Bounds(),
		rows:   rows,
		step:   math.Min(res[0], res[1]),
	}, nil
}

// StampSegment walks the segment from one endpoint to the other at
// tree resolution and stamps the brush footprint at every step. The
// footprint is clipped to the tree bounds.
func (s *Stamper) StampSegment(from, to [2]float64, attrs []float64) error {
	dx := to[0] - from[0]
	dy := to[1] - from[1]

	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))/s.step)) + 1
	for i := 0; i < steps; i++ {
		f := 0.0
		if steps > 1 {
			f = float64(i) / float64(steps-1)
		}
		if err := s.stamp(from[0]+dx*f, from[1]+dy*f, attrs); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stamper) stamp(x, y float64, attrs []float64) error {
	for _, row := range s.rows {
		yy := y + row.dy
		if yy < s.bounds[1][0] || yy >= s.bounds[1][1] {
			continue
		}

		x0 := math.Max(x-row.half, s.bounds[0][0])
		x1 := math.Min(x+row.half, s.bounds[0][1])
		if x1 <= x0 {
			continue
		}

		region := ntree.Region{ntree.Span(x0, x1), ntree.Point(yy)}
		if err := s.tree.Set(region, attrs); err != nil {
			return err
		}
	}
	return nil
}
