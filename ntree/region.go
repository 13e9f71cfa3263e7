package ntree

// An Axis describes the coordinates addressed on a single axis: a
// point, a half-open [start, stop) interval, or the full tree extent.
// The zero value addresses the full extent. A missing interval side
// inherits the matching tree bound.
type Axis struct {
	start    float64
	stop     float64
	hasStart bool
	hasStop  bool
	point    bool
}

// Point addresses the single finest-resolution cell containing c.
func Point(c float64) Axis {
	return Axis{start: c, point: true}
}

// Span addresses the half-open interval [start, stop).
func Span(start, stop float64) Axis {
	return Axis{start: start, stop: stop, hasStart: true, hasStop: true}
}

// From addresses [start, upper-bound).
func From(start float64) Axis {
	return Axis{start: start, hasStart: true}
}

// To addresses [lower-bound, stop).
func To(stop float64) Axis {
	return Axis{stop: stop, hasStop: true}
}

// Full addresses the whole axis.
func Full() Axis {
	return Axis{}
}

// A Region addresses a rectangular sub-range of a tree, one Axis per
// dimension. Missing trailing axes default to the full tree extent.
type Region []Axis
