package ntree

// Dense is a row-major array covering a discretized region. Its shape
// is the per-axis cell count; every cell holds one attribute vector,
// stored contiguously as the innermost extent.
type Dense struct {
	shape  []int
	stride []int
	arity  int
	data   []float64
}

func newDense(shape []int, arity int) *Dense {
	n := 1
	stride := make([]int, len(shape))
	for i := len(shape) - 1; i >= 0; i-- {
		stride[i] = n
		n *= shape[i]
	}
	return &Dense{
		shape:  append([]int(nil), shape...),
		stride: stride,
		arity:  arity,
		data:   make([]float64, n*arity),
	}
}

// Shape returns the per-axis cell counts.
func (d *Dense) Shape() []int {
	return append([]int(nil), d.shape...)
}

// Arity returns the attribute vector length stored per cell.
func (d *Dense) Arity() int {
	return d.arity
}

// Len returns the number of cells.
func (d *Dense) Len() int {
	return len(d.data) / d.arity
}

// At returns the attribute vector of the cell at the given per-axis
// index. The returned slice aliases the array storage.
func (d *Dense) At(idx ...int) []float64 {
	if len(idx) != len(d.shape) {
		panic("ntree: dense index dimension mismatch")
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= d.shape[i] {
			panic("ntree: dense index out of range")
		}
		off += x * d.stride[i]
	}
	off *= d.arity
	return d.data[off : off+d.arity]
}

// Values returns a copy of the raw row-major storage, cell after cell.
func (d *Dense) Values() []float64 {
	return append([]float64(nil), d.data...)
}

// fill assigns the same attribute vector to every cell.
func (d *Dense) fill(attrs []float64) {
	for i := 0; i < len(d.data); i += d.arity {
		copy(d.data[i:i+d.arity], attrs)
	}
}

// setBlock copies src into the region starting at the given per-axis
// cell offset. src must fit within the destination shape.
func (d *Dense) setBlock(offset []int, src *Dense) {
	d.copyRows(offset, src, make([]int, len(d.shape)), 0)
}

// copyRows walks the outer axes and copies contiguous runs along the
// innermost axis.
func (d *Dense) copyRows(offset []int, src *Dense, idx []int, axis int) {
	if axis == len(d.shape)-1 {
		dstOff := offset[axis] * d.stride[axis]
		srcOff := 0
		for i := 0; i < axis; i++ {
			dstOff += (offset[i] + idx[i]) * d.stride[i]
			srcOff += idx[i] * src.stride[i]
		}
		run := src.shape[axis] * src.arity
		copy(d.data[dstOff*d.arity:dstOff*d.arity+run], src.data[srcOff*src.arity:srcOff*src.arity+run])
		return
	}

	for i := 0; i < src.shape[axis]; i++ {
		idx[axis] = i
		d.copyRows(offset, src, idx, axis+1)
	}
	idx[axis] = 0
}
