package gpu

import "fmt"

// Topology is a primitive assembly mode.
type Topology int

const (
	TriangleList Topology = iota
	TriangleStrip
	TriangleFan
)

func (t Topology) String() string {
	switch t {
	case TriangleList:
		return "triangle-list"
	case TriangleStrip:
		return "triangle-strip"
	case TriangleFan:
		return "triangle-fan"
	}
	return fmt.Sprintf("Topology(%d)", int(t))
}

// TriangleIndices expands n vertices drawn with topology t into a triangle
// list. Strip triangles alternate their first two indices so that every
// triangle has the winding of the first one.
func TriangleIndices(t Topology, n int) ([]uint16, error) {
	if n < 3 {
		return nil, fmt.Errorf("%w: %s needs at least 3 vertices, got %d", ErrTopology, t, n)
	}
	if n > 1<<16 {
		return nil, fmt.Errorf("%w: too many vertices: %d", ErrTopology, n)
	}
	var is []uint16
	switch t {
	case TriangleList:
		if n%3 != 0 {
			return nil, fmt.Errorf("%w: triangle-list vertex count %d is not a multiple of 3", ErrTopology, n)
		}
		is = make([]uint16, n)
		for i := range is {
			is[i] = uint16(i)
		}
	case TriangleStrip:
		is = make([]uint16, 0, 3*(n-2))
		for i := 0; i < n-2; i++ {
			a, b, c := uint16(i), uint16(i+1), uint16(i+2)
			if i%2 == 1 {
				a, b = b, a
			}
			is = append(is, a, b, c)
		}
	case TriangleFan:
		is = make([]uint16, 0, 3*(n-2))
		for i := 1; i < n-1; i++ {
			is = append(is, 0, uint16(i), uint16(i+1))
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrTopology, t)
	}
	return is, nil
}
