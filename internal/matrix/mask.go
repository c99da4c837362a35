package matrix

// StrideMask marks which lanes of the last vector block of a row hold real
// columns. Reductions multiply that block by Lanes() so padding lanes never
// contribute.
type StrideMask struct {
	lanes []float32
	bits  uint32
	real  int
}

// NewStrideMask builds the mask for a row of cols columns padded to a
// multiple of lanes.
func NewStrideMask(cols, lanes int) StrideMask {
	used := cols % lanes
	if used == 0 {
		used = lanes
	}
	m := StrideMask{
		lanes: make([]float32, lanes),
		real:  used,
	}
	for i := range used {
		m.lanes[i] = 1
		m.bits |= 1 << uint(i)
	}
	return m
}

// Lanes returns the per-lane weights (1 for real data, 0 for padding).
func (m StrideMask) Lanes() []float32 {
	return m.lanes
}

// Bits returns the mask as a bitset, bit i set when lane i is real.
func (m StrideMask) Bits() uint32 {
	return m.bits
}

// Real returns the number of real lanes in the last block.
func (m StrideMask) Real() int {
	return m.real
}

// Width returns the block width the mask covers.
func (m StrideMask) Width() int {
	return len(m.lanes)
}
