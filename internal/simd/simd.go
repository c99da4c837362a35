// Package simd selects the vector lane width for the aligned matrix layout
// and provides the float32 block kernels that operate on it.
//
// Go has no portable vector intrinsics, so every kernel is written as an
// explicit loop over fixed 8-lane blocks (one 256-bit register of float32)
// followed by a scalar remainder loop. A 16-lane layout is processed as two
// blocks per stride step. The block bodies index a re-sliced window with
// constant bounds so the compiler drops bounds checks inside the block.
package simd

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"
)

// Supported lane counts.
const (
	Lanes8  = 8  // 256-bit registers (AVX2, NEON pairs)
	Lanes16 = 16 // 512-bit registers (AVX-512F)
)

// Block is the number of float32 lanes handled per unrolled kernel step.
const Block = 8

var width = detectWidth()

func detectWidth() int {
	if cpuid.CPU.Supports(cpuid.AVX512F) {
		return Lanes16
	}
	return Lanes8
}

// Width returns the lane count chosen for this process.
func Width() int {
	return width
}

// ValidLanes reports whether n is a lane count the layout supports.
func ValidLanes(n int) bool {
	return n == Lanes8 || n == Lanes16
}

// RoundUp rounds n up to the next multiple of lanes.
func RoundUp(n, lanes int) int {
	return (n + lanes - 1) / lanes * lanes
}

// Info describes the detected vector features, for logging.
func Info() string {
	name := cpuid.CPU.BrandName
	if name == "" {
		name = "unknown cpu"
	}
	return fmt.Sprintf("%s, %d lanes", name, width)
}
