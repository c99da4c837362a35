package simd

import "github.com/chewxy/math32"

// ReLU computes dst[i] = max(dst[i], 0).
func ReLU(dst []float32) {
	for i, v := range dst {
		if v < 0 {
			dst[i] = 0
		}
	}
}

// LeakyReLU computes dst[i] = dst[i] if positive, else slope*dst[i].
func LeakyReLU(dst []float32, slope float32) {
	for i, v := range dst {
		if v <= 0 {
			dst[i] = v * slope
		}
	}
}

// Sigmoid computes dst[i] = 1 / (1 + e^-dst[i]).
func Sigmoid(dst []float32) {
	n := len(dst)
	i := 0
	for ; i+Block <= n; i += Block {
		d := dst[i : i+Block : i+Block]
		for k := range d {
			d[k] = 1 / (1 + math32.Exp(-d[k]))
		}
	}
	for ; i < n; i++ {
		dst[i] = 1 / (1 + math32.Exp(-dst[i]))
	}
}

// Tanh computes dst[i] = tanh(dst[i]).
func Tanh(dst []float32) {
	for i, v := range dst {
		dst[i] = math32.Tanh(v)
	}
}
