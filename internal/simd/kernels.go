package simd

// Fill sets every element of dst to v.
func Fill(dst []float32, v float32) {
	n := len(dst)
	i := 0
	for ; i+Block <= n; i += Block {
		d := dst[i : i+Block : i+Block]
		d[0], d[1], d[2], d[3] = v, v, v, v
		d[4], d[5], d[6], d[7] = v, v, v, v
	}
	for ; i < n; i++ {
		dst[i] = v
	}
}

// Add computes dst[i] += src[i].
func Add(dst, src []float32) {
	n := len(dst)
	src = src[:n]
	i := 0
	for ; i+Block <= n; i += Block {
		d := dst[i : i+Block : i+Block]
		s := src[i : i+Block : i+Block]
		d[0] += s[0]
		d[1] += s[1]
		d[2] += s[2]
		d[3] += s[3]
		d[4] += s[4]
		d[5] += s[5]
		d[6] += s[6]
		d[7] += s[7]
	}
	for ; i < n; i++ {
		dst[i] += src[i]
	}
}

// Sub computes dst[i] = a[i] - b[i].
func Sub(dst, a, b []float32) {
	n := len(dst)
	a = a[:n]
	b = b[:n]
	i := 0
	for ; i+Block <= n; i += Block {
		d := dst[i : i+Block : i+Block]
		x := a[i : i+Block : i+Block]
		y := b[i : i+Block : i+Block]
		for k := range d {
			d[k] = x[k] - y[k]
		}
	}
	for ; i < n; i++ {
		dst[i] = a[i] - b[i]
	}
}

// Scale computes dst[i] *= s.
func Scale(dst []float32, s float32) {
	n := len(dst)
	i := 0
	for ; i+Block <= n; i += Block {
		d := dst[i : i+Block : i+Block]
		for k := range d {
			d[k] *= s
		}
	}
	for ; i < n; i++ {
		dst[i] *= s
	}
}

// Mul computes dst[i] *= m[i].
func Mul(dst, m []float32) {
	n := len(dst)
	m = m[:n]
	for i := range dst {
		dst[i] *= m[i]
	}
}

// AXPY computes dst[i] += alpha * x[i].
func AXPY(dst []float32, alpha float32, x []float32) {
	n := len(dst)
	x = x[:n]
	i := 0
	for ; i+Block <= n; i += Block {
		d := dst[i : i+Block : i+Block]
		s := x[i : i+Block : i+Block]
		d[0] += alpha * s[0]
		d[1] += alpha * s[1]
		d[2] += alpha * s[2]
		d[3] += alpha * s[3]
		d[4] += alpha * s[4]
		d[5] += alpha * s[5]
		d[6] += alpha * s[6]
		d[7] += alpha * s[7]
	}
	for ; i < n; i++ {
		dst[i] += alpha * x[i]
	}
}

// Dot returns the sum of a[i]*b[i] using eight independent accumulators.
func Dot(a, b []float32) float32 {
	n := len(a)
	b = b[:n]
	var s0, s1, s2, s3, s4, s5, s6, s7 float32
	i := 0
	for ; i+Block <= n; i += Block {
		x := a[i : i+Block : i+Block]
		y := b[i : i+Block : i+Block]
		s0 += x[0] * y[0]
		s1 += x[1] * y[1]
		s2 += x[2] * y[2]
		s3 += x[3] * y[3]
		s4 += x[4] * y[4]
		s5 += x[5] * y[5]
		s6 += x[6] * y[6]
		s7 += x[7] * y[7]
	}
	sum := ((s0 + s1) + (s2 + s3)) + ((s4 + s5) + (s6 + s7))
	for ; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Clamp limits every element of dst to [lo, hi].
func Clamp(dst []float32, lo, hi float32) {
	for i, v := range dst {
		dst[i] = ClampScalar(v, lo, hi)
	}
}

// ClampScalar limits v to [lo, hi].
func ClampScalar(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SquaredDiffSum returns the sum of (a[i]-b[i])^2 over one padded row.
// The last len(mask) lanes are multiplied by mask before squaring so that
// padding lanes drop out of the sum.
func SquaredDiffSum(a, b, mask []float32) float32 {
	n := len(a)
	b = b[:n]
	tail := n - len(mask)
	var sum float32
	i := 0
	for ; i < tail; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	for k := range mask {
		d := (a[tail+k] - b[tail+k]) * mask[k]
		sum += d * d
	}
	return sum
}
