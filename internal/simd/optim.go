package simd

import "github.com/chewxy/math32"

// SGDStep computes param = param*(1 - lr*wd) - lr*grad.
func SGDStep(param, grad []float32, lr, wd float32) {
	n := len(param)
	grad = grad[:n]
	decay := 1 - lr*wd
	i := 0
	for ; i+Block <= n; i += Block {
		p := param[i : i+Block : i+Block]
		g := grad[i : i+Block : i+Block]
		for k := range p {
			p[k] = p[k]*decay - lr*g[k]
		}
	}
	for ; i < n; i++ {
		param[i] = param[i]*decay - lr*grad[i]
	}
}

// AdamCoefficients holds the per-step scalars of an Adam update.
type AdamCoefficients struct {
	LR, WeightDecay float32
	Beta1, Beta2    float32
	Epsilon         float32
	Correction1     float32 // 1 - beta1^t
	Correction2     float32 // 1 - beta2^t
}

// AdamStep updates the moments m and v from grad and applies the
// bias-corrected, decoupled-decay update to param.
func AdamStep(param, grad, m, v []float32, c AdamCoefficients) {
	n := len(param)
	grad = grad[:n]
	m = m[:n]
	v = v[:n]
	for i := range param {
		g := grad[i]
		m[i] = c.Beta1*m[i] + (1-c.Beta1)*g
		v[i] = c.Beta2*v[i] + (1-c.Beta2)*g*g
		mHat := m[i] / c.Correction1
		vHat := v[i] / c.Correction2
		param[i] = param[i] - c.LR*c.WeightDecay*param[i] - c.LR*mHat/(math32.Sqrt(vHat)+c.Epsilon)
	}
}
