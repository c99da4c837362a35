package train

import (
	"github.com/born-ml/mlp/internal/activation"
	"github.com/born-ml/mlp/internal/network"
	"github.com/born-ml/mlp/internal/simd"
)

// ErrorClamp bounds each neuron error before it is turned into a gradient.
const ErrorClamp = 10

// accumulate runs one example through params and adds its gradients to
// grads. x and y are padded input and target rows. It returns the masked
// squared error of the prediction.
func accumulate(params, grads *network.Architecture, x, y, mask []float32, hidden, output activation.Func) (float32, error) {
	copy(params.Neurons[0].PaddedRow(0), x)
	out, err := params.Forward(hidden, output)
	if err != nil {
		return 0, err
	}
	loss := simd.SquaredDiffSum(out.PaddedRow(0), y, mask)
	backward(params, grads, y, hidden.Derivative, output.Derivative)
	return loss, nil
}

// backward propagates the residual of the last forward pass through params
// and accumulates weight and bias gradients into grads:
//
//	delta_k = 2 * clamp(err_k, ±ErrorClamp) * f'(a_k)
//	gradBias[k]       += delta_k
//	gradWeight[k, :]  += delta_k * a_prev
//	err_prev          += delta_k * W[k, :]
//
// The output error row is overwritten for each example. The hidden error rows
// keep accumulating until the gradient architecture is zeroed at the start of
// the next batch.
func backward(params, grads *network.Architecture, y []float32, hidden, output func(float32) float32) {
	last := params.Layers()
	simd.Sub(grads.Neurons[last].PaddedRow(0), params.Neurons[last].PaddedRow(0), y)

	for layer := last; layer >= 1; layer-- {
		deriv := hidden
		if layer == last {
			deriv = output
		}
		errs := grads.Neurons[layer].Row(0)
		acts := params.Neurons[layer].Row(0)
		prevActs := params.Neurons[layer-1].PaddedRow(0)
		prevErrs := grads.Neurons[layer-1].PaddedRow(0)
		weights := params.Weights[layer-1]
		gradWeights := grads.Weights[layer-1]
		gradBiases := grads.Biases[layer-1].Row(0)

		for k, e := range errs {
			delta := 2 * simd.ClampScalar(e, -ErrorClamp, ErrorClamp) * deriv(acts[k])
			gradBiases[k] += delta
			simd.AXPY(gradWeights.PaddedRow(k), delta, prevActs)
			simd.AXPY(prevErrs, delta, weights.PaddedRow(k))
		}
	}
}

// normalize divides the accumulated gradients by the number of examples.
func normalize(grads *network.Architecture, n int) {
	if n <= 1 {
		return
	}
	s := 1 / float32(n)
	for _, m := range grads.Params() {
		m.Scale(s)
	}
}
