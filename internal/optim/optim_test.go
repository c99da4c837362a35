package optim_test

import (
	"errors"
	"testing"

	"github.com/born-ml/mlp/internal/matrix"
	"github.com/born-ml/mlp/internal/network"
	"github.com/born-ml/mlp/internal/optim"
)

// Helper to check float equality with tolerance.
func floatEqual(a, b, eps float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < eps
}

// pair builds a 1->1 parameter architecture holding weight w and bias b, and
// a gradient architecture holding gradient g for both.
func pair(t *testing.T, w, b, g float32, moments bool) (params, grads *network.Architecture) {
	t.Helper()
	var opts []network.Option
	if moments {
		opts = append(opts, network.WithMoments())
	}
	params, err := network.New([]int{1, 1}, opts...)
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	grads, err = network.New([]int{1, 1})
	if err != nil {
		t.Fatalf("grads: %v", err)
	}
	t.Cleanup(params.Release)
	t.Cleanup(grads.Release)

	params.Weights[0].Set(0, 0, w)
	params.Biases[0].Set(0, 0, b)
	grads.Weights[0].Set(0, 0, g)
	grads.Biases[0].Set(0, 0, g)
	return params, grads
}

// TestSGD_SimpleUpdate tests SGD without weight decay.
func TestSGD_SimpleUpdate(t *testing.T) {
	params, grads := pair(t, 2.0, 2.0, 1.0, false)
	optimizer := optim.NewSGD(optim.SGDConfig{LR: 0.1})

	if err := optimizer.Learn(params, grads); err != nil {
		t.Fatalf("Learn: %v", err)
	}

	// Expected: x_new = x_old - lr * grad = 2.0 - 0.1 * 1.0 = 1.9
	expected := float32(1.9)
	if actual := params.Weights[0].At(0, 0); !floatEqual(actual, expected, 1e-6) {
		t.Errorf("SGD weight update: got %f, want %f", actual, expected)
	}
	if actual := params.Biases[0].At(0, 0); !floatEqual(actual, expected, 1e-6) {
		t.Errorf("SGD bias update: got %f, want %f", actual, expected)
	}
}

// TestSGD_WeightDecay tests the decoupled decay with a zero gradient.
func TestSGD_WeightDecay(t *testing.T) {
	params, grads := pair(t, 2.0, 0.0, 0.0, false)
	optimizer := optim.NewSGD(optim.SGDConfig{LR: 0.1, WeightDecay: 0.5})

	if err := optimizer.Learn(params, grads); err != nil {
		t.Fatalf("Learn: %v", err)
	}

	// 2.0 * (1 - 0.1*0.5) = 1.9
	if actual := params.Weights[0].At(0, 0); !floatEqual(actual, 1.9, 1e-6) {
		t.Errorf("SGD weight decay: got %f, want 1.9", actual)
	}
}

// TestSGD_GetSetLR tests learning rate accessors and defaults.
func TestSGD_GetSetLR(t *testing.T) {
	optimizer := optim.NewSGD(optim.SGDConfig{})
	if optimizer.GetLR() != 0.01 {
		t.Errorf("default LR: got %f, want 0.01", optimizer.GetLR())
	}

	optimizer.SetLR(0.001)
	if optimizer.GetLR() != 0.001 {
		t.Errorf("GetLR after SetLR: got %f, want 0.001", optimizer.GetLR())
	}
	if optimizer.Kind() != optim.KindSGD {
		t.Errorf("Kind: got %s, want sgd", optimizer.Kind())
	}
}

// TestAdam_SimpleUpdate checks the first Adam step arithmetic.
func TestAdam_SimpleUpdate(t *testing.T) {
	params, grads := pair(t, 0.0, 0.0, 1.0, true)
	optimizer := optim.NewAdam(optim.AdamConfig{
		LR:    0.1,
		Betas: [2]float32{0.9, 0.999},
		Eps:   1e-8,
	})

	if err := optimizer.Learn(params, grads); err != nil {
		t.Fatalf("Learn: %v", err)
	}

	// After first step (with bias correction):
	// m_1 = 0.9 * 0 + 0.1 * 1.0 = 0.1
	// v_1 = 0.999 * 0 + 0.001 * 1.0 = 0.001
	// m_hat = 0.1 / (1 - 0.9^1) = 1.0
	// v_hat = 0.001 / (1 - 0.999^1) = 1.0
	// x_new = 0 - 0.1 * 1.0 / (sqrt(1.0) + 1e-8) ≈ -0.1
	m := params.Moments.MWeights[0].At(0, 0)
	v := params.Moments.VWeights[0].At(0, 0)
	if !floatEqual(m, 0.1, 1e-6) {
		t.Errorf("first moment: got %f, want 0.1", m)
	}
	if !floatEqual(v, 0.001, 1e-6) {
		t.Errorf("second moment: got %f, want 0.001", v)
	}

	actual := params.Weights[0].At(0, 0)
	if !floatEqual(actual, -0.1, 1e-5) {
		t.Errorf("Adam first step: got %f, want -0.1", actual)
	}
	if actual := params.Biases[0].At(0, 0); !floatEqual(actual, -0.1, 1e-5) {
		t.Errorf("Adam first bias step: got %f, want -0.1", actual)
	}
}

// TestAdam_WeightDecay tests that decay is applied to the parameter directly.
func TestAdam_WeightDecay(t *testing.T) {
	params, grads := pair(t, 1.0, 0.0, 0.0, true)
	optimizer := optim.NewAdam(optim.AdamConfig{LR: 0.1, WeightDecay: 0.5})

	if err := optimizer.Learn(params, grads); err != nil {
		t.Fatalf("Learn: %v", err)
	}

	// Zero gradient leaves m_hat = 0, so only decay acts: 1 - 0.1*0.5*1.
	if actual := params.Weights[0].At(0, 0); !floatEqual(actual, 0.95, 1e-6) {
		t.Errorf("Adam weight decay: got %f, want 0.95", actual)
	}
}

// TestAdam_BiasCorrection tests that the timestep is shared and advances per call.
func TestAdam_BiasCorrection(t *testing.T) {
	params, grads := pair(t, 1.0, 1.0, 1.0, true)
	optimizer := optim.NewAdam(optim.AdamConfig{LR: 0.01})

	if optimizer.GetTimestep() != 0 {
		t.Errorf("Initial timestep: got %d, want 0", optimizer.GetTimestep())
	}

	// With a constant gradient m_hat = v_hat = 1 at every step, so each step
	// moves the parameter by lr.
	for i := 1; i <= 3; i++ {
		if err := optimizer.Learn(params, grads); err != nil {
			t.Fatalf("Learn: %v", err)
		}
		if optimizer.GetTimestep() != i {
			t.Errorf("Timestep after step %d: got %d", i, optimizer.GetTimestep())
		}
		want := 1.0 - 0.01*float32(i)
		if actual := params.Weights[0].At(0, 0); !floatEqual(actual, want, 1e-4) {
			t.Errorf("step %d: got %f, want %f", i, actual, want)
		}
	}

	optimizer.SetTimestep(10)
	if optimizer.GetTimestep() != 10 {
		t.Errorf("SetTimestep: got %d", optimizer.GetTimestep())
	}
}

// TestAdam_RequiresMoments tests the missing moment buffer error.
func TestAdam_RequiresMoments(t *testing.T) {
	params, grads := pair(t, 1.0, 1.0, 1.0, false)
	err := optim.NewAdam(optim.AdamConfig{}).Learn(params, grads)
	if !errors.Is(err, optim.ErrNoMoments) {
		t.Errorf("expected ErrNoMoments, got %v", err)
	}
}

// TestLearn_ShapeMismatch tests that incompatible architectures are rejected.
func TestLearn_ShapeMismatch(t *testing.T) {
	params, err := network.New([]int{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	defer params.Release()
	grads, err := network.New([]int{2, 4})
	if err != nil {
		t.Fatal(err)
	}
	defer grads.Release()

	if err := optim.NewSGD(optim.SGDConfig{}).Learn(params, grads); !errors.Is(err, matrix.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

// TestNew tests construction by kind.
func TestNew(t *testing.T) {
	for _, kind := range []optim.Kind{optim.KindSGD, optim.KindAdam} {
		o, err := optim.New(kind, optim.Config{LR: 0.05})
		if err != nil {
			t.Fatalf("New(%s): %v", kind, err)
		}
		if o.Kind() != kind {
			t.Errorf("New(%s).Kind() = %s", kind, o.Kind())
		}
		if o.GetLR() != 0.05 {
			t.Errorf("New(%s) LR = %f", kind, o.GetLR())
		}
	}

	if _, err := optim.New(optim.Kind(9), optim.Config{}); !errors.Is(err, optim.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := optim.ParseKind("rmsprop"); !errors.Is(err, optim.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if k, err := optim.ParseKind("AdamW"); err != nil || k != optim.KindAdam {
		t.Errorf("ParseKind(AdamW) = %v, %v", k, err)
	}
}

// TestConvergence_SimpleQuadratic minimizes f(x) = (x-3)^2 with both optimizers.
func TestConvergence_SimpleQuadratic(t *testing.T) {
	for _, kind := range []optim.Kind{optim.KindSGD, optim.KindAdam} {
		params, grads := pair(t, 0.0, 0.0, 0.0, kind.NeedsMoments())
		o, err := optim.New(kind, optim.Config{LR: 0.1})
		if err != nil {
			t.Fatal(err)
		}
		for range 1000 {
			x := params.Weights[0].At(0, 0)
			grads.Weights[0].Set(0, 0, 2*(x-3))
			if err := o.Learn(params, grads); err != nil {
				t.Fatal(err)
			}
		}
		if x := params.Weights[0].At(0, 0); !floatEqual(x, 3, 5e-2) {
			t.Errorf("%s did not converge: x = %f", kind, x)
		}
	}
}
