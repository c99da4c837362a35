// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the optimizers that step a network's weights and
// biases from accumulated gradients.
//
// Available optimizers:
//   - SGD: param = param*(1 - lr*wd) - lr*grad
//   - Adam: bias-corrected moments with decoupled (AdamW) weight decay
//
// Example:
//
//	opt, err := optim.New(optim.KindAdam, optim.Config{LR: 0.001, WeightDecay: 0.01})
//	if err != nil {
//	    return err
//	}
//	if err := opt.Learn(params, grads); err != nil {
//	    return err
//	}
package optim
