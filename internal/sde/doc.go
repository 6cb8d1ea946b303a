// Package sde provides the stochastic integration primitives.
//
// The package defines the fundamental types for simulating Itô stochastic
// differential equations with diagonal noise:
//
//   - [State]: vector representing system state
//   - [System]: interface for SDE systems (dX = f(X,t) dt + g(X,t) dW)
//   - [EulerMaruyama]: explicit Itô integrator over a fixed time grid
//
// # Example
//
//	dyn := model.NewDynamics(params, true)
//	integ := sde.NewEulerMaruyama(seed)
//	path, err := integ.Integrate(dyn, x0, sde.UniformGrid(days))
//
// # Thread Safety
//
// An EulerMaruyama instance owns a single random stream and is NOT safe for
// concurrent use. Independent sample paths should each construct their own
// integrator with an independent seed.
package sde
