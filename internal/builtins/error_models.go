package builtins

import "github.com/cqasm-lang/go-cqasm/internal/resolver"

// RegisterDefaultErrorModels populates et with the error models the
// original ships by default: a depolarizing channel parametrized by a
// single error probability, and a more detailed per-gate-duration model
// used by some backends' noise simulators. Grounded on
// v1x/cqasm-analyzer.cpp's register_default_error_models (the "error
// model" concept names a noise model attached to the program, consumed
// downstream by a simulator this library does not implement).
func RegisterDefaultErrorModels(et *resolver.ErrorModelTable) {
	et.Add("depolarizing_channel", "r")
	et.Add("depolarizing_channel", "rrr")
}
