package safepath

import "github.com/silvanwing/flux/internal/contracts"

// Adapter provides the path-validation surface consumed by format engines.
type Adapter struct {
	*Validator
}

// Compile-time interface implementation check.
var _ contracts.PathValidator = (*Adapter)(nil)

// NewAdapter creates a new adapter around a fresh Validator.
func NewAdapter() *Adapter {
	return &Adapter{Validator: NewValidator()}
}
