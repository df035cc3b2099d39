package testutil

import (
	"context"

	"github.com/kbukum/eventstream/component"
)

// TestComponent is a component that can also be reset to its initial
// state between test cases.
type TestComponent interface {
	component.Component

	// Reset restores the component to its initial state.
	Reset(ctx context.Context) error
}
