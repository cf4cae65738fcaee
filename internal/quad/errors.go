package quad

import (
	"errors"
	"fmt"
)

var (
	// ErrSetup marks failures before the first frame: shader compilation,
	// linking and vertex count mismatches. They are not recoverable.
	ErrSetup = errors.New("quad: setup failed")
	// ErrDraw marks a draw call rejected by the backend.
	ErrDraw = errors.New("quad: draw failed")
	// ErrNotInitialized is returned when the renderer is used before a
	// successful Initialize.
	ErrNotInitialized = errors.New("quad: renderer not initialized")
)

// SizeMismatchError reports vertex data whose length differs from the
// vertex count given to Initialize.
type SizeMismatchError struct {
	Attribute string
	Want, Got int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("quad: %s: want %d vertices, got %d", e.Attribute, e.Want, e.Got)
}

func setupError(err error) error {
	return fmt.Errorf("%w: %w", ErrSetup, err)
}
