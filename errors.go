package jpetgen

import (
	"errors"
	"fmt"
)

// ErrFatalConfig is matched by every error which must abort a run.
var ErrFatalConfig = errors.New("fatal configuration error")

// FatalConfigError reports a configuration which cannot generate events: an
// unset source type, a run number without a chamber geometry or an
// unsupported photon multiplicity.
type FatalConfigError struct {
	Op     string
	Reason string
	Err    error
}

func (e *FatalConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *FatalConfigError) Is(target error) bool { return target == ErrFatalConfig }

func (e *FatalConfigError) Unwrap() error { return e.Err }
