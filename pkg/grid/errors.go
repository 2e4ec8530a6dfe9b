package grid

import (
	"errors"
	"fmt"
)

// ErrConfig is the single error kind raised synchronously for grid
// misconfiguration: mutually exclusive data sources, a resync with no
// reachable row store, or uploads enabled without an upload endpoint.
// Classify with errors.Is.
var ErrConfig = errors.New("grid configuration error")

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
