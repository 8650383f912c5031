// internal/handle/errors.go
package handle

import (
	"fmt"
	"time"

	"github.com/xkilldash9x/scalpel-dom/internal/driver"
)

// CapabilityError reports that extended arguments were supplied for an
// operation the active driver only implements in its minimal form. It is
// raised before any driver dispatch and is never retried.
type CapabilityError struct {
	Op driver.Op
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("handle: driver does not accept extended arguments for %s", e.Op)
}

// ReadOnlyError reports a value mutation attempted against a read-only
// target. Raised before the mutation is dispatched, independent of driver
// capability.
type ReadOnlyError struct {
	Locator string
}

func (e *ReadOnlyError) Error() string {
	if e.Locator == "" {
		return "handle: attempt to set value of a read-only element"
	}
	return fmt.Sprintf("handle: attempt to set value of read-only element %s", e.Locator)
}

// TimeoutError reports that every attempt within the wait budget failed
// with a transient driver error. Last carries the final transient failure
// and is reachable through errors.Unwrap.
type TimeoutError struct {
	Op     driver.Op
	Budget time.Duration
	Last   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("handle: %s still failing after %v: %v", e.Op, e.Budget, e.Last)
}

func (e *TimeoutError) Unwrap() error { return e.Last }
