// Package diagnostic provides a minimal line-oriented reporter for the
// out-of-band failures the allocator can hit (OS mapping and unmapping
// errors). It is deliberately small next to the compiler's own diagnostic
// system: there is no source position to attach here, only an operation
// and an OS error.
package diagnostic

import (
	"fmt"
	"io"
	"sync"
)

// Reporter writes diagnostic lines to an underlying stream, serialized
// against concurrent callers.
type Reporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Reportf writes a single formatted diagnostic line, prefixed and newline
// terminated.
func (r *Reporter) Reportf(format string, args ...interface{}) {
	if r == nil || r.w == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "allocator: "+format+"\n", args...)
}
