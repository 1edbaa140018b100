package command

import (
	"bytes"
	"sync"
)

// combinedWriter collects stdout and stderr into a single buffer.
// Both streams may be written from different goroutines.
type combinedWriter struct {
	buffer bytes.Buffer
	mu     sync.Mutex
}

// Write appends p to the combined buffer.
func (cw *combinedWriter) Write(p []byte) (int, error) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.buffer.Write(p)
}

// String returns the combined output.
func (cw *combinedWriter) String() string {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.buffer.String()
}
