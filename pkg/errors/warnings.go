package errors

import (
	"log"
	"sync"
)

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("mvpa-warning: %v\n", w)
	}
)

// SetWarningHandler replaces the global warning handler. Warnings such as
// ConvergenceWarning are reported through it instead of failing the run.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // ignore warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// Warn reports a warning through the current handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	if warningHandler != nil {
		warningHandler(w)
	}
}
