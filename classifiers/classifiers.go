// Package classifiers implements the classifier implementations and the
// registry that resolves a classifier identifier to a factory. The engine
// never names a concrete classifier type; it asks the registry for a
// fresh instance per (repeat, fold, training time point).
package classifiers

import (
	"sort"
	"sync"

	"github.com/Charestlab/MVPA-Light/core/model"
	"github.com/Charestlab/MVPA-Light/pkg/errors"
)

// Params holds classifier hyperparameters, keyed by name. Missing keys
// fall back to per-classifier defaults.
type Params map[string]interface{}

// Float reads a float64 parameter, accepting ints for convenience.
func (p Params) Float(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	}
	return def
}

// Int reads an int parameter.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch x := v.(type) {
	case int:
		return x
	case float64:
		return int(x)
	}
	return def
}

// String reads a string parameter.
func (p Params) String(key string, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// Factory builds a fresh, untrained classifier from hyperparameters.
type Factory func(params Params) (model.Classifier, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds a classifier factory under the given identifier.
// Registering the same identifier twice panics; that is a programming
// error, not a runtime condition.
func Register(id string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[id]; dup {
		panic("classifiers: duplicate registration of " + id)
	}
	registry[id] = f
}

// New resolves an identifier and builds an untrained classifier.
func New(id string, params Params) (model.Classifier, error) {
	registryMu.RLock()
	f, ok := registry[id]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.NewConfigurationError("classifier", "unknown classifier identifier", id)
	}
	return f(params)
}

// List returns the registered identifiers, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// classCounts tallies samples per label and returns the distinct labels
// ascending.
func classCounts(labels []int) (classes []int, counts map[int]int) {
	counts = make(map[int]int)
	for _, l := range labels {
		counts[l]++
	}
	classes = make([]int, 0, len(counts))
	for l := range counts {
		classes = append(classes, l)
	}
	sort.Ints(classes)
	return classes, counts
}
