// Package errors provides the error taxonomy for the MVPA toolbox.
// All errors fall into one of three families: configuration errors
// (contradictory or invalid settings, detected before any computation),
// data shape errors (inputs whose dimensions do not line up, detected
// during validation), and training errors (numerical failures inside a
// classifier fit, which abort the whole run). Errors carry stack traces
// via cockroachdb/errors and marshal structured fields for zerolog.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ConfigurationError reports invalid or contradictory analysis settings,
// e.g. a balancing target count lying strictly between the two class
// counts, or an unknown classifier identifier. It is always raised before
// any fold or time-point work begins.
type ConfigurationError struct {
	Param  string
	Reason string
	Value  interface{}
}

func (e *ConfigurationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("mvpa: invalid configuration for '%s': %s (got: %v)", e.Param, e.Reason, e.Value)
	}
	return fmt.Sprintf("mvpa: invalid configuration for '%s': %s", e.Param, e.Reason)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *ConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param", e.Param).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ConfigurationError")
}

// NewConfigurationError creates a ConfigurationError with a stack trace.
func NewConfigurationError(param, reason string, value interface{}) error {
	err := &ConfigurationError{Param: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// DataShapeError reports inputs whose dimensions do not match: a label
// vector of the wrong length, too few samples per class for the requested
// fold count, or time indices outside the tensor's time axis.
type DataShapeError struct {
	Op       string
	Expected int
	Got      int
	What     string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("mvpa: %s: %s mismatch. Expected %d, got %d", e.Op, e.What, e.Expected, e.Got)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *DataShapeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("what", e.What).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "DataShapeError")
}

// NewDataShapeError creates a DataShapeError with a stack trace.
func NewDataShapeError(op, what string, expected, got int) error {
	err := &DataShapeError{Op: op, What: what, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// TrainingError reports a numerical failure inside a classifier fit,
// e.g. a singular pooled covariance matrix. The engine never retries;
// the error carries the (repeat, fold, training time point) position so
// the failure can be reproduced. Positions are -1 when not applicable
// (no cross-validation, or failure outside the main loop).
type TrainingError struct {
	Classifier string
	Repeat     int
	Fold       int
	TimePoint  int
	Err        error
}

func (e *TrainingError) Error() string {
	if e.Repeat >= 0 {
		return fmt.Sprintf("mvpa: %s training failed at repeat %d, fold %d, time point %d: %v",
			e.Classifier, e.Repeat, e.Fold, e.TimePoint, e.Err)
	}
	return fmt.Sprintf("mvpa: %s training failed at time point %d: %v", e.Classifier, e.TimePoint, e.Err)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *TrainingError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("classifier", e.Classifier).
		Int("repeat", e.Repeat).
		Int("fold", e.Fold).
		Int("time_point", e.TimePoint).
		Str("type", "TrainingError")
	if e.Err != nil {
		event.Str("cause", e.Err.Error())
	}
}

// NewTrainingError creates a TrainingError with a stack trace.
func NewTrainingError(classifier string, repeat, fold, timePoint int, err error) error {
	trainErr := &TrainingError{
		Classifier: classifier,
		Repeat:     repeat,
		Fold:       fold,
		TimePoint:  timePoint,
		Err:        err,
	}
	return errors.WithStack(trainErr)
}

// NotFittedError is returned when Predict or DecisionValues is called on
// a model that has not been trained.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("mvpa: %s: this model is not fitted yet. Call Train() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError reports a matrix whose row or column count differs from
// what an operation expects.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("mvpa: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ConvergenceWarning is raised when an iterative solver stops at its
// iteration limit. It is reported through the warning handler, never as
// a fatal error.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
}

func (w *ConvergenceWarning) Error() string {
	return fmt.Sprintf("%s did not converge within %d iterations. Consider increasing max_iter or loosening tol.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject adds structured fields to a zerolog event.
func (w *ConvergenceWarning) MarshalZerologObject(event *zerolog.Event) {
	event.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning creates a new ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations}
}

// Re-exported helpers from cockroachdb/errors so callers only need this
// package.

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

var (
	// ErrSingularMatrix indicates a singular or ill-conditioned matrix.
	ErrSingularMatrix = New("singular matrix")

	// ErrEmptyData indicates an empty input.
	ErrEmptyData = New("empty data")
)
