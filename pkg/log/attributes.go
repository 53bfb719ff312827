// Standard attribute keys for analysis logging. Using these keys keeps
// log output filterable across packages.

package log

// Analysis context.
const (
	// ClassifierKey identifies the classifier, e.g. "lda", "logreg".
	ClassifierKey = "classifier"

	// OperationKey names the analysis operation.
	// Standard values: "classify_timextime", "classify_across_time",
	// "train", "test", "balance", "normalise".
	OperationKey = "ml.operation"

	// MetricKey names the requested performance metric.
	MetricKey = "ml.metric"

	// ModeKey names the evaluation mode: "cross_validation",
	// "train_test_split", "no_cross_validation".
	ModeKey = "ml.mode"
)

// Data shape.
const (
	// SamplesKey is the number of samples (trials) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of features (e.g. channels).
	FeaturesKey = "data.features"

	// TimePointsKey is the length of the tensor's time axis.
	TimePointsKey = "data.time_points"

	// ClassesKey is the number of distinct class labels.
	ClassesKey = "data.classes"

	// TrainTimeKey and TestTimeKey are the sizes of the training and
	// testing time index sets.
	TrainTimeKey = "data.train_time_points"
	TestTimeKey  = "data.test_time_points"
)

// Cross-validation structure.
const (
	// CVKey names the cross-validation kind: "kfold", "leaveout",
	// "holdout", "none".
	CVKey = "cv.kind"

	// FoldsKey is the number of folds per repeat.
	FoldsKey = "cv.folds"

	// RepeatsKey is the number of cross-validation repeats.
	RepeatsKey = "cv.repeats"

	// RepeatKey and FoldKey identify the current position in the loop.
	RepeatKey = "cv.repeat"
	FoldKey   = "cv.fold"
)

// Performance.
const (
	// DurationMsKey records execution time in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records classification accuracy in [0, 1].
	AccuracyKey = "metrics.accuracy"
)
