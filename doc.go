// Package mvpalight implements multivariate pattern analysis for
// time-resolved data, centered on time-generalization classification:
// a classifier is trained at every training time point and evaluated at
// every testing time point, producing a train-time × test-time
// performance matrix.
//
// The analysis entry points live in the timegen package:
//
//	X, labels := loadData() // [samples × features × time] tensor
//	res, err := timegen.ClassifyTimeByTime(ctx, timegen.Config{
//		Classifier: "lda",
//		Metric:     metrics.MetricAccuracy,
//		Seed:       42,
//	}, X, labels)
//
// Supporting packages:
//
//   - tensor: the three-dimensional sample tensor and the batched
//     flattening used to predict all test time points in one call
//   - classifiers: shrinkage LDA, logistic regression and nearest
//     centroid behind a common registry
//   - crossval: k-fold, leave-one-out and holdout partitioning with
//     optional stratification
//   - preprocessing: per-(feature, time point) normalization and class
//     balancing by over- or undersampling
//   - metrics: accuracy and AUC, plus aggregation of raw classifier
//     outputs over repeats and folds
//
// All randomness is driven by a single seed, so every analysis is
// reproducible bit for bit.
package mvpalight
