// Package crossval partitions samples into cross-validation train/test
// index sets.
package crossval

import (
	"math"
	"math/rand/v2"
	"sort"
	"strconv"

	"github.com/Charestlab/MVPA-Light/pkg/errors"
)

// Kind names a cross-validation scheme.
type Kind string

const (
	// KFold partitions the samples into K folds; each fold serves as the
	// test set exactly once.
	KFold Kind = "kfold"
	// LeaveOut is K-fold with K equal to the sample count.
	LeaveOut Kind = "leaveout"
	// Holdout produces a single split with a fixed test fraction.
	Holdout Kind = "holdout"
	// None disables cross-validation: one set, all samples in both
	// train and test.
	None Kind = "none"
)

// Spec describes a cross-validation configuration. Repeat is consumed by
// the engine, not by Make: each repeat calls Make again for a fresh
// randomization.
type Spec struct {
	Kind     Kind
	K        int     // fold count for KFold
	P        float64 // held-out test fraction for Holdout
	Stratify bool
	Repeat   int
}

// Partition is a set of train/test index pairs. Within each set the two
// index lists are disjoint (except for Kind None); for K-fold the test
// sets partition the full sample range.
type Partition struct {
	train [][]int
	test  [][]int
}

// NumSets returns the number of train/test pairs.
func (p *Partition) NumSets() int { return len(p.test) }

// Train returns the training indices of set i.
func (p *Partition) Train(i int) []int { return p.train[i] }

// Test returns the test indices of set i.
func (p *Partition) Test(i int) []int { return p.test[i] }

// Validate checks the spec against the label distribution before any
// computation.
func (s Spec) Validate(labels []int) error {
	n := len(labels)
	switch s.Kind {
	case KFold:
		if s.K < 2 || s.K > n {
			return errors.NewConfigurationError("cv.k", "fold count must be in [2, n_samples]", s.K)
		}
		if s.Stratify {
			for class, count := range countByClass(labels) {
				if count < s.K {
					return errors.NewDataShapeError("crossval", "samples in class "+strconv.Itoa(class), s.K, count)
				}
			}
		}
	case Holdout:
		if s.P <= 0 || s.P >= 1 {
			return errors.NewConfigurationError("cv.p", "holdout fraction must be in (0, 1)", s.P)
		}
	case LeaveOut, None:
	default:
		return errors.NewConfigurationError("cv", "unknown cross-validation kind", string(s.Kind))
	}
	if s.Repeat < 0 {
		return errors.NewConfigurationError("cv.repeat", "repeat count must be positive", s.Repeat)
	}
	return nil
}

// Make generates a fold partition over the labels. Randomization comes
// entirely from rng, so a fixed seed reproduces the partition.
func Make(s Spec, labels []int, rng *rand.Rand) (*Partition, error) {
	if err := s.Validate(labels); err != nil {
		return nil, err
	}
	n := len(labels)
	switch s.Kind {
	case KFold:
		if s.Stratify {
			return stratifiedKFold(n, s.K, labels, rng), nil
		}
		return kFold(n, s.K, rng), nil
	case LeaveOut:
		return kFold(n, n, rng), nil
	case Holdout:
		return holdout(n, s.P, rng), nil
	case None:
		all := iota0(n)
		return &Partition{train: [][]int{all}, test: [][]int{all}}, nil
	}
	// Unreachable after Validate.
	return nil, errors.NewConfigurationError("cv", "unknown cross-validation kind", string(s.Kind))
}

// kFold shuffles the samples and deals them into k contiguous test
// blocks; earlier folds absorb the remainder.
func kFold(n, k int, rng *rand.Rand) *Partition {
	perm := rng.Perm(n)

	p := &Partition{train: make([][]int, k), test: make([][]int, k)}
	foldSize := n / k
	remainder := n % k

	idx := 0
	for i := 0; i < k; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}
		p.test[i] = append([]int(nil), perm[idx:idx+testSize]...)
		p.train[i] = make([]int, 0, n-testSize)
		p.train[i] = append(p.train[i], perm[:idx]...)
		p.train[i] = append(p.train[i], perm[idx+testSize:]...)
		idx += testSize
	}
	return p
}

// stratifiedKFold deals each class across the folds separately so every
// fold keeps the overall class proportions.
func stratifiedKFold(n, k int, labels []int, rng *rand.Rand) *Partition {
	byClass := map[int][]int{}
	for i, l := range labels {
		byClass[l] = append(byClass[l], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	p := &Partition{train: make([][]int, k), test: make([][]int, k)}
	for _, c := range classes {
		idx := byClass[c]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		foldSize := len(idx) / k
		remainder := len(idx) % k
		cur := 0
		for i := 0; i < k; i++ {
			testSize := foldSize
			if i < remainder {
				testSize++
			}
			p.test[i] = append(p.test[i], idx[cur:cur+testSize]...)
			cur += testSize
		}
	}

	for i := 0; i < k; i++ {
		inTest := make(map[int]bool, len(p.test[i]))
		for _, idx := range p.test[i] {
			inTest[idx] = true
		}
		for j := 0; j < n; j++ {
			if !inTest[j] {
				p.train[i] = append(p.train[i], j)
			}
		}
	}
	return p
}

// holdout produces exactly one split with ceil(p·n) test samples.
func holdout(n int, frac float64, rng *rand.Rand) *Partition {
	perm := rng.Perm(n)
	testSize := int(math.Ceil(frac * float64(n)))
	if testSize >= n {
		testSize = n - 1
	}
	return &Partition{
		test:  [][]int{append([]int(nil), perm[:testSize]...)},
		train: [][]int{append([]int(nil), perm[testSize:]...)},
	}
}

func countByClass(labels []int) map[int]int {
	counts := map[int]int{}
	for _, l := range labels {
		counts[l]++
	}
	return counts
}

func iota0(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
