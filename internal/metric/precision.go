package metric

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

var (
	// ErrEmptyDataset is returned when the dataset has no cells to normalize by.
	ErrEmptyDataset = errors.New("metric: dataset has no cells")
	// ErrNegativeShape is returned for negative record or attribute counts.
	ErrNegativeShape = errors.New("metric: negative dataset shape")
	// ErrAttributeMismatch is returned when the hierarchies do not match the attribute count.
	ErrAttributeMismatch = errors.New("metric: hierarchy count does not match attribute count")
)

// Shape is the size of the input dataset.
type Shape struct {
	Records    int
	Attributes int
}

// Cells returns the number of cells (records × attributes).
func (s Shape) Cells() float64 {
	return float64(s.Records) * float64(s.Attributes)
}

// EquivalenceClass is a read-only view of one group of records that share the
// same generalized values under the scheme being scored.
type EquivalenceClass struct {
	// Levels — generalization level applied to each attribute, 0 means untouched.
	// Must satisfy 0 <= Levels[i] <= height of attribute i.
	Levels []int
	// Count — number of records folded into the class. Empty classes are ignored.
	Count int
	// Suppressed — the class is an outlier and is charged full loss.
	Suppressed bool
}

// Precision implements the non-monotonic precision metric: the mean fraction of
// the available generalization depth used per attribute, where suppressed classes
// are charged the maximum.
//
// A Precision is immutable once returned by New and can be shared between any
// number of goroutines calling Evaluate.
type Precision struct {
	heights []int   // maximum generalization level per attribute
	cells   float64 // records × attributes of the input
}

// New derives the attribute heights and the cell count of the input and returns
// a ready to use metric.
//
// The height of attribute i is hierarchies[i].Levels()-1. A hierarchy reporting
// zero levels results in height -1, which Evaluate handles like height 0.
//
// Returns ErrNegativeShape, ErrAttributeMismatch or ErrEmptyDataset when the
// inputs cannot produce a finite loss.
func New(shape Shape, hierarchies []Hierarchy) (*Precision, error) {
	if shape.Records < 0 || shape.Attributes < 0 {
		return nil, fmt.Errorf("%w: %d records, %d attributes", ErrNegativeShape, shape.Records, shape.Attributes)
	}
	if len(hierarchies) != shape.Attributes {
		return nil, fmt.Errorf("%w: %d hierarchies, %d attributes", ErrAttributeMismatch, len(hierarchies), shape.Attributes)
	}
	if shape.Cells() == 0 {
		return nil, ErrEmptyDataset
	}

	heights := make([]int, len(hierarchies))
	for i, h := range hierarchies {
		heights[i] = h.Levels() - 1
	}

	return &Precision{heights: heights, cells: shape.Cells()}, nil
}

// Evaluate scores a partition of equivalence classes.
//
// For every class with a positive Count and every attribute i, the partial loss is
// Levels[i]/height[i], or 0 when height[i] <= 0 (no hierarchy, or an empty one).
// The lower bound accumulates the partial loss of every class. The total accumulates
// the partial loss of unsuppressed classes and 1 for suppressed ones. A class
// contributes once per attribute, not once per record.
//
// The total is divided by the number of cells. The lower bound is NOT normalized:
// it stays on the scale of the raw sum, so LowerBound() can exceed Value() and 1.
// Consumers comparing the two must multiply Value() by the cell count first.
//
// The sequence is consumed once and not retained.
func (p *Precision) Evaluate(classes iter.Seq[EquivalenceClass]) InformationLoss {
	total := 0.0
	lowerBound := 0.0

	for class := range classes {
		if class.Count <= 0 {
			continue
		}
		for i, height := range p.heights {
			partial := 0.0
			if height > 0 {
				partial = float64(class.Levels[i]) / float64(height)
			}
			lowerBound += partial
			if class.Suppressed {
				total += 1
			} else {
				total += partial
			}
		}
	}

	total /= p.cells

	return NewInformationLoss(total, lowerBound)
}

// EvaluateSlice is Evaluate over a slice of classes.
func (p *Precision) EvaluateSlice(classes []EquivalenceClass) InformationLoss {
	return p.Evaluate(slices.Values(classes))
}

// Heights returns a copy of the maximum generalization level per attribute.
func (p *Precision) Heights() []int {
	return slices.Clone(p.heights)
}

// Cells returns the cell count used for normalization.
func (p *Precision) Cells() float64 {
	return p.cells
}

// MaxInformationLoss returns the worst possible loss. Does not depend on the
// receiver's state and may be called on a nil *Precision.
func (p *Precision) MaxInformationLoss() InformationLoss {
	return MaxInformationLoss()
}

// MinInformationLoss returns the best possible loss. Does not depend on the
// receiver's state and may be called on a nil *Precision.
func (p *Precision) MinInformationLoss() InformationLoss {
	return MinInformationLoss()
}

func (p *Precision) String() string {
	return "Non-Monotonic Precision"
}

// MaxInformationLoss is the loss of a scheme that generalizes or suppresses every cell fully.
func MaxInformationLoss() InformationLoss {
	return NewInformationLoss(1, 1)
}

// MinInformationLoss is the loss of the untouched dataset.
func MinInformationLoss() InformationLoss {
	return NewInformationLoss(0, 0)
}
