package metric

import "iter"

// Hierarchy exposes the number of distinct generalization levels of one attribute.
// Level 0 is the original value, the last level is the most general one.
type Hierarchy interface {
	Levels() int
}

// Metric scores a partition of equivalence classes produced for one candidate
// generalization scheme.
type Metric interface {
	Evaluate(classes iter.Seq[EquivalenceClass]) InformationLoss
	MaxInformationLoss() InformationLoss
	MinInformationLoss() InformationLoss
}
