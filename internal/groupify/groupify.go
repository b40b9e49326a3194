package groupify

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"precision/internal/dataset"
	"precision/internal/hierarchy"
	"precision/internal/metric"
)

// entry is one equivalence class. Entries are chained in the order their first
// record was seen.
type entry struct {
	key        string
	count      int
	suppressed bool
	next       *entry
}

// Groupify partitions a table into equivalence classes under one generalization
// scheme. It is built once per scheme and never modified afterwards.
type Groupify struct {
	levels   []int
	index    map[string]*entry
	first    *entry
	last     *entry
	outliers int
}

// Build generalizes every row of table with levels and groups identical rows.
// Classes for which rule fires are flagged as suppressed.
//
// levels must hold one level per column, each within the height of the column's hierarchy.
func Build(table *dataset.Table, hierarchies []*hierarchy.Hierarchy, levels []int, rule *SuppressionRule, k int) (*Groupify, error) {
	if len(hierarchies) != len(table.Header) {
		return nil, fmt.Errorf("groupify: %d hierarchies for %d attributes", len(hierarchies), len(table.Header))
	}
	if len(levels) != len(table.Header) {
		return nil, fmt.Errorf("groupify: scheme has %d levels for %d attributes", len(levels), len(table.Header))
	}
	for i, level := range levels {
		if level < 0 || level > hierarchies[i].Height() {
			return nil, fmt.Errorf("groupify: level %d of %q out of range [0, %d]", level, table.Header[i], hierarchies[i].Height())
		}
	}

	g := Groupify{
		levels: slices.Clone(levels),
		index:  make(map[string]*entry),
	}

	generalized := make([]string, len(levels))
	for r, row := range table.Rows {
		if len(row) != len(levels) {
			return nil, fmt.Errorf("groupify: row %d has %d fields, expected %d", r, len(row), len(levels))
		}
		for i, value := range row {
			v, err := hierarchies[i].Generalize(value, levels[i])
			if err != nil {
				return nil, fmt.Errorf("groupify: row %d: %w", r, err)
			}
			generalized[i] = v
		}
		g.add(strings.Join(generalized, "\x00"))
	}

	records := len(table.Rows)
	for e := g.first; e != nil; e = e.next {
		suppressed, err := rule.Eval(e.count, k, records)
		if err != nil {
			return nil, err
		}
		if suppressed {
			e.suppressed = true
			g.outliers += e.count
		}
	}

	return &g, nil
}

func (g *Groupify) add(key string) {
	if e, found := g.index[key]; found {
		e.count++
		return
	}
	e := &entry{key: key, count: 1}
	g.index[key] = e
	if g.last == nil {
		g.first = e
	} else {
		g.last.next = e
	}
	g.last = e
}

// Classes returns the equivalence classes in insertion order. Every class
// reports the scheme's levels; the slice is shared and must not be modified.
func (g *Groupify) Classes() iter.Seq[metric.EquivalenceClass] {
	return func(yield func(metric.EquivalenceClass) bool) {
		for e := g.first; e != nil; e = e.next {
			class := metric.EquivalenceClass{
				Levels:     g.levels,
				Count:      e.count,
				Suppressed: e.suppressed,
			}
			if !yield(class) {
				return
			}
		}
	}
}

// Len returns the number of equivalence classes.
func (g *Groupify) Len() int {
	return len(g.index)
}

// Outliers returns the number of records in suppressed classes.
func (g *Groupify) Outliers() int {
	return g.outliers
}
