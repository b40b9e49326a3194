package groupify

import (
	"slices"
	"testing"

	"precision/internal/dataset"
	"precision/internal/hierarchy"
	"precision/internal/metric"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHierarchies = `
age:
  - ["34", "30-39", "*"]
  - ["35", "30-39", "*"]
  - ["47", "40-49", "*"]
  - ["48", "40-49", "*"]
zip:
  - ["13053", "1305*", "*"]
  - ["13058", "1305*", "*"]
  - ["13068", "1306*", "*"]
`

func testTable() *dataset.Table {
	return &dataset.Table{
		Header: []string{"age", "zip", "sex"},
		Rows: [][]string{
			{"34", "13053", "m"},
			{"35", "13058", "m"},
			{"47", "13068", "f"},
			{"48", "13068", "f"},
			{"34", "13068", "f"},
		},
	}
}

func testHierarchySet(t *testing.T, table *dataset.Table) []*hierarchy.Hierarchy {
	t.Helper()
	set, err := hierarchy.Parse([]byte(testHierarchies))
	require.NoError(t, err)
	return set.Ordered(table.Header)
}

func mustRule(t *testing.T, expression string) *SuppressionRule {
	t.Helper()
	rule, err := NewSuppressionRule(expression)
	require.NoError(t, err)
	return rule
}

func TestBuild_InsertionOrder(t *testing.T) {
	table := testTable()

	g, err := Build(table, testHierarchySet(t, table), []int{1, 1, 0}, mustRule(t, DefaultSuppression), 2)
	require.NoError(t, err)

	classes := slices.Collect(g.Classes())
	require.Len(t, classes, 3)
	assert.Equal(t, 3, g.Len())

	// (30-39, 1305*, m) x2, (40-49, 1306*, f) x2, (30-39, 1306*, f) x1
	assert.Equal(t, []int{2, 2, 1}, []int{classes[0].Count, classes[1].Count, classes[2].Count})
	assert.Equal(t, []bool{false, false, true}, []bool{classes[0].Suppressed, classes[1].Suppressed, classes[2].Suppressed})
	assert.Equal(t, 1, g.Outliers())
	for _, c := range classes {
		assert.Equal(t, []int{1, 1, 0}, c.Levels)
	}
}

func TestBuild_FullGeneralization(t *testing.T) {
	table := testTable()

	g, err := Build(table, testHierarchySet(t, table), []int{2, 2, 0}, mustRule(t, DefaultSuppression), 2)
	require.NoError(t, err)

	classes := slices.Collect(g.Classes())
	require.Len(t, classes, 2, "only sex remains distinguishing")
	assert.Equal(t, 2, classes[0].Count)
	assert.Equal(t, 3, classes[1].Count)
	assert.Equal(t, 0, g.Outliers())
}

func TestBuild_LevelsAreCopied(t *testing.T) {
	table := testTable()
	levels := []int{0, 0, 0}

	g, err := Build(table, testHierarchySet(t, table), levels, mustRule(t, "false"), 2)
	require.NoError(t, err)
	levels[0] = 2

	for c := range g.Classes() {
		assert.Equal(t, []int{0, 0, 0}, c.Levels)
	}
}

func TestBuild_InvalidScheme(t *testing.T) {
	table := testTable()
	hierarchies := testHierarchySet(t, table)
	rule := mustRule(t, DefaultSuppression)

	_, err := Build(table, hierarchies, []int{1, 1}, rule, 2)
	assert.Error(t, err, "wrong number of levels")

	_, err = Build(table, hierarchies, []int{3, 0, 0}, rule, 2)
	assert.Error(t, err, "level above height")

	_, err = Build(table, hierarchies, []int{0, 0, 1}, rule, 2)
	assert.Error(t, err, "identity attribute cannot be generalized")

	_, err = Build(table, hierarchies[:2], []int{0, 0}, rule, 2)
	assert.Error(t, err, "hierarchy count mismatch")
}

func TestBuild_UnknownValue(t *testing.T) {
	table := testTable()
	table.Rows = append(table.Rows, []string{"99", "13053", "m"})

	_, err := Build(table, testHierarchySet(t, table), []int{1, 0, 0}, mustRule(t, DefaultSuppression), 2)
	assert.ErrorIs(t, err, hierarchy.ErrUnknownValue)
}

func TestBuild_FeedsMetric(t *testing.T) {
	table := testTable()
	hierarchies := testHierarchySet(t, table)
	providers := make([]metric.Hierarchy, len(hierarchies))
	for i, h := range hierarchies {
		providers[i] = h
	}
	p, err := metric.New(table.Shape(), providers)
	require.NoError(t, err)

	g, err := Build(table, hierarchies, []int{1, 1, 0}, mustRule(t, DefaultSuppression), 2)
	require.NoError(t, err)

	loss := p.Evaluate(g.Classes())

	// heights [2 2 0]; two regular classes at 0.5+0.5, one outlier at 1+1+1; 15 cells.
	assert.InDelta(t, (1.0+1.0+3.0)/15.0, loss.Value(), 1e-12)
	assert.InDelta(t, 3.0, loss.LowerBound(), 1e-12)
}

func TestSuppressionRule(t *testing.T) {
	rule := mustRule(t, "count < k || count * 10 < records")

	tests := []struct {
		count, k, records int
		want              bool
	}{
		{1, 2, 5, true},
		{2, 2, 5, false},
		{2, 2, 30, true},
		{5, 2, 30, false},
	}
	for _, tt := range tests {
		got, err := rule.Eval(tt.count, tt.k, tt.records)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "count=%d k=%d records=%d", tt.count, tt.k, tt.records)
	}
	assert.Equal(t, "count < k || count * 10 < records", rule.String())
}

func TestNewSuppressionRule_Errors(t *testing.T) {
	tests := map[string]string{
		"parse error":      "count <",
		"unknown variable": "size < k",
		"not boolean":      "count + k",
		"type mismatch":    "count < 'k'",
	}
	for name, expression := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewSuppressionRule(expression)
			assert.Error(t, err)
		})
	}
}
