package hierarchy

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrUnknownValue is returned when a value has no row in the hierarchy.
var ErrUnknownValue = errors.New("value not found in hierarchy")

// Hierarchy is the generalization hierarchy of one attribute.
// Every row maps an original value (column 0) to its generalizations at levels 1..h.
type Hierarchy struct {
	attribute string
	rows      [][]string
	index     map[string]int // original value -> row
	identity  bool
}

// Identity returns a hierarchy with a single level: values are never generalized.
func Identity(attribute string) *Hierarchy {
	return &Hierarchy{attribute: attribute, identity: true}
}

// New builds a hierarchy from its rows. All rows must have the same width and
// original values must be unique.
func New(attribute string, rows [][]string) (*Hierarchy, error) {
	h := Hierarchy{
		attribute: attribute,
		rows:      rows,
		index:     make(map[string]int, len(rows)),
	}
	for i, row := range rows {
		if len(row) == 0 {
			return nil, fmt.Errorf("hierarchy %q: row %d is empty", attribute, i)
		}
		if len(row) != len(rows[0]) {
			return nil, fmt.Errorf("hierarchy %q: row %d has %d levels, expected %d", attribute, i, len(row), len(rows[0]))
		}
		if _, found := h.index[row[0]]; found {
			return nil, fmt.Errorf("hierarchy %q: duplicate value %q", attribute, row[0])
		}
		h.index[row[0]] = i
	}
	return &h, nil
}

// Attribute returns the name of the attribute the hierarchy belongs to.
func (h *Hierarchy) Attribute() string {
	return h.attribute
}

// Levels returns the number of generalization levels, including the original level 0.
// An empty (non-identity) hierarchy has no levels.
func (h *Hierarchy) Levels() int {
	if h.identity {
		return 1
	}
	if len(h.rows) == 0 {
		return 0
	}
	return len(h.rows[0])
}

// Height returns the most general level, or 0 for hierarchies without levels.
func (h *Hierarchy) Height() int {
	return max(h.Levels()-1, 0)
}

// Generalize returns the representation of value at the given level.
// Level 0 always returns value unchanged.
func (h *Hierarchy) Generalize(value string, level int) (string, error) {
	if level < 0 || level > h.Height() {
		return "", fmt.Errorf("hierarchy %q: level %d out of range [0, %d]", h.attribute, level, h.Height())
	}
	if level == 0 {
		return value, nil
	}
	row, found := h.index[value]
	if !found {
		return "", fmt.Errorf("hierarchy %q: %w: %q", h.attribute, ErrUnknownValue, value)
	}
	return h.rows[row][level], nil
}

// Set holds hierarchies by attribute name.
type Set map[string]*Hierarchy

// For returns the hierarchy of the attribute, or an identity hierarchy if none is defined.
func (s Set) For(attribute string) *Hierarchy {
	if h, found := s[attribute]; found {
		return h
	}
	return Identity(attribute)
}

// Ordered returns the hierarchies for the given attributes, in that order.
func (s Set) Ordered(attributes []string) []*Hierarchy {
	result := make([]*Hierarchy, len(attributes))
	for i, a := range attributes {
		result[i] = s.For(a)
	}
	return result
}

// Parse reads hierarchies from a YAML document of the form
//
//	age:
//	  - ["34", "30-39", "*"]
//	  - ["35", "30-39", "*"]
//	zip:
//	  - ["13053", "1305*", "*"]
func Parse(content []byte) (Set, error) {
	raw := make(map[string][][]string)
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parsing hierarchies YAML: %w", err)
	}

	set := make(Set, len(raw))
	for attribute, rows := range raw {
		if attribute == "" {
			return nil, errors.New("hierarchies contain an empty attribute name")
		}
		h, err := New(attribute, rows)
		if err != nil {
			return nil, err
		}
		set[attribute] = h
	}
	return set, nil
}

// Load reads a YAML hierarchy file. See Parse for the format.
func Load(path string) (Set, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hierarchies file: %w", err)
	}
	return Parse(content)
}
