package score

import (
	"fmt"
	"strconv"
	"strings"
)

// SchemeKey formats generalization levels as "1-0-2".
func SchemeKey(levels []int) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, "-")
}

// ParseSchemeKey is the inverse of SchemeKey.
func ParseSchemeKey(key string) ([]int, error) {
	if key == "" {
		return nil, fmt.Errorf("empty scheme key")
	}
	parts := strings.Split(key, "-")
	levels := make([]int, len(parts))
	for i, p := range parts {
		l, err := strconv.Atoi(p)
		if err != nil || l < 0 {
			return nil, fmt.Errorf("invalid scheme key %q: level %q", key, p)
		}
		levels[i] = l
	}
	return levels, nil
}
