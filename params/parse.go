// Package params expands custom-argument specifications into the task list
// of a run: value parsing, Cartesian product, repetition and chunking.
package params

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidRange is returned for range expressions that are not lists of
// integers or inclusive `start-end` integer ranges. Literal values that
// contain a hyphen, such as dates, fail with this error; pass them as a
// YAML list instead.
var ErrInvalidRange = errors.New("invalid range expression")

const globChars = "*?["

// ParseValue classifies raw and expands it to its ordered values.
//
// Glob patterns expand to the sorted matching paths (possibly none).
// Values containing `-` or `,` are range expressions such as "1-3,5,7-10"
// and expand to ascending, deduplicated integers. Anything else is a
// single literal.
func ParseValue(raw string) ([]string, error) {
	switch {
	case strings.ContainsAny(raw, globChars):
		matches, err := filepath.Glob(raw)
		if err != nil {
			return nil, fmt.Errorf("params: glob %q: %w", raw, err)
		}
		sort.Strings(matches)
		return matches, nil
	case strings.ContainsAny(raw, "-,"):
		numbers, err := parseRange(raw)
		if err != nil {
			return nil, err
		}
		values := make([]string, len(numbers))
		for i, n := range numbers {
			values[i] = strconv.Itoa(n)
		}
		return values, nil
	default:
		return []string{raw}, nil
	}
}

func parseRange(raw string) ([]int, error) {
	set := map[int]struct{}{}
	for _, segment := range strings.Split(raw, ",") {
		segment = strings.TrimSpace(segment)
		bounds := strings.Split(segment, "-")
		switch len(bounds) {
		case 1:
			n, err := strconv.Atoi(bounds[0])
			if err != nil {
				return nil, fmt.Errorf("params: %w: %q in %q", ErrInvalidRange, segment, raw)
			}
			set[n] = struct{}{}
		case 2:
			start, serr := strconv.Atoi(strings.TrimSpace(bounds[0]))
			end, eerr := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if serr != nil || eerr != nil {
				return nil, fmt.Errorf("params: %w: %q in %q", ErrInvalidRange, segment, raw)
			}
			for n := start; n <= end; n++ {
				set[n] = struct{}{}
			}
		default:
			return nil, fmt.Errorf("params: %w: %q in %q", ErrInvalidRange, segment, raw)
		}
	}
	numbers := make([]int, 0, len(set))
	for n := range set {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers, nil
}

// SwitchValues expands an on/off command-line switch: the switch text
// followed by a space, then the empty string.
func SwitchValues(name, prefix string) []string {
	return []string{prefix + name + " ", ""}
}

// FlagValues renders each value as a command-line option `<prefix><name> <v> `.
func FlagValues(name, prefix string, values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = prefix + name + " " + v + " "
	}
	return out
}
