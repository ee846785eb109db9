// Package render fills `$name` placeholders in job templates.
package render

import (
	"regexp"
)

var placeholder = regexp.MustCompile(`\$(\w+)`)

// Substitute replaces every $identifier in text with vars[identifier].
// Identifiers missing from vars are replaced with the empty string.
func Substitute(text string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		return vars[m[1:]]
	})
}

// Identifiers returns the distinct placeholder names used in text, in order
// of first appearance.
func Identifiers(text string) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Missing returns the placeholders of text that vars does not define.
func Missing(text string, vars map[string]string) []string {
	var missing []string
	for _, name := range Identifiers(text) {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
