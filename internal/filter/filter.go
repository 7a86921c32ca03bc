// Package filter drops repaired records whose canonical text matches a pattern.
package filter

import (
	"fmt"

	"github.com/coregx/coregex"
)

// Drop matches canonical record text against a regular expression.
// The zero value and a nil *Drop match nothing.
type Drop struct {
	pattern string
	re      *coregex.Regexp
}

// Compile returns a Drop for pattern. An empty pattern yields a Drop that
// matches nothing.
func Compile(pattern string) (*Drop, error) {
	if pattern == "" {
		return &Drop{}, nil
	}
	re, err := coregex.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid drop pattern %q: %w", pattern, err)
	}
	return &Drop{pattern: pattern, re: re}, nil
}

// Match reports whether the record text should be dropped.
func (d *Drop) Match(text string) bool {
	if d == nil || d.re == nil {
		return false
	}
	return d.re.MatchString(text)
}

// Pattern returns the source pattern.
func (d *Drop) Pattern() string {
	if d == nil {
		return ""
	}
	return d.pattern
}
