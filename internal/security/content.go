package security

import (
	"fmt"
	"regexp"
)

// defaultPatterns covers script injection and prototype pollution markers.
var defaultPatterns = []string{
	`(?i)<\s*script\b`,
	`(?i)javascript\s*:`,
	`(?i)\bon(?:error|load|click|mouseover|focus)\s*=`,
	`__proto__`,
	`\bconstructor\s*(?:\[|\.\s*prototype)`,
	`(?i)\beval\s*\(`,
}

// ContentFilter scans raw request bodies against a denylist of patterns.
type ContentFilter struct {
	patterns []*regexp.Regexp
}

// NewContentFilter compiles the default patterns plus extra ones.
func NewContentFilter(extra []string) (*ContentFilter, error) {
	f := &ContentFilter{}
	for _, p := range append(append([]string{}, defaultPatterns...), extra...) {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid suspicious-content pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// Match returns the first pattern the body matches.
func (f *ContentFilter) Match(body []byte) (string, bool) {
	for _, re := range f.patterns {
		if re.Match(body) {
			return re.String(), true
		}
	}
	return "", false
}
