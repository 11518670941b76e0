package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// OriginPolicy is the set of origin patterns allowed to make credentialed
// cross-origin requests. The zero value allows nothing.
type OriginPolicy struct {
	Name     string
	patterns []*regexp.Regexp
}

// DevelopmentOrigins allows localhost and 127.0.0.1 on any port plus hosted
// preview domains.
var DevelopmentOrigins = MustOriginPolicy("development",
	`^https?://(localhost|127\.0\.0\.1)(:\d+)?$`,
	`^https?://.*\.replit\.(dev|app)$`,
)

// ProductionOrigins allows nothing until a deployment adds its own domains
// with Extend.
var ProductionOrigins = OriginPolicy{Name: "production"}

// NewOriginPolicy compiles the given patterns into a policy.
func NewOriginPolicy(name string, patterns ...string) (OriginPolicy, error) {
	p := OriginPolicy{Name: name}
	return p.Extend(patterns...)
}

// MustOriginPolicy is like NewOriginPolicy but panics on an invalid pattern.
// Use it only for package-level policies.
func MustOriginPolicy(name string, patterns ...string) OriginPolicy {
	p, err := NewOriginPolicy(name, patterns...)
	if err != nil {
		panic(err)
	}
	return p
}

// Extend returns a copy of p that additionally allows the given patterns.
// Blank patterns are skipped.
func (p OriginPolicy) Extend(patterns ...string) (OriginPolicy, error) {
	out := OriginPolicy{
		Name:     p.Name,
		patterns: append([]*regexp.Regexp(nil), p.patterns...),
	}
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		re, err := regexp.Compile(raw)
		if err != nil {
			return OriginPolicy{}, NewValidationError("origin_pattern", fmt.Sprintf("invalid pattern %q: %v", raw, err))
		}
		out.patterns = append(out.patterns, re)
	}
	return out, nil
}

// Allows reports whether origin matches any pattern. An empty origin never matches.
func (p OriginPolicy) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	for _, re := range p.patterns {
		if re.MatchString(origin) {
			return true
		}
	}
	return false
}

// Patterns returns the source of every pattern in p.
func (p OriginPolicy) Patterns() []string {
	out := make([]string, 0, len(p.patterns))
	for _, re := range p.patterns {
		out = append(out, re.String())
	}
	return out
}
