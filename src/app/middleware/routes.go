package middleware

import (
	"path"
	"strings"
)

// RouteMatcher decides which paths skip the edge filter entirely.
type RouteMatcher struct {
	// ExcludedPrefixes are matched against the start of the request path.
	ExcludedPrefixes []string

	// ExcludedExtensions are matched case-insensitively against the path's
	// final extension, including the dot.
	ExcludedExtensions []string
}

// DefaultRouteMatcher exempts framework static assets, image optimisation
// output, the favicon and common image files.
var DefaultRouteMatcher = RouteMatcher{
	ExcludedPrefixes: []string{
		"/_next/static",
		"/_next/image",
		"/favicon.ico",
		"/static/",
	},
	ExcludedExtensions: []string{".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp"},
}

// Exempt reports whether p bypasses the filter.
func (m RouteMatcher) Exempt(p string) bool {
	for _, prefix := range m.ExcludedPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}

	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	for _, e := range m.ExcludedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
