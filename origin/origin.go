// Package origin implements the request-origin allow-list that gates every
// API endpoint. An allow-list is built once at startup and never mutated,
// so concurrent requests can consult it without locking.
package origin

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

type pattern struct {
	raw string
	// re is non-nil for wildcard patterns and matches the full origin.
	re *regexp.Regexp
}

// AllowList is an ordered, immutable set of permitted origins. Patterns are
// checked in order and the first match wins.
type AllowList struct {
	patterns []pattern
	logger   *slog.Logger
}

// NewAllowList compiles the given patterns. A pattern containing '*' becomes
// a wildcard matcher where '*' matches any substring and literal dots match
// literally; any other pattern matches by equality or substring containment.
// The substring match is deliberately loose so that preview-deployment
// subdomains of an allowed domain keep working.
func NewAllowList(patterns []string, logger *slog.Logger) (*AllowList, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &AllowList{logger: logger.With("component", "origin")}
	for _, raw := range patterns {
		p := pattern{raw: raw}
		if strings.Contains(raw, "*") {
			re, err := compileWildcard(raw)
			if err != nil {
				return nil, fmt.Errorf("compiling origin pattern %q: %w", raw, err)
			}
			p.re = re
		}
		l.patterns = append(l.patterns, p)
	}
	return l, nil
}

// Allowed reports whether a request declaring the given origin may proceed.
// An empty origin is always allowed: non-browser clients such as curl and
// mobile apps send no Origin header.
func (l *AllowList) Allowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, p := range l.patterns {
		if p.re != nil {
			if p.re.MatchString(origin) {
				return true
			}
			continue
		}
		if origin == p.raw || strings.Contains(origin, p.raw) {
			return true
		}
	}
	l.logger.Warn("origin rejected",
		slog.String("origin", origin),
		slog.Any("allow_list", l.Patterns()))
	return false
}

// Patterns returns a copy of the configured patterns, in order. Used to echo
// the allow-list in rejection responses and health output.
func (l *AllowList) Patterns() []string {
	out := make([]string, len(l.patterns))
	for i, p := range l.patterns {
		out[i] = p.raw
	}
	return out
}

// compileWildcard turns a '*' pattern into an anchored regexp. All literal
// dots are escaped before the wildcard substitution; multi-dot domains like
// https://*.foo.bar.app would otherwise be matched too loosely.
func compileWildcard(raw string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(raw)
	expr := "^" + strings.ReplaceAll(quoted, `\*`, ".*") + "$"
	return regexp.Compile(expr)
}
