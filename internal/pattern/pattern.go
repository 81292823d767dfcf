// Package pattern compiles request path patterns into a segment form that
// can be matched against concrete paths.
//
// Supported pattern syntax:
//   - Exact match: "/api/users" matches only "/api/users"
//   - Named params: "/api/users/{id}" matches "/api/users/123", binding id=123
//   - Trailing wildcard: "/api/users/*" matches "/api/users/123" and deeper
package pattern

import (
	"fmt"
	"strings"
)

type segmentKind int

const (
	segLiteral segmentKind = iota
	segParam
	segWildcard
)

type segment struct {
	kind segmentKind
	// value is the literal text for segLiteral, the parameter name for
	// segParam, and unused for segWildcard.
	value string
}

// Pattern is a compiled path pattern. The zero value is not usable; build
// one with Compile.
type Pattern struct {
	raw      string
	segments []segment
	// wildcard marks a trailing "*" segment, which consumes the rest of
	// the path including additional slashes.
	wildcard bool
}

// Compile parses a path pattern into its compiled form.
// A "/" prefix is required so patterns read like the paths they match.
func Compile(raw string) (*Pattern, error) {
	if raw == "" {
		return nil, fmt.Errorf("pattern cannot be empty")
	}
	if !strings.HasPrefix(raw, "/") {
		return nil, fmt.Errorf("pattern %q must start with /", raw)
	}

	p := &Pattern{raw: raw}
	parts := splitPath(raw)
	for i, part := range parts {
		switch {
		case part == "*":
			if i != len(parts)-1 {
				return nil, fmt.Errorf("pattern %q: wildcard is only valid as the final segment", raw)
			}
			p.wildcard = true
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			name := part[1 : len(part)-1]
			if name == "" {
				return nil, fmt.Errorf("pattern %q: parameter segment needs a name", raw)
			}
			p.segments = append(p.segments, segment{kind: segParam, value: name})
		case strings.ContainsAny(part, "{}*"):
			return nil, fmt.Errorf("pattern %q: segment %q mixes literals and placeholders", raw, part)
		default:
			p.segments = append(p.segments, segment{kind: segLiteral, value: part})
		}
	}
	return p, nil
}

// MustCompile is Compile for patterns known valid at author time.
func MustCompile(raw string) *Pattern {
	p, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the original pattern text.
func (p *Pattern) String() string { return p.raw }

// Exact reports whether the pattern contains no params or wildcards.
func (p *Pattern) Exact() bool {
	if p.wildcard {
		return false
	}
	for _, s := range p.segments {
		if s.kind != segLiteral {
			return false
		}
	}
	return true
}

// Match reports whether path matches the pattern. On a match, params holds
// the values bound by named parameter segments (nil when the pattern has
// none).
func (p *Pattern) Match(path string) (params map[string]string, ok bool) {
	// Fast path for exact patterns.
	if p.Exact() {
		if normalize(path) == normalize(p.raw) {
			return nil, true
		}
		return nil, false
	}

	parts := splitPath(path)

	if p.wildcard {
		// The wildcard itself must consume at least zero segments, so the
		// path only needs to cover the fixed prefix.
		if len(parts) < len(p.segments) {
			return nil, false
		}
	} else if len(parts) != len(p.segments) {
		return nil, false
	}

	for i, seg := range p.segments {
		switch seg.kind {
		case segLiteral:
			if parts[i] != seg.value {
				return nil, false
			}
		case segParam:
			if params == nil {
				params = make(map[string]string)
			}
			params[seg.value] = parts[i]
		}
	}
	return params, true
}

func normalize(path string) string {
	if path == "/" {
		return path
	}
	return strings.TrimSuffix(path, "/")
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
