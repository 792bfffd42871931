package router

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound            = errors.New("no route matches path")
	ErrUnknownRoute        = errors.New("no route registered under that name")
	ErrMissingParameter    = errors.New("missing required parameter")
	ErrUnexpectedParameter = errors.New("parameter is not captured by the route pattern")
	ErrInvalidParameter    = errors.New("parameter does not satisfy its schema")

	ErrBadPattern       = errors.New("every capture segment must be exactly {name}")
	ErrNilHandler       = errors.New("nil handler provided")
	ErrEmptyName        = errors.New("route name must not be empty")
	ErrDuplicateName    = errors.New("route name already registered")
	ErrDuplicateCapture = errors.New("capture name repeated within one pattern")
	ErrMissingSchema    = errors.New("capture has no schema")
	ErrUnusedSchema     = errors.New("schema names no capture in the pattern")
	ErrBadSchema        = errors.New("schema can never match")
)

// ValidationError reports a capture whose value violates its schema.
type ValidationError struct {
	Route string
	Param string
	Value string
	Kind  Kind
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("route %q: parameter %q=%q is not %s", e.Route, e.Param, e.Value, e.Kind)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidParameter }

// segment is one slash-separated piece of a compiled pattern. A capture
// segment has an empty literal.
type segment struct {
	literal string
	capture string
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// tokenize splits a route pattern into literal and capture segments.
func tokenize(pattern string) ([]segment, error) {
	pattern = strings.Trim(pattern, "/")
	if pattern == "" {
		return nil, nil
	}

	parts := strings.Split(pattern, "/")
	segs := make([]segment, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrBadPattern, pattern)
		}
		if !strings.ContainsAny(p, "{}") {
			segs = append(segs, segment{literal: p})
			continue
		}
		if !strings.HasPrefix(p, "{") || !strings.HasSuffix(p, "}") {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, p)
		}
		name := p[1 : len(p)-1]
		if !isIdent(name) {
			return nil, fmt.Errorf("%w: %q is not an identifier", ErrBadPattern, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCapture, name)
		}
		seen[name] = true
		segs = append(segs, segment{capture: name})
	}
	return segs, nil
}

// normalizePrefix returns prefix with exactly one leading and one trailing slash.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return "/"
	}
	return "/" + prefix + "/"
}

// splitName separates an optional "namespace:" qualifier from a route name.
func splitName(name string) (string, string) {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// New builds an immutable route table. Routes are matched in the order given.
func New(routes []Route, opts ...Option) (*Router, error) {
	r := &Router{
		prefix: "/",
		byName: make(map[string]int, len(routes)),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.routes = make([]compiled, 0, len(routes))
	for _, rt := range routes {
		c, err := compile(rt)
		if err != nil {
			return nil, err
		}
		if _, dup := r.byName[rt.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, rt.Name)
		}
		r.byName[rt.Name] = len(r.routes)
		r.routes = append(r.routes, c)
	}
	return r, nil
}

// MustNew is New that panics on a registration error.
func MustNew(routes []Route, opts ...Option) *Router {
	r, err := New(routes, opts...)
	if err != nil {
		panic(err)
	}
	return r
}
