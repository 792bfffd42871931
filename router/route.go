package router

import (
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
)

// Kind is the type of value a capture accepts.
type Kind uint8

const (
	KindInt   Kind = iota + 1 // one or more ASCII digits, parsed to int
	KindAlpha                 // one or more ASCII letters
	KindWord                  // one or more ASCII letters or underscores
	KindEnum                  // one of a fixed set of strings
	KindRegex                 // anchored custom expression
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "an integer"
	case KindAlpha:
		return "alphabetic"
	case KindWord:
		return "a letters-and-underscores token"
	case KindEnum:
		return "an allowed value"
	case KindRegex:
		return "a match for its pattern"
	default:
		return "valid"
	}
}

// Schema describes what a single capture accepts.
type Schema struct {
	Kind    Kind
	Enum    []string // KindEnum
	Pattern string   // KindRegex
	re      *regexp.Regexp
}

func Int() Schema   { return Schema{Kind: KindInt} }
func Alpha() Schema { return Schema{Kind: KindAlpha} }
func Word() Schema  { return Schema{Kind: KindWord} }

func Enum(values ...string) Schema { return Schema{Kind: KindEnum, Enum: values} }

// Regex accepts values matching expr in full.
func Regex(expr string) Schema { return Schema{Kind: KindRegex, Pattern: expr} }

func (s *Schema) compile() error {
	switch s.Kind {
	case KindInt, KindAlpha, KindWord:
	case KindEnum:
		if len(s.Enum) == 0 {
			return fmt.Errorf("%w: enum with no values", ErrBadSchema)
		}
	case KindRegex:
		if s.Pattern == "" {
			return fmt.Errorf("%w: empty regex", ErrBadSchema)
		}
		if s.re == nil {
			re, err := regexp.Compile("^(?:" + s.Pattern + ")$")
			if err != nil {
				return fmt.Errorf("%w: %v", ErrBadSchema, err)
			}
			s.re = re
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrBadSchema, s.Kind)
	}
	return nil
}

func allBytes(v string, ok func(c byte) bool) bool {
	if v == "" {
		return false
	}
	for i := 0; i < len(v); i++ {
		if !ok(v[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isWord(c byte) bool   { return isLetter(c) || c == '_' }

// parse checks raw against the schema and returns its typed value.
func (s Schema) parse(raw string) (any, bool) {
	switch s.Kind {
	case KindInt:
		if !allBytes(raw, isDigit) {
			return nil, false
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, false
		}
		return n, true
	case KindAlpha:
		return raw, allBytes(raw, isLetter)
	case KindWord:
		return raw, allBytes(raw, isWord)
	case KindEnum:
		for _, v := range s.Enum {
			if v == raw {
				return raw, true
			}
		}
		return nil, false
	case KindRegex:
		return raw, s.re != nil && s.re.MatchString(raw)
	default:
		return nil, false
	}
}

// format renders v for a path segment. Integer captures accept Go integers
// and digit strings and are written in canonical decimal form.
func (s Schema) format(v any) (string, bool) {
	if s.Kind != KindInt {
		raw := fmt.Sprint(v)
		_, ok := s.parse(raw)
		return raw, ok
	}

	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint:
		if uint64(x) > math.MaxInt64 {
			return "", false
		}
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return "", false
		}
		n = int64(x)
	case string:
		p, ok := s.parse(x)
		if !ok {
			return "", false
		}
		return strconv.Itoa(p.(int)), true
	default:
		return "", false
	}
	if n < 0 || n > math.MaxInt {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

// Route binds a path pattern to a handler under a symbolic name.
//
// Pattern segments are literals or {name} captures; Params must hold a
// Schema for every capture and nothing else.
type Route struct {
	Name    string
	Pattern string
	Params  map[string]Schema
	Handler http.Handler
}

type compiled struct {
	route    Route
	segments []segment
	schemas  map[string]Schema
}

func compile(rt Route) (compiled, error) {
	if rt.Name == "" {
		return compiled{}, fmt.Errorf("%w: pattern %q", ErrEmptyName, rt.Pattern)
	}
	if rt.Handler == nil {
		return compiled{}, fmt.Errorf("%w: route %q", ErrNilHandler, rt.Name)
	}

	segs, err := tokenize(rt.Pattern)
	if err != nil {
		return compiled{}, fmt.Errorf("route %q: %w", rt.Name, err)
	}

	schemas := make(map[string]Schema, len(rt.Params))
	captured := 0
	for _, seg := range segs {
		if seg.capture == "" {
			continue
		}
		captured++
		s, ok := rt.Params[seg.capture]
		if !ok {
			return compiled{}, fmt.Errorf("route %q: %w: %q", rt.Name, ErrMissingSchema, seg.capture)
		}
		if err := s.compile(); err != nil {
			return compiled{}, fmt.Errorf("route %q: capture %q: %w", rt.Name, seg.capture, err)
		}
		schemas[seg.capture] = s
	}
	if captured != len(rt.Params) {
		for name := range rt.Params {
			if _, ok := schemas[name]; !ok {
				return compiled{}, fmt.Errorf("route %q: %w: %q", rt.Name, ErrUnusedSchema, name)
			}
		}
	}

	return compiled{route: rt, segments: segs, schemas: schemas}, nil
}

// fits reports whether parts has the route's shape: same length, equal
// literals, and non-empty captures.
func (c *compiled) fits(parts []string) bool {
	if len(parts) != len(c.segments) {
		return false
	}
	for i, seg := range c.segments {
		if seg.capture != "" {
			if parts[i] == "" {
				return false
			}
			continue
		}
		if seg.literal != parts[i] {
			return false
		}
	}
	return true
}
