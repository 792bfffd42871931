package router

import (
	"context"
	"net/http"
)

// Params holds typed captures: int for KindInt, string otherwise.
type Params map[string]any

// Int returns an integer capture, or 0 and false.
func (p Params) Int(name string) (int, bool) {
	n, ok := p[name].(int)
	return n, ok
}

// String returns a string capture, or "" and false.
func (p Params) String(name string) (string, bool) {
	s, ok := p[name].(string)
	return s, ok
}

// Match is the result of a successful Resolve.
type Match struct {
	Route     *Route
	Params    Params
	Namespace string
}

// ViewName is the route name, qualified by the namespace when one is set.
func (m *Match) ViewName() string {
	if m.Namespace == "" {
		return m.Route.Name
	}
	return m.Namespace + ":" + m.Route.Name
}

type matchKey struct{}

func WithMatch(ctx context.Context, m *Match) context.Context {
	return context.WithValue(ctx, matchKey{}, m)
}

func MatchFrom(ctx context.Context) (*Match, bool) {
	m, ok := ctx.Value(matchKey{}).(*Match)
	return m, ok && m != nil
}

// ParamsFrom returns the captures the dispatcher stored on r, or nil.
func ParamsFrom(r *http.Request) Params {
	if m, ok := MatchFrom(r.Context()); ok {
		return m.Params
	}
	return nil
}
