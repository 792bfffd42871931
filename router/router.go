package router

import (
	"fmt"
	"net/http"
	"strings"
)

// Router is a static, ordered route table. It is read-only once built and
// safe for concurrent use without locking.
type Router struct {
	prefix    string
	namespace string
	routes    []compiled
	byName    map[string]int
}

// Option configures a Router at construction.
type Option func(*Router)

// WithPrefix sets the mount point every pattern is relative to.
func WithPrefix(prefix string) Option {
	return func(r *Router) { r.prefix = normalizePrefix(prefix) }
}

// WithNamespace qualifies view names as "namespace:name".
func WithNamespace(ns string) Option {
	return func(r *Router) { r.namespace = ns }
}

func (r *Router) Prefix() string    { return r.prefix }
func (r *Router) Namespace() string { return r.namespace }

// Routes returns the registered routes in declaration order.
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	for i := range r.routes {
		out[i] = r.routes[i].route
	}
	return out
}

// Lookup finds a route by bare or namespaced name.
func (r *Router) Lookup(name string) (*Route, bool) {
	c, ok := r.lookup(name)
	if !ok {
		return nil, false
	}
	rt := c.route
	return &rt, true
}

func (r *Router) lookup(name string) (*compiled, bool) {
	ns, bare := splitName(name)
	if ns != "" && ns != r.namespace {
		return nil, false
	}
	i, ok := r.byName[bare]
	if !ok {
		return nil, false
	}
	return &r.routes[i], true
}

// Resolve maps a request path to the first route whose shape it fits and
// returns that route with its typed captures.
func (r *Router) Resolve(path string) (*Match, error) {
	rest, ok := strings.CutPrefix(path, r.prefix)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
	}

	var parts []string
	if rest != "" {
		parts = strings.Split(rest, "/")
	}

	for i := range r.routes {
		c := &r.routes[i]
		if !c.fits(parts) {
			continue
		}

		params := make(Params, len(c.schemas))
		for j, seg := range c.segments {
			if seg.capture == "" {
				continue
			}
			s := c.schemas[seg.capture]
			v, ok := s.parse(parts[j])
			if !ok {
				return nil, &ValidationError{Route: c.route.Name, Param: seg.capture, Value: parts[j], Kind: s.Kind}
			}
			params[seg.capture] = v
		}

		rt := c.route
		return &Match{Route: &rt, Params: params, Namespace: r.namespace}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
}

// Reverse builds the canonical path for the named route. Integer captures
// take Go integers or digit strings and are written without leading zeros;
// other captures are formatted with fmt. Every value must satisfy its schema.
func (r *Router) Reverse(name string, params map[string]any) (string, error) {
	c, ok := r.lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}

	for k := range params {
		if _, ok := c.schemas[k]; !ok {
			return "", fmt.Errorf("route %q: %w: %q", c.route.Name, ErrUnexpectedParameter, k)
		}
	}

	var b strings.Builder
	b.WriteString(r.prefix)
	for i, seg := range c.segments {
		if i > 0 {
			b.WriteByte('/')
		}
		if seg.capture == "" {
			b.WriteString(seg.literal)
			continue
		}
		v, ok := params[seg.capture]
		if !ok || v == nil {
			return "", fmt.Errorf("route %q: %w: %q", c.route.Name, ErrMissingParameter, seg.capture)
		}
		s := c.schemas[seg.capture]
		raw, ok := s.format(v)
		if !ok {
			return "", &ValidationError{Route: c.route.Name, Param: seg.capture, Value: fmt.Sprint(v), Kind: s.Kind}
		}
		b.WriteString(raw)
	}
	return b.String(), nil
}

// MustReverse is Reverse that panics on error.
func (r *Router) MustReverse(name string, params map[string]any) string {
	p, err := r.Reverse(name, params)
	if err != nil {
		panic(err)
	}
	return p
}

// ServeHTTP dispatches to the matched handler with its params in the request
// context. Any resolve failure answers 404.
func (r *Router) ServeHTTP(rw http.ResponseWriter, rr *http.Request) {
	m, err := r.Resolve(rr.URL.Path)
	if err != nil {
		http.NotFound(rw, rr)
		return
	}
	m.Route.Handler.ServeHTTP(rw, rr.WithContext(WithMatch(rr.Context(), m)))
}
