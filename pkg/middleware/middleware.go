// Package middleware holds the HTTP wrappers the gallery API mounts in front
// of its routes: panic recovery, CORS, request logging and body limits.
package middleware

import "net/http"

// Func wraps a handler.
type Func func(http.Handler) http.Handler

// System is an ordered middleware stack. The first Func added is the
// outermost wrapper and so sees each request first.
type System interface {
	Use(fns ...Func)
	Apply(handler http.Handler) http.Handler
	Len() int
}

type stack struct {
	fns []Func
}

func New() System {
	return &stack{}
}

// Use appends fns in order. Nil entries are dropped.
func (s *stack) Use(fns ...Func) {
	for _, fn := range fns {
		if fn != nil {
			s.fns = append(s.fns, fn)
		}
	}
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.fns) - 1; i >= 0; i-- {
		handler = s.fns[i](handler)
	}
	return handler
}

func (s *stack) Len() int { return len(s.fns) }
