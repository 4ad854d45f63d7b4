// Package routes declares the gallery API endpoints as nested groups and
// registers them on a ServeMux using method patterns.
package routes

import "net/http"

// Route binds an HTTP method and path to a handler. Inside a Group the path
// is relative to the group prefix.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// String returns the ServeMux pattern, e.g. "GET /workflows/{id}". A route
// without a method matches every method.
func (r Route) String() string {
	if r.Method == "" {
		return r.Pattern
	}
	return r.Method + " " + r.Pattern
}
