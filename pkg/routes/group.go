package routes

import "net/http"

// Group organizes routes under a common prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		for _, p := range group.Patterns() {
			mux.HandleFunc(p.String(), p.Handler)
		}
	}
}

// Patterns flattens the group and its children into routes whose Pattern
// carries the full prefix.
func (g Group) Patterns() []Route {
	return g.flatten("")
}

func (g Group) flatten(parentPrefix string) []Route {
	fullPrefix := parentPrefix + g.Prefix
	out := make([]Route, 0, len(g.Routes))
	for _, route := range g.Routes {
		out = append(out, Route{
			Method:  route.Method,
			Pattern: fullPrefix + route.Pattern,
			Handler: route.Handler,
		})
	}
	for _, child := range g.Children {
		out = append(out, child.flatten(fullPrefix)...)
	}
	return out
}
