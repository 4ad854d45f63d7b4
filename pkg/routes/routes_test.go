package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/gallery/pkg/routes"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func catalogGroup() routes.Group {
	return routes.Group{
		Prefix: "/workflows",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: ok},
			{Method: "GET", Pattern: "/{id}", Handler: ok},
		},
		Children: []routes.Group{
			{
				Prefix: "/stats",
				Routes: []routes.Route{
					{Method: "POST", Pattern: "", Handler: ok},
				},
			},
		},
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, catalogGroup())

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"list", "GET", "/workflows", http.StatusOK},
		{"find", "GET", "/workflows/12", http.StatusOK},
		{"nested child", "POST", "/workflows/stats", http.StatusOK},
		{"method mismatch", "DELETE", "/workflows", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestPatterns(t *testing.T) {
	got := catalogGroup().Patterns()
	want := []string{
		"GET /workflows",
		"GET /workflows/{id}",
		"POST /workflows/stats",
	}

	if len(got) != len(want) {
		t.Fatalf("patterns: got %d, want %d", len(got), len(want))
	}
	for i, r := range got {
		if r.String() != want[i] {
			t.Errorf("pattern[%d] = %q, want %q", i, r.String(), want[i])
		}
	}
}

func TestRouteString(t *testing.T) {
	tests := []struct {
		route routes.Route
		want  string
	}{
		{routes.Route{Method: "DELETE", Pattern: "/workflows/batch"}, "DELETE /workflows/batch"},
		{routes.Route{Pattern: "/"}, "/"},
	}

	for _, tt := range tests {
		if got := tt.route.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
