package api

import (
	"net/http"

	"github.com/JaimeStill/gallery/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Prompts.Handler().Routes(),
		domain.Workflows.Handler().Routes(),
		domain.Favorites.Handler().Routes(),
		domain.Users.Handler().Routes(),
		domain.Snapshots.Handler().Routes(),
	)
}
