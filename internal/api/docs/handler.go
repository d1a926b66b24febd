package docs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// specPath is where the deployment ships the console API description,
// relative to the working directory.
const specPath = "docs/swagger.yaml"

// Handler serves the Swagger UI rendering the console API spec.
func Handler() http.HandlerFunc {
	return httpSwagger.Handler(
		httpSwagger.URL("/"+specPath),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	)
}

// RegisterRoutes mounts the API documentation under /docs.
func RegisterRoutes(r chi.Router) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/index.html", http.StatusFound)
	})
	r.Get("/docs/*", Handler())

	// The UI fetches the raw spec from the same prefix.
	r.Get("/"+specPath, func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, specPath)
	})
}
