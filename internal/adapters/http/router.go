package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers popcache HTTP routes and the middleware stack.
// Centralizing routes here keeps error and logging behavior consistent across
// endpoints. The internal group carries the write-path hooks invoked by the
// platform's post service; it is expected to sit behind the service mesh, not
// the public edge.
func NewRouter(handler *Handler, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/boards/v1", func(r chi.Router) {
		r.Get("/categories/{category}/posts", handler.getCategoryPage)

		r.Route("/internal", func(r chi.Router) {
			r.Post("/refresh/{category}", handler.triggerRefresh)
			r.Post("/posts", handler.postCreated)
			r.Put("/posts/{post_id}", handler.postUpdated)
			r.Delete("/posts/{post_id}", handler.postDeleted)
			r.Put("/posts/{post_id}/notice", handler.noticeToggled)
			r.Post("/posts/{post_id}/engagement", handler.postEngaged)
		})
	})

	return r
}
