package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/version/", h.getServerVersion)
		r.Get("/api/version/info", h.getServerInfo)
	})

	// remote store
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.With(withGZip).Get("/api/store", h.getValue)
		r.With(withGZip, h.storeHashing, h.withWriterTag).Post("/api/store", h.setValues)

		// websocket upgrade needs the raw connection, so no gzip here
		r.Get("/api/subscribe", h.subscribe)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
