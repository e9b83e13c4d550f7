package router

import (
	"net/http"

	"watermark-camera/internal/http-server/handler/captures"
	"watermark-camera/internal/http-server/handler/overlays"
	"watermark-camera/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	CaptureHandler   *captures.Handler
	WatermarkHandler *overlays.Handler
}

func SetupRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/captures", func(r chi.Router) {
			r.Post("/", h.CaptureHandler.Submit)
			r.Get("/{id}", h.CaptureHandler.Get)
		})

		r.Route("/watermarks", func(r chi.Router) {
			r.Get("/", h.WatermarkHandler.List)
			r.Post("/", h.WatermarkHandler.Add)
			r.Get("/summary", h.WatermarkHandler.Summary)
			r.Post("/reset", h.WatermarkHandler.Reset)
			r.Post("/preview", h.WatermarkHandler.Preview)
			r.Put("/{index}", h.WatermarkHandler.Update)
			r.Delete("/{index}", h.WatermarkHandler.Remove)
			r.Patch("/{index}/enabled", h.WatermarkHandler.SetEnabled)
		})

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	})

	return r
}
