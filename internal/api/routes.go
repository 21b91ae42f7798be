// Package api provides HTTP handlers for the lumap viewer server.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/brandonlukas/lumap/internal/catalog"
	"github.com/brandonlukas/lumap/internal/service"
	"github.com/brandonlukas/lumap/internal/viewer"
)

// RouterConfig contains router configuration.
type RouterConfig struct {
	Service     *service.ViewerService
	CacheStats  func() map[string]interface{}
	CORSOrigins []string
}

// NewRouter creates a new HTTP router. It is the input-adapter boundary:
// raw UI events (strings, "none" sentinels) become typed viewer commands
// here and nowhere else.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/attributes", attributesHandler(cfg.Service))
		r.Get("/state", stateHandler(cfg.Service))
		r.Get("/stats", statsHandler(cfg.Service, cfg.CacheStats))

		r.Route("/view", func(r chi.Router) {
			r.Post("/attribute", attributeSelectHandler(cfg.Service))
			r.Post("/highlight", highlightSelectHandler(cfg.Service))
			r.Post("/reset", resetHandler(cfg.Service))
		})

		r.Route("/buffers", func(r chi.Router) {
			r.Get("/colors", colorBufferHandler(cfg.Service))
			r.Get("/brightness", brightnessBufferHandler(cfg.Service))
		})
	})

	r.Get("/snapshot.png", snapshotHandler(cfg.Service))

	return r
}

func attributesHandler(svc *service.ViewerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"attributes": svc.Attributes(),
		}
		if name, ok := svc.DefaultAttribute(); ok {
			response["default"] = name
		} else {
			response["default"] = nil
		}
		writeJSON(w, response)
	}
}

func stateHandler(svc *service.ViewerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.State())
	}
}

func statsHandler(svc *service.ViewerService, cacheStats func() map[string]interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"state": svc.State(),
		}
		if cacheStats != nil {
			response["cache"] = cacheStats()
		}
		writeJSON(w, response)
	}
}

// attributeSelectHandler translates the dropdown event. The attribute name
// "none" (or empty) is the UI sentinel for base-color mode; it is coerced to
// a typed ClearAttribute command at this boundary.
func attributeSelectHandler(svc *service.ViewerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Attribute string `json:"attribute"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		var cmd viewer.Command
		name := strings.TrimSpace(body.Attribute)
		if name == "" || strings.EqualFold(name, "none") {
			cmd = viewer.ClearAttribute{}
		} else {
			cmd = viewer.SwitchAttribute{Name: name}
		}

		if err := svc.Apply(r.Context(), cmd); err != nil {
			if errors.Is(err, catalog.ErrUnknownAttribute) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			// Last-known-good buffers remain; report the degraded switch.
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, svc.State())
	}
}

// highlightSelectHandler translates the category selection event. A null or
// absent category clears the highlight.
func highlightSelectHandler(svc *service.ViewerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Category *int `json:"category"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		var cmd viewer.Command
		if body.Category == nil {
			cmd = viewer.ClearHighlight{}
		} else {
			cmd = viewer.SetHighlight{Category: *body.Category}
		}

		if err := svc.Apply(r.Context(), cmd); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, svc.State())
	}
}

func resetHandler(svc *service.ViewerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Apply(r.Context(), viewer.ResetDefaults{}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, svc.State())
	}
}

func colorBufferHandler(svc *service.ViewerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(svc.ColorBytes())
	}
}

func brightnessBufferHandler(svc *service.ViewerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(svc.BrightnessBytes())
	}
}

func snapshotHandler(svc *service.ViewerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		width := parseDimension(r.URL.Query().Get("w"))
		height := parseDimension(r.URL.Query().Get("h"))

		data, err := svc.Snapshot(width, height)
		if err != nil {
			http.Error(w, "snapshot render failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(data)
	}
}

// parseDimension clamps snapshot dimensions; 0 means "use the default".
func parseDimension(raw string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 16 {
		return 0
	}
	if v > 4096 {
		return 4096
	}
	return v
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
