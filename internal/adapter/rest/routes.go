package rest

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the API and the health and metrics endpoints on e.
func RegisterRoutes(e *echo.Echo, h *Handler, health *HealthHandler) {
	e.Validator = NewValidator()

	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")
	v1.POST("/hotels/search/stream", h.SearchStream)
	v1.GET("/regions/suggest", h.SuggestRegions)
	v1.GET("/search-runs/recent", h.RecentSearchRuns)
}
