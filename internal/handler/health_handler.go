package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/maikolmontes/pymes-manager/prometheus"
)

// Root answers the base route with a liveness banner
func Root(c echo.Context) error {
	return c.String(http.StatusOK, "API The PYMES Manager funcionando")
}

// HealthCheck handles the health check endpoint
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "pymes-api",
	})
}

// MetricsHandler exposes the Prometheus metrics endpoint
func MetricsHandler(c echo.Context) error {
	handler := prometheus.GetPrometheusHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
