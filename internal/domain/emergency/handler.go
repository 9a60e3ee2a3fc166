package emergency

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the record endpoint consumed by the record fetcher.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/emergency/:token", h.GetView)
}

func (h *Handler) GetView(c echo.Context) error {
	v, err := h.svc.GetView(c.Request().Context(), c.Param("token"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "emergency record not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, v)
}
