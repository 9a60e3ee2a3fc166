package view

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/emergency-view/internal/domain/emergency"
	"github.com/ehr/emergency-view/internal/platform/auth"
	"github.com/ehr/emergency-view/internal/platform/proximity"
	"github.com/ehr/emergency-view/internal/platform/session"
)

// Handler exposes page loads and user events over HTTP.
type Handler struct {
	deps     Deps
	sessions *session.Manager
	flags    session.Backend
	views    *Registry
	logger   zerolog.Logger
}

// NewHandler creates a Handler. deps.Session is ignored: every view gets the
// flag of the browser session that opened it.
func NewHandler(deps Deps, sessions *session.Manager, flags session.Backend, views *Registry, logger zerolog.Logger) *Handler {
	return &Handler{deps: deps, sessions: sessions, flags: flags, views: views, logger: logger}
}

// RegisterRoutes mounts page loads and view events. loginMW wraps only the
// credential submission.
func (h *Handler) RegisterRoutes(e *echo.Echo, loginMW ...echo.MiddlewareFunc) {
	e.GET("/", h.Open)
	e.GET("/r", h.Open)
	e.GET("/r/:token", h.Open)

	g := e.Group("/views/:id")
	g.GET("", h.Get)
	g.POST("/login/open", h.OpenLogin)
	g.POST("/login/close", h.CloseLogin)
	g.POST("/login", h.SubmitLogin, loginMW...)
	g.POST("/logout", h.Logout)
	g.POST("/refresh", h.Refresh)
	g.POST("/location", h.Locate)
}

// Open handles a page load: a fresh controller for the URL's token.
func (h *Handler) Open(c echo.Context) error {
	token := emergency.TokenFromURL(c.Request().URL)
	sid := h.sessions.Identify(c)

	deps := h.deps
	deps.Session = session.NewFlag(h.flags, sid, h.logger)
	if rid, ok := c.Get("request_id").(string); ok {
		deps.Logger = deps.Logger.With().Str("request_id", rid).Logger()
	}

	ctl := NewController(uuid.NewString(), token, deps)
	ctl.Start(c.Request().Context())
	h.views.Add(sid, ctl)

	return h.respond(c, http.StatusOK, ctl)
}

func (h *Handler) Get(c echo.Context) error {
	ctl, err := h.lookup(c)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, ctl)
}

func (h *Handler) OpenLogin(c echo.Context) error {
	ctl, err := h.lookup(c)
	if err != nil {
		return err
	}
	return h.transition(c, ctl, ctl.OpenLogin())
}

func (h *Handler) CloseLogin(c echo.Context) error {
	ctl, err := h.lookup(c)
	if err != nil {
		return err
	}
	return h.transition(c, ctl, ctl.CloseLogin())
}

func (h *Handler) SubmitLogin(c echo.Context) error {
	ctl, err := h.lookup(c)
	if err != nil {
		return err
	}
	var cred auth.Credential
	if err := c.Bind(&cred); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid login body")
	}
	err = ctl.SubmitLogin(c.Request().Context(), cred)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return h.respond(c, http.StatusUnauthorized, ctl)
	}
	return h.transition(c, ctl, err)
}

func (h *Handler) Logout(c echo.Context) error {
	ctl, err := h.lookup(c)
	if err != nil {
		return err
	}
	ctl.Logout(c.Request().Context())
	return h.respond(c, http.StatusOK, ctl)
}

func (h *Handler) Refresh(c echo.Context) error {
	ctl, err := h.lookup(c)
	if err != nil {
		return err
	}
	ctl.Refresh(c.Request().Context())
	return h.respond(c, http.StatusOK, ctl)
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     string   `json:"error"`
}

// Locate receives the position gathered by the client, or the reason it
// could not be gathered.
func (h *Handler) Locate(c echo.Context) error {
	ctl, err := h.lookup(c)
	if err != nil {
		return err
	}
	var req locationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid location body")
	}

	loc := proximity.StaticLocator{}
	switch {
	case req.Error != "" || req.Latitude == nil || req.Longitude == nil:
		loc.Err = proximity.ErrCapabilityUnavailable
	case *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180:
		return echo.NewHTTPError(http.StatusBadRequest, "coordinates out of range")
	default:
		loc.Coords = &proximity.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	ctl.Locate(c.Request().Context(), loc)
	return h.respond(c, http.StatusOK, ctl)
}

// lookup finds the view named in the path for the caller's browser session.
// Views of other sessions are reported as missing.
func (h *Handler) lookup(c echo.Context) (*Controller, error) {
	sid, ok := h.sessions.Peek(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "view not found")
	}
	ctl, ok := h.views.Get(c.Param("id"), sid)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "view not found")
	}
	return ctl, nil
}

func (h *Handler) transition(c echo.Context, ctl *Controller, err error) error {
	if errors.Is(err, ErrInvalidTransition) {
		return h.respond(c, http.StatusConflict, ctl)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.respond(c, http.StatusOK, ctl)
}

func (h *Handler) respond(c echo.Context, status int, ctl *Controller) error {
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(status, ctl.View())
}
