package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ehr/emergency-view/internal/config"
	"github.com/ehr/emergency-view/internal/domain/emergency"
	"github.com/ehr/emergency-view/internal/domain/fullrecord"
	"github.com/ehr/emergency-view/internal/platform/auth"
	"github.com/ehr/emergency-view/internal/platform/db"
	"github.com/ehr/emergency-view/internal/platform/middleware"
	"github.com/ehr/emergency-view/internal/platform/proximity"
	"github.com/ehr/emergency-view/internal/platform/session"
	"github.com/ehr/emergency-view/internal/view"
)

const sweepInterval = time.Minute

// server is the assembled HTTP application and the resources it owns.
type server struct {
	echo  *echo.Echo
	pool  *pgxpool.Pool
	flags *session.MemoryBackend
	views *view.Registry
}

func (s *server) Close() {
	s.views.Close()
	s.flags.Close()
	if s.pool != nil {
		s.pool.Close()
	}
}

// newServer wires storage, collaborators and routes from cfg. Without
// DATABASE_URL every store is in memory.
func newServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*server, error) {
	key, err := cfg.SigningKey()
	if err != nil {
		return nil, err
	}

	s := &server{}
	if cfg.DatabaseURL != "" {
		s.pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("connected to database")
	}

	var shares emergency.ShareRepository
	if s.pool != nil {
		shares = emergency.NewShareRepoPG(s.pool)
	} else {
		shares = emergency.NewShareRepoMemory()
		logger.Info().Str("token", emergency.DemoToken).Msg("using in-memory share repository")
	}

	var full fullrecord.Source = fullrecord.NewStaticSource()
	if cfg.FullRecordSource == config.FullRecordPostgres {
		if s.pool == nil {
			return nil, fmt.Errorf("full record source %q needs a database", cfg.FullRecordSource)
		}
		full = fullrecord.NewPGSource(s.pool)
	}

	verifier := auth.NewPasswordVerifier(cfg.AuthEmail, cfg.AuthPasswordHash)
	if !verifier.Configured() {
		logger.Warn().Msg("no login account configured, the full record cannot be unlocked")
	}

	fetcher := emergency.NewFetcher(cfg.RecordBaseURL(),
		emergency.WithTimeout(cfg.RecordFetchTimeout),
		emergency.WithLogger(logger.With().Str("component", "record_fetcher").Logger()),
	)
	overpass := proximity.NewOverpassClient(cfg.OverpassURL, &http.Client{Timeout: 30 * time.Second})
	facilities := proximity.NewService(overpass, cfg.ProximityCacheTTL, logger.With().Str("component", "proximity").Logger())

	s.flags = session.NewMemoryBackend(cfg.SessionIdleTTL, sweepInterval)
	s.views = view.NewRegistry(cfg.ViewTTL, sweepInterval)
	cookies := session.NewManager(key, cfg.CookieSecure, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.CookieSecure))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{echo.HeaderContentType, middleware.RequestIDHeader},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(s.pool))

	emergency.NewHandler(emergency.NewService(shares)).RegisterRoutes(e)

	deps := view.Deps{
		Records:     fetcher,
		Verifier:    verifier,
		FullRecords: full,
		Facilities:  facilities,
		Logger:      logger,
	}
	loginLimit := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.LoginRateRPS,
		BurstSize:         cfg.LoginRateBurst,
		IdleTTL:           10 * time.Minute,
	})
	view.NewHandler(deps, cookies, s.flags, s.views, logger).RegisterRoutes(e, loginLimit)

	s.echo = e
	return s, nil
}
