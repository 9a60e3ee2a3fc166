package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// CookieName is the name of the browser-session cookie.
const CookieName = "ev_session"

const issuer = "emergency-view"

// Manager issues and verifies browser-session cookies.
type Manager struct {
	key    []byte
	secure bool
	logger zerolog.Logger
}

func NewManager(signingKey []byte, secure bool, logger zerolog.Logger) *Manager {
	return &Manager{key: signingKey, secure: secure, logger: logger}
}

// Identify returns the browser-session id of the request. A missing or
// invalid cookie starts a new browser session and sets its cookie.
func (m *Manager) Identify(c echo.Context) string {
	if ck, err := c.Cookie(CookieName); err == nil {
		if sid, err := m.parse(ck.Value); err == nil {
			return sid
		}
		m.logger.Debug().Msg("discarding invalid session cookie")
	}

	sid := uuid.NewString()
	value, err := m.sign(sid)
	if err != nil {
		m.logger.Warn().Err(err).Msg("session cookie not issued")
		return sid
	}
	// No MaxAge or Expires: the browser drops it when the session ends.
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

// Peek returns the browser-session id carried by the request without
// starting a new one.
func (m *Manager) Peek(c echo.Context) (string, bool) {
	ck, err := c.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	sid, err := m.parse(ck.Value)
	if err != nil {
		return "", false
	}
	return sid, true
}

func (m *Manager) sign(sid string) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       sid,
		Issuer:   issuer,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
}

func (m *Manager) parse(value string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(*jwt.Token) (interface{}, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return "", err
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}
	return claims.ID, nil
}
