package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestManager_IssuesSessionCookie(t *testing.T) {
	m := NewManager(testKey, true, zerolog.Nop())
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	sid := m.Identify(c)
	if sid == "" {
		t.Fatal("expected a session id")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("expected %s cookie, got %+v", CookieName, cookies)
	}
	ck := cookies[0]
	if ck.MaxAge != 0 || !ck.Expires.IsZero() {
		t.Error("expected a browser-session cookie without expiry")
	}
	if !ck.HttpOnly || !ck.Secure {
		t.Error("expected HttpOnly and Secure cookie")
	}

	// the same cookie identifies the same browser session
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(ck)
	rec2 := httptest.NewRecorder()
	c2 := e.NewContext(req2, rec2)
	if got := m.Identify(c2); got != sid {
		t.Errorf("expected session %s, got %s", sid, got)
	}
	if len(rec2.Result().Cookies()) != 0 {
		t.Error("expected no new cookie for a known session")
	}
	if got, ok := m.Peek(c2); !ok || got != sid {
		t.Errorf("expected Peek to return %s, got %s %v", sid, got, ok)
	}
}

func TestManager_RejectsForeignCookie(t *testing.T) {
	issuer := NewManager([]byte("another-key-another-key-another!!"), false, zerolog.Nop())
	m := NewManager(testKey, false, zerolog.Nop())
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	foreign := issuer.Identify(c)
	ck := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	c2 := e.NewContext(req, httptest.NewRecorder())
	if _, ok := m.Peek(c2); ok {
		t.Error("expected Peek to reject a cookie signed with another key")
	}
	if got := m.Identify(c2); got == foreign {
		t.Error("expected a fresh session for a cookie signed with another key")
	}
}

func TestManager_GarbageCookie(t *testing.T) {
	m := NewManager(testKey, false, zerolog.Nop())
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-jwt"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if sid := m.Identify(c); sid == "" {
		t.Fatal("expected a new session id")
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Error("expected a replacement cookie")
	}
}
