// Package session keeps the per-browser-session authentication flag.
//
// A browser session is identified by a signed cookie that carries no expiry,
// so it lives exactly as long as the browser session. The flag itself is
// kept server side in a Backend keyed by that identity and never written to
// durable storage.
package session

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// ErrUnavailable is returned by backends that cannot be reached.
var ErrUnavailable = errors.New("session storage unavailable")

// Backend stores authentication flags by browser-session id.
type Backend interface {
	Set(ctx context.Context, sid string) error
	Get(ctx context.Context, sid string) (bool, error)
	Delete(ctx context.Context, sid string) error
}

// Flag is the authentication flag of one browser session. None of its
// methods report errors: an unreachable backend reads as "not authenticated"
// and writes become no-ops.
type Flag struct {
	backend Backend
	sid     string
	logger  zerolog.Logger
}

func NewFlag(backend Backend, sid string, logger zerolog.Logger) *Flag {
	return &Flag{backend: backend, sid: sid, logger: logger}
}

// Save marks the browser session authenticated.
func (f *Flag) Save(ctx context.Context) {
	if f.backend == nil || f.sid == "" {
		return
	}
	if err := f.backend.Set(ctx, f.sid); err != nil {
		f.logger.Warn().Err(err).Msg("session flag not saved")
	}
}

// Load reports whether Save happened earlier in this browser session.
func (f *Flag) Load(ctx context.Context) bool {
	if f.backend == nil || f.sid == "" {
		return false
	}
	ok, err := f.backend.Get(ctx, f.sid)
	if err != nil {
		f.logger.Warn().Err(err).Msg("session flag unreadable, treating as signed out")
		return false
	}
	return ok
}

// Clear removes the mark.
func (f *Flag) Clear(ctx context.Context) {
	if f.backend == nil || f.sid == "" {
		return
	}
	if err := f.backend.Delete(ctx, f.sid); err != nil {
		f.logger.Warn().Err(err).Msg("session flag not cleared")
	}
}
