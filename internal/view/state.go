// Package view holds the emergency page's view-state controller and the
// renderers that project records into view-models.
package view

import (
	"encoding/json"
	"errors"
)

// State is the page's active view. Exactly one is active at a time.
type State int

const (
	StatePublic State = iota
	StateLoginModalOpen
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StatePublic:
		return "public"
	case StateLoginModalOpen:
		return "login_modal_open"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ErrInvalidTransition is returned when an event is not allowed in the
// current state. The state is left unchanged.
var ErrInvalidTransition = errors.New("invalid view transition")
