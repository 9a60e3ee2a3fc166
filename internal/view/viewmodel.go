package view

import (
	"github.com/ehr/emergency-view/internal/domain/emergency"
	"github.com/ehr/emergency-view/internal/platform/proximity"
)

// ViewModel is everything the presentation layer needs to paint the page.
// Public, Login and Full are set according to State.
type ViewModel struct {
	ID         string           `json:"view_id"`
	Token      string           `json:"token,omitempty"`
	State      State            `json:"state"`
	DataSource emergency.Source `json:"data_source"`
	Public     *PublicView      `json:"public,omitempty"`
	Login      *LoginModalView  `json:"login,omitempty"`
	Full       *FullRecordView  `json:"full_record,omitempty"`
	Proximity  ProximityView    `json:"proximity"`
	Actions    Actions          `json:"actions"`
}

// LoginModalView echoes the submitted email so the form keeps its input.
type LoginModalView struct {
	Email string `json:"email"`
	Error string `json:"error,omitempty"`
}

type ProximityView struct {
	Visible    bool                   `json:"visible"`
	Loading    bool                   `json:"loading,omitempty"`
	Center     *proximity.Coordinates `json:"center,omitempty"`
	Zoom       int                    `json:"zoom,omitempty"`
	Status     proximity.Status       `json:"status,omitempty"`
	Message    string                 `json:"message,omitempty"`
	Facilities []proximity.Facility   `json:"facilities"`
}

// Actions lists the toolbar controls available in the current state.
type Actions struct {
	Login   bool `json:"login"`
	Logout  bool `json:"logout"`
	Refresh bool `json:"refresh"`
}
