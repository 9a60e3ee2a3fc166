// Package proximity finds hospitals near the viewer through an Overpass
// compatible geospatial query service.
package proximity

import (
	"context"
	"errors"
)

// SearchRadiusMeters is the fixed search radius around the viewer.
const SearchRadiusMeters = 5000

// MapZoom is the zoom level of the facilities map.
const MapZoom = 13

// ErrCapabilityUnavailable means the viewer's location could not be
// obtained (unsupported or denied).
var ErrCapabilityUnavailable = errors.New("location capability unavailable")

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Locator yields the viewer's coordinates.
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// StaticLocator reports coordinates gathered by the client, or the error it
// hit while gathering them.
type StaticLocator struct {
	Coords *Coordinates
	Err    error
}

func (l StaticLocator) Locate(context.Context) (Coordinates, error) {
	if l.Err != nil {
		return Coordinates{}, l.Err
	}
	if l.Coords == nil {
		return Coordinates{}, ErrCapabilityUnavailable
	}
	return *l.Coords, nil
}

type Facility struct {
	Name          string      `json:"name"`
	Phone         string      `json:"phone,omitempty"`
	Location      Coordinates `json:"location"`
	DirectionsURL string      `json:"directions_url"`
}

type Status string

const (
	StatusFound     Status = "found"
	StatusNoneFound Status = "none_found"
	StatusFailed    Status = "failed"
)

const (
	MessageNoneFound = "No nearby hospitals found (or Overpass API rate-limited)."
	MessageFailed    = "Failed to load nearby hospitals."
)

// Result is the outcome of one lookup. Facilities is empty unless Status is
// StatusFound.
type Result struct {
	Status     Status     `json:"status"`
	Facilities []Facility `json:"facilities"`
	Message    string     `json:"message,omitempty"`
}
