package proximity

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// HospitalSearcher is the facility-search provider.
type HospitalSearcher interface {
	Hospitals(ctx context.Context, c Coordinates, radius int) ([]Element, error)
}

// Service turns provider responses into a facility list.
type Service struct {
	provider HospitalSearcher
	cache    *resultCache
	logger   zerolog.Logger
}

// NewService creates a Service. A positive cacheTTL keeps successful
// lookups for that long.
func NewService(provider HospitalSearcher, cacheTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{provider: provider, cache: newResultCache(cacheTTL), logger: logger}
}

// Nearby lists hospitals within SearchRadiusMeters of c. Provider failures
// and empty results come back as explicit statuses, never as errors.
func (s *Service) Nearby(ctx context.Context, c Coordinates) Result {
	if facilities, ok := s.cache.get(c); ok {
		return Result{Status: StatusFound, Facilities: facilities}
	}

	elements, err := s.provider.Hospitals(ctx, c, SearchRadiusMeters)
	if err != nil {
		s.logger.Warn().Err(err).Msg("nearby hospital lookup failed")
		return Result{Status: StatusFailed, Facilities: []Facility{}, Message: MessageFailed}
	}

	facilities := make([]Facility, 0, len(elements))
	for _, e := range elements {
		pos, ok := e.Position()
		if !ok {
			continue
		}
		name := e.Tags["name"]
		if name == "" {
			name = "Hospital"
		}
		facilities = append(facilities, Facility{
			Name:          name,
			Phone:         e.Tags["phone"],
			Location:      pos,
			DirectionsURL: DirectionsURL(pos),
		})
	}
	if len(facilities) == 0 {
		return Result{Status: StatusNoneFound, Facilities: facilities, Message: MessageNoneFound}
	}

	s.cache.set(c, facilities)
	return Result{Status: StatusFound, Facilities: facilities}
}

// DirectionsURL links to a maps search for c.
func DirectionsURL(c Coordinates) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%s,%s",
		strconv.FormatFloat(c.Latitude, 'f', -1, 64),
		strconv.FormatFloat(c.Longitude, 'f', -1, 64))
}
