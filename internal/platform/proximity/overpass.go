package proximity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultOverpassURL is the public Overpass interpreter endpoint.
const DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

// Element is one node, way or relation returned by Overpass. Ways and
// relations carry their coordinates in Center when queried with "out center".
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *Center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Position returns the element's coordinates, either direct or via Center.
func (e Element) Position() (Coordinates, bool) {
	if e.Lat != nil && e.Lon != nil {
		return Coordinates{Latitude: *e.Lat, Longitude: *e.Lon}, true
	}
	if e.Center != nil {
		return Coordinates{Latitude: e.Center.Lat, Longitude: e.Center.Lon}, true
	}
	return Coordinates{}, false
}

type overpassResponse struct {
	Elements []Element `json:"elements"`
}

// OverpassClient queries an Overpass interpreter.
type OverpassClient struct {
	endpoint string
	client   *http.Client
}

func NewOverpassClient(endpoint string, client *http.Client) *OverpassClient {
	if endpoint == "" {
		endpoint = DefaultOverpassURL
	}
	if client == nil {
		client = &http.Client{}
	}
	return &OverpassClient{endpoint: endpoint, client: client}
}

// HospitalQuery builds the Overpass QL query for hospitals around c.
func HospitalQuery(c Coordinates, radius int) string {
	around := fmt.Sprintf("(around:%d,%s,%s)", radius,
		strconv.FormatFloat(c.Latitude, 'f', -1, 64),
		strconv.FormatFloat(c.Longitude, 'f', -1, 64))
	return `[out:json];(` +
		`node["amenity"="hospital"]` + around + `;` +
		`way["amenity"="hospital"]` + around + `;` +
		`relation["amenity"="hospital"]` + around + `;` +
		`);out center;`
}

// Hospitals returns the hospital elements within radius meters of c.
func (o *OverpassClient) Hospitals(ctx context.Context, c Coordinates, radius int) ([]Element, error) {
	endpoint := o.endpoint + "?data=" + url.QueryEscape(HospitalQuery(c, radius))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build overpass request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("overpass returned status %d", resp.StatusCode)
	}

	var out overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}
	return out.Elements, nil
}
