package emergency

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// maxRecordBytes caps the body read from the record endpoint.
const maxRecordBytes = 1 << 20

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient overrides the HTTP client used for record requests.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithTimeout bounds every record request. Zero leaves requests bounded only
// by the caller's context.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.timeout = d }
}

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l zerolog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// Fetcher resolves share tokens to records against the record endpoint and
// falls back to the demo record whenever that fails.
type Fetcher struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// NewFetcher creates a Fetcher for the record API rooted at baseURL.
func NewFetcher(baseURL string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch resolves token to a record. It never fails: an empty token yields
// the demo record without I/O, and any request or decode failure yields the
// demo record with a false authentication hint.
func (f *Fetcher) Fetch(ctx context.Context, token string) FetchResult {
	if token == "" {
		return FetchResult{Record: DemoRecord(), Source: SourceDemo}
	}

	rec, hint, err := f.fetch(ctx, token)
	if err != nil {
		f.logger.Warn().Err(err).Msg("record fetch failed, using demo data")
		return FetchResult{Record: DemoRecord(), Source: SourceFallback}
	}
	return FetchResult{Record: rec, AuthenticatedHint: hint, Source: SourceAPI}
}

func (f *Fetcher) fetch(ctx context.Context, token string) (*Record, bool, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	endpoint := f.baseURL + "/api/emergency/" + url.PathEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, fmt.Errorf("record endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRecordBytes))
	if err != nil {
		return nil, false, fmt.Errorf("read body: %w", err)
	}
	return DecodeView(body)
}

// DecodeView interprets a record endpoint body. When "public_view" holds a
// JSON object the body is an envelope: that object is the record and a
// boolean "is_authenticated" is returned as the hint. Any other body is the
// record itself, with a false hint.
func DecodeView(body []byte) (*Record, bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, false, fmt.Errorf("decode record body: %w", err)
	}
	if fields == nil {
		return nil, false, fmt.Errorf("decode record body: not an object")
	}

	var hint bool
	payload := body
	if raw, ok := fields["public_view"]; ok && isObject(raw) {
		payload = raw
		if flag, ok := fields["is_authenticated"]; ok {
			_ = json.Unmarshal(flag, &hint)
		}
	}

	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, false, fmt.Errorf("decode record: %w", err)
	}
	return &rec, hint, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
