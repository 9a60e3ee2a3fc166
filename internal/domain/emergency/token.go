package emergency

import (
	"net/url"
	"strings"
)

// TokenFromURL extracts the share token from a page URL. The path segment
// following the first literal "r" wins, then the "token" query parameter.
// An empty result means demo mode.
func TokenFromURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	for i, s := range segments {
		if s != "r" {
			continue
		}
		if i+1 < len(segments) {
			return segments[i+1]
		}
		break
	}
	return u.Query().Get("token")
}
