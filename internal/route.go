package internal

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultBaseURL is the versioned root of the Discord REST API.
const DefaultBaseURL = "https://discord.com/api/v10"

var placeholderRegex = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Params holds the values substituted into a route's path template.
type Params map[string]any

// Route is a single resolved request target.
type Route struct {
	// Method is the HTTP verb.
	Method string
	// Path is the unresolved template, e.g. "/guilds/{guild_id}/members/{user_id}".
	// It doubles as the low-cardinality label for metrics.
	Path string
	// URL is the absolute request URL.
	URL string
}

// NewRoute resolves path against baseURL, replacing every {name} placeholder
// with params[name]. String values are percent-encoded; any other value is
// formatted with fmt.Sprint. A placeholder without a value is an error.
func NewRoute(baseURL, method, path string, params Params) (*Route, error) {
	var missing []string

	resolved := placeholderRegex.ReplaceAllStringFunc(path, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := params[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		if s, ok := v.(string); ok {
			return url.PathEscape(s)
		}
		return fmt.Sprint(v)
	})

	if len(missing) > 0 {
		return nil, fmt.Errorf("route %s %s: missing parameter(s) %s", method, path, strings.Join(missing, ", "))
	}

	return &Route{
		Method: method,
		Path:   path,
		URL:    strings.TrimSuffix(baseURL, "/") + resolved,
	}, nil
}

// String returns "METHOD URL".
func (r *Route) String() string {
	return r.Method + " " + r.URL
}
