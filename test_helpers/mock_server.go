// Package test_helpers provides a configurable mock of the Discord REST API
// for tests.
package test_helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockServer provides a configurable mock Discord API server for testing.
// Responses are keyed by "METHOD /path", e.g. "POST /oauth2/token".
type MockServer struct {
	server *httptest.Server

	mutex       sync.RWMutex
	responses   map[string][]*MockResponse
	responders  map[string]Responder
	defaultResp *MockResponse
	delay       time.Duration

	logMutex   sync.Mutex
	requestLog []RequestEntry
	callCount  map[string]int
}

// RequestEntry records one request received by the server.
type RequestEntry struct {
	Method       string
	Path         string
	Query        url.Values
	Headers      http.Header
	Body         string
	Timestamp    time.Time
	ResponseCode int
}

// Form parses the body as a form-encoded payload.
func (e RequestEntry) Form() url.Values {
	values, _ := url.ParseQuery(e.Body)
	return values
}

// JSON decodes the body into v.
func (e RequestEntry) JSON(v any) error {
	return json.Unmarshal([]byte(e.Body), v)
}

// MockResponse defines a mock API response
type MockResponse struct {
	Status  int
	Body    string
	Headers map[string]string
	Delay   time.Duration
}

// Responder computes the response of a route from the request.
type Responder func(RequestEntry) *MockResponse

// JSONResponse returns a 200 response with v encoded as the body.
func JSONResponse(v any) *MockResponse {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("failed to encode mock response: %v", err))
	}
	return &MockResponse{Status: http.StatusOK, Body: string(data)}
}

// NewMockServer creates a new mock server instance. Unconfigured routes
// answer 404 with a Discord error body.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses:  make(map[string][]*MockResponse),
		responders: make(map[string]Responder),
		callCount:  make(map[string]int),
		defaultResp: &MockResponse{
			Status: http.StatusNotFound,
			Body:   `{"code": 0, "message": "404: Not Found"}`,
		},
	}
	ms.server = httptest.NewServer(ms)
	return ms
}

// URL returns the base URL of the mock server
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts down the mock server
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse configures the response for a route, replacing any queued ones.
func (ms *MockServer) SetResponse(route string, response *MockResponse) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	ms.responses[route] = []*MockResponse{response}
}

// QueueResponses configures responses served in order for a route. The last
// one is repeated once the others are used up.
func (ms *MockServer) QueueResponses(route string, responses ...*MockResponse) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	ms.responses[route] = append([]*MockResponse(nil), responses...)
}

// SetResponder configures a dynamic response for a route. It takes
// precedence over responses set with SetResponse.
func (ms *MockServer) SetResponder(route string, fn Responder) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	ms.responders[route] = fn
}

// SetDefaultResponse configures the response of unconfigured routes.
func (ms *MockServer) SetDefaultResponse(response *MockResponse) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	ms.defaultResp = response
}

// SetDelay adds delay to all responses
func (ms *MockServer) SetDelay(delay time.Duration) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	ms.delay = delay
}

// GetRequestLog returns the request log
func (ms *MockServer) GetRequestLog() []RequestEntry {
	ms.logMutex.Lock()
	defer ms.logMutex.Unlock()
	return append([]RequestEntry{}, ms.requestLog...)
}

// LastRequest returns the most recent request to route.
func (ms *MockServer) LastRequest(route string) (RequestEntry, bool) {
	ms.logMutex.Lock()
	defer ms.logMutex.Unlock()
	for i := len(ms.requestLog) - 1; i >= 0; i-- {
		e := ms.requestLog[i]
		if e.Method+" "+e.Path == route {
			return e, true
		}
	}
	return RequestEntry{}, false
}

// GetCallCount returns the call count for a route
func (ms *MockServer) GetCallCount(route string) int {
	ms.logMutex.Lock()
	defer ms.logMutex.Unlock()
	return ms.callCount[route]
}

// TotalCalls returns the number of requests received.
func (ms *MockServer) TotalCalls() int {
	ms.logMutex.Lock()
	defer ms.logMutex.Unlock()
	return len(ms.requestLog)
}

// ClearLog clears the request log
func (ms *MockServer) ClearLog() {
	ms.logMutex.Lock()
	defer ms.logMutex.Unlock()
	ms.requestLog = ms.requestLog[:0]
	ms.callCount = make(map[string]int)
}

// ServeHTTP implements http.Handler
func (ms *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path

	entry := RequestEntry{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.Query(),
		Headers:   r.Header.Clone(),
		Timestamp: time.Now(),
	}
	if r.Body != nil {
		body, _ := io.ReadAll(r.Body)
		entry.Body = string(body)
	}

	ms.mutex.Lock()
	response := ms.defaultResp
	if fn, ok := ms.responders[route]; ok {
		response = fn(entry)
	} else if queue := ms.responses[route]; len(queue) > 0 {
		response = queue[0]
		if len(queue) > 1 {
			ms.responses[route] = queue[1:]
		}
	}
	delay := ms.delay + response.Delay
	ms.mutex.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" && response.Body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(response.Status)
	w.Write([]byte(response.Body))
	entry.ResponseCode = response.Status

	ms.logMutex.Lock()
	ms.requestLog = append(ms.requestLog, entry)
	ms.callCount[route]++
	ms.logMutex.Unlock()
}

// DiscordMockServer provides Discord-specific mock responses
type DiscordMockServer struct {
	*MockServer
}

// NewDiscordMockServer creates a mock server with a working token endpoint,
// revocation endpoint and current user.
func NewDiscordMockServer() *DiscordMockServer {
	server := &DiscordMockServer{MockServer: NewMockServer()}
	server.setupDefaultResponses()
	return server
}

// Fixture identifiers used by the default responses.
const (
	UserID      = "80351110224678912"
	Username    = "nelly"
	AccessToken = "mock_access_token"
)

func (dms *DiscordMockServer) setupDefaultResponses() {
	dms.SetupToken(AccessToken, "mock_refresh_token", "identify guilds", 604800)
	dms.SetResponse("POST /oauth2/token/revoke", &MockResponse{Status: http.StatusOK, Body: "{}"})
	dms.SetResponse("GET /users/@me", JSONResponse(UserPayload(UserID, Username, "0")))
}

// SetupToken configures the token endpoint. An empty refreshToken omits the field.
func (dms *DiscordMockServer) SetupToken(accessToken, refreshToken, scope string, expiresIn int) {
	dms.SetResponse("POST /oauth2/token", JSONResponse(TokenPayload(accessToken, refreshToken, scope, expiresIn)))
}

// TokenPayload builds an access token response body.
func TokenPayload(accessToken, refreshToken, scope string, expiresIn int) map[string]any {
	body := map[string]any{
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   expiresIn,
		"scope":        scope,
	}
	if refreshToken != "" {
		body["refresh_token"] = refreshToken
	}
	return body
}

// UserPayload builds a minimal user object.
func UserPayload(id, username, discriminator string) map[string]any {
	return map[string]any{
		"id":            id,
		"username":      username,
		"discriminator": discriminator,
		"global_name":   nil,
		"avatar":        nil,
	}
}

// GuildPayload builds a minimal partial guild object.
func GuildPayload(id, name string) map[string]any {
	return map[string]any{
		"id":          id,
		"name":        name,
		"icon":        nil,
		"owner":       false,
		"permissions": "104324673",
		"features":    []string{},
	}
}

// SetupGuildPages serves the guild list in pages. Each request answers with
// the guilds after the "after" cursor (or before the "before" cursor) up to
// "limit", in ascending ID order.
func (dms *DiscordMockServer) SetupGuildPages(ids []string) {
	dms.SetResponder("GET /users/@me/guilds", func(e RequestEntry) *MockResponse {
		limit := len(ids)
		if n, err := strconv.Atoi(e.Query.Get("limit")); err == nil {
			limit = n
		}
		after, before := e.Query.Get("after"), e.Query.Get("before")

		var window []string
		switch {
		case after != "":
			for _, id := range ids {
				if snowflakeLess(after, id) {
					window = append(window, id)
				}
			}
			if len(window) > limit {
				window = window[:limit]
			}
		case before != "":
			for _, id := range ids {
				if snowflakeLess(id, before) {
					window = append(window, id)
				}
			}
			if len(window) > limit {
				window = window[len(window)-limit:]
			}
		default:
			window = ids
			if len(window) > limit {
				window = window[:limit]
			}
		}

		page := make([]map[string]any, 0, len(window))
		for _, id := range window {
			page = append(page, GuildPayload(id, "guild-"+id))
		}
		return JSONResponse(page)
	})
}

// snowflakeLess compares decimal IDs without parsing them.
func snowflakeLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return strings.Compare(a, b) < 0
}
