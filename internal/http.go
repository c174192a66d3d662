package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	// Version is the library version reported in the User-Agent header.
	Version = "0.1.0"
	// RepositoryURL is reported in the User-Agent header.
	RepositoryURL = "https://github.com/jamesprial/go-discord-oauth2"

	// DefaultTimeout is applied to the session when no http.Client is supplied.
	DefaultTimeout = 30 * time.Second

	SecondsPerMinute = 60.0

	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeJSON = "application/json"

	// maxErrorBodyBytes bounds how much of a failed response is kept on APIError.
	maxErrorBodyBytes = 64 << 10
)

// UserAgent is sent with every request. Discord requires the
// "DiscordBot (url, version)" shape for bots; OAuth2 apps use the same form.
var UserAgent = fmt.Sprintf("DiscordApp (%s %s) Go/%s",
	RepositoryURL, Version, strings.TrimPrefix(runtime.Version(), "go"))

// AuthMode selects how a request is authenticated.
type AuthMode int

const (
	// AuthNone sends no Authorization header.
	AuthNone AuthMode = iota
	// AuthBearer sends "Authorization: Bearer <access token>".
	AuthBearer
	// AuthBasic sends the client ID and secret as HTTP Basic credentials.
	AuthBasic
	// AuthBot sends "Authorization: Bot <bot token>".
	AuthBot
)

func (m AuthMode) String() string {
	switch m {
	case AuthBearer:
		return "bearer"
	case AuthBasic:
		return "basic"
	case AuthBot:
		return "bot"
	default:
		return "none"
	}
}

// Auth is the authentication of a single request.
type Auth struct {
	Mode  AuthMode
	Token string
}

// NoAuth sends the request unauthenticated.
var NoAuth = Auth{Mode: AuthNone}

// Bearer authenticates with a user's access token.
func Bearer(accessToken string) Auth {
	return Auth{Mode: AuthBearer, Token: accessToken}
}

// Basic authenticates with the client credentials.
func Basic() Auth {
	return Auth{Mode: AuthBasic}
}

// Bot authenticates with the configured bot token.
func Bot() Auth {
	return Auth{Mode: AuthBot}
}

// Request describes one API call.
type Request struct {
	Route *Route
	Auth  Auth
	// Form is sent form-encoded. Ignored when JSON is set.
	Form url.Values
	// JSON, when non-nil, is sent as a JSON body with a JSON Content-Type.
	JSON any
	// Query is appended to the route URL.
	Query url.Values
	// Headers are merged over the defaults. User-Agent cannot be overridden.
	Headers http.Header
}

// RateLimitConfig throttles outgoing requests on the client side. Requests
// are only spaced out; nothing is retried.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 50*60 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10 if zero.
	Burst int
}

const (
	DefaultRequestsPerMinute = 50 * 60
	DefaultRateLimitBurst    = 10
)

// Config configures the request pipeline.
type Config struct {
	ClientID     string
	ClientSecret string
	BotToken     string

	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration

	RateLimit *RateLimitConfig
	Metrics   *Metrics
	Logger    *slog.Logger
}

// Client is the single point of outbound communication with the Discord API.
type Client struct {
	BaseURL   string
	UserAgent string

	clientID     string
	clientSecret string
	botToken     string

	session *SessionCell
	limiter *rate.Limiter
	metrics *Metrics
	logger  *slog.Logger
}

// NewClient returns a pipeline for cfg. No connection is made until the first request.
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: err.Error()}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	supplied := cfg.HTTPClient
	session := NewSessionCell(func() (*http.Client, error) {
		if supplied != nil {
			logger.Debug("using caller supplied HTTP session")
			return supplied, nil
		}
		logger.Debug("HTTP session created", "timeout", timeout)
		return &http.Client{Timeout: timeout}, nil
	})

	var limiter *rate.Limiter
	if cfg.RateLimit != nil {
		limiter = buildLimiter(*cfg.RateLimit)
	}

	return &Client{
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
		UserAgent:    UserAgent,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		botToken:     cfg.BotToken,
		session:      session,
		limiter:      limiter,
		metrics:      cfg.Metrics,
		logger:       logger,
	}, nil
}

func buildLimiter(cfg RateLimitConfig) *rate.Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	limitPerSecond := rate.Limit(requestsPerMinute / SecondsPerMinute)
	if limitPerSecond <= 0 {
		limitPerSecond = rate.Limit(1)
	}

	return rate.NewLimiter(limitPerSecond, burst)
}

// Route builds a route against the client's base URL.
func (c *Client) Route(method, path string, params Params) (*Route, error) {
	route, err := NewRoute(c.BaseURL, method, path, params)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "route", Message: err.Error()}
	}
	return route, nil
}

// HasBotToken reports whether bot-authenticated endpoints can be called.
func (c *Client) HasBotToken() bool {
	return c.botToken != ""
}

// Session returns the shared HTTP session, creating it on first use.
func (c *Client) Session() (*http.Client, error) {
	return c.session.Get()
}

// Close releases idle connections of the shared session.
func (c *Client) Close() {
	c.session.Close()
}

// NewRequest builds the *http.Request for r: default headers, caller headers,
// authentication, query and body.
func (c *Client) NewRequest(ctx context.Context, r *Request) (*http.Request, error) {
	if r == nil || r.Route == nil {
		return nil, &pkgerrs.ConfigError{Field: "route", Message: "request has no route"}
	}

	var body io.Reader
	contentType := contentTypeForm
	switch {
	case r.JSON != nil:
		data, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, &pkgerrs.ConfigError{Field: "payload", Message: fmt.Sprintf("failed to encode JSON payload: %v", err)}
		}
		body = bytes.NewReader(data)
		contentType = contentTypeJSON
	case r.Form != nil:
		body = strings.NewReader(r.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, r.Route.Method, r.Route.URL, body)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: r.Route.Method, URL: r.Route.URL, Err: err}
	}

	for k, values := range r.Headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.UserAgent)
	if req.Header.Get("Content-Type") == "" || r.JSON != nil {
		req.Header.Set("Content-Type", contentType)
	}

	switch r.Auth.Mode {
	case AuthBearer:
		if r.Auth.Token == "" {
			return nil, &pkgerrs.ConfigError{Field: "access_token", Message: "bearer authentication requires an access token"}
		}
		req.Header.Set("Authorization", "Bearer "+r.Auth.Token)
	case AuthBasic:
		req.SetBasicAuth(c.clientID, c.clientSecret)
		c.logger.Debug("authenticating request with client credentials as login and password", "route", r.Route.Path)
	case AuthBot:
		if c.botToken == "" {
			return nil, &pkgerrs.ConfigError{Field: "BotToken", Message: "this endpoint requires a bot token"}
		}
		req.Header.Set("Authorization", "Bot "+c.botToken)
	}

	if len(r.Query) > 0 {
		req.URL.RawQuery = r.Query.Encode()
	}

	return req, nil
}

// Do sends r and decodes a successful JSON response into v (which may be nil).
// Any non-2xx status is returned as *errors.APIError; nothing is retried.
func (c *Client) Do(ctx context.Context, r *Request, v any) error {
	req, err := c.NewRequest(ctx, r)
	if err != nil {
		return err
	}

	data, err := c.send(req, r.Route.Path, r.Auth.Mode)
	if err != nil {
		return err
	}

	if v == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &pkgerrs.ParseError{Operation: r.Route.String(), Message: "failed to decode response", Err: err}
	}
	return nil
}

// GetFromCDN downloads the raw bytes behind an asset URL.
func (c *Client) GetFromCDN(ctx context.Context, assetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: http.MethodGet, URL: assetURL, Err: err}
	}
	req.Header.Set("User-Agent", c.UserAgent)

	return c.send(req, "cdn", AuthNone)
}

// send executes req over the shared session and returns the body of a 2xx response.
func (c *Client) send(req *http.Request, routeLabel string, mode AuthMode) ([]byte, error) {
	ctx := req.Context()

	session, err := c.session.Get()
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: req.Method, URL: req.URL.String(), Message: "failed to create HTTP session", Err: err}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &pkgerrs.RequestError{Operation: req.Method, URL: req.URL.String(), Err: err}
		}
	}

	requestID := uuid.NewString()
	start := time.Now()

	resp, err := session.Do(req)
	if err != nil {
		c.metrics.observe(req.Method, routeLabel, 0, time.Since(start))
		c.logger.Debug("request failed",
			"request_id", requestID, "method", req.Method, "route", routeLabel, "auth", mode.String(), "error", err)
		return nil, &pkgerrs.RequestError{Operation: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	c.metrics.observe(req.Method, routeLabel, resp.StatusCode, elapsed)
	c.logger.Debug("request completed",
		"request_id", requestID,
		"method", req.Method,
		"route", routeLabel,
		"auth", mode.String(),
		"status", resp.StatusCode,
		"duration", elapsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, newAPIError(req, resp, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: req.Method, URL: req.URL.String(), Message: "failed to read response body", Err: err}
	}
	return data, nil
}

func newAPIError(req *http.Request, resp *http.Response, body []byte) *pkgerrs.APIError {
	apiErr := &pkgerrs.APIError{
		StatusCode: resp.StatusCode,
		Method:     req.Method,
		URL:        req.URL.String(),
		Message:    http.StatusText(resp.StatusCode),
		Body:       string(body),
	}

	// REST errors carry {code, message}; token endpoints carry {error, error_description}.
	var restErr struct {
		Code             int    `json:"code"`
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if json.Unmarshal(body, &restErr) == nil {
		switch {
		case restErr.Message != "":
			apiErr.Code = restErr.Code
			apiErr.Message = restErr.Message
		case restErr.ErrorDescription != "":
			apiErr.Message = restErr.Error + ": " + restErr.ErrorDescription
		case restErr.Error != "":
			apiErr.Message = restErr.Error
		}
	}

	return apiErr
}
