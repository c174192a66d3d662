package helpers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// ChaosMode defines the type of chaos to inject
type ChaosMode int

const (
	// ChaosNone forwards requests unchanged
	ChaosNone ChaosMode = iota

	// ChaosConnectionReset fails the round trip
	ChaosConnectionReset

	// ChaosDNSFailure fails the round trip with a lookup error
	ChaosDNSFailure

	// ChaosPartialRead truncates the body and fails mid-read
	ChaosPartialRead

	// ChaosEmptyBody answers 200 with no body
	ChaosEmptyBody

	// ChaosInvalidJSON answers 200 with a token body that does not decode
	ChaosInvalidJSON

	// ChaosHTMLError answers 502 with a proxy error page
	ChaosHTMLError
)

// ChaosConfig configures the chaos transport
type ChaosConfig struct {
	// Mode determines which type of chaos to inject
	Mode ChaosMode

	// FailEvery applies Mode to every Nth request only. Zero or one applies it to all.
	FailEvery int

	// Delay adds artificial delay before each round trip
	Delay time.Duration

	// PartialReadBytes specifies how many bytes are delivered before failing
	PartialReadBytes int
}

// ChaosTransport is an http.RoundTripper that injects failures in front of
// a real transport.
type ChaosTransport struct {
	next       http.RoundTripper
	config     ChaosConfig
	requestNum atomic.Uint64
	injected   atomic.Uint64
}

// NewChaosTransport wraps next, or http.DefaultTransport when next is nil.
func NewChaosTransport(next http.RoundTripper, config ChaosConfig) *ChaosTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &ChaosTransport{next: next, config: config}
}

// Client returns an *http.Client using the transport.
func (c *ChaosTransport) Client() *http.Client {
	return &http.Client{Transport: c, Timeout: 5 * time.Second}
}

// Requests returns the number of round trips attempted.
func (c *ChaosTransport) Requests() int {
	return int(c.requestNum.Load())
}

// Injected returns the number of round trips that had chaos applied.
func (c *ChaosTransport) Injected() int {
	return int(c.injected.Load())
}

// RoundTrip implements http.RoundTripper
func (c *ChaosTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	n := c.requestNum.Add(1)

	if c.config.Delay > 0 {
		select {
		case <-time.After(c.config.Delay):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}

	mode := c.config.Mode
	if c.config.FailEvery > 1 && n%uint64(c.config.FailEvery) != 0 {
		mode = ChaosNone
	}
	if mode != ChaosNone {
		c.injected.Add(1)
	}

	switch mode {
	case ChaosConnectionReset:
		return nil, errors.New("connection reset by peer")

	case ChaosDNSFailure:
		return nil, &DNSError{Err: "no such host", Server: "8.8.8.8"}

	case ChaosPartialRead:
		resp, err := c.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		bodyBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		partialSize := c.config.PartialReadBytes
		if partialSize <= 0 || partialSize >= len(bodyBytes) {
			partialSize = len(bodyBytes) / 2
		}
		resp.Body = &partialReadCloser{
			reader:    bytes.NewReader(bodyBytes[:partialSize]),
			failAfter: partialSize,
		}
		resp.ContentLength = -1
		return resp, nil

	case ChaosEmptyBody:
		return buildResponse(req, http.StatusOK, "application/json", ""), nil

	case ChaosInvalidJSON:
		return buildResponse(req, http.StatusOK, "application/json", `{"access_token": "valid_token", "expires_in": "not_a_number"}`), nil

	case ChaosHTMLError:
		return buildResponse(req, http.StatusBadGateway, "text/html", "<html><body><h1>502 Bad Gateway</h1></body></html>"), nil

	default:
		return c.next.RoundTrip(req)
	}
}

func buildResponse(req *http.Request, status int, contentType, body string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", contentType)
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
		Header:        header,
	}
}

// partialReadCloser is an io.ReadCloser that fails after reading a certain amount
type partialReadCloser struct {
	reader    io.Reader
	failAfter int
	totalRead int
}

func (p *partialReadCloser) Read(buf []byte) (int, error) {
	if p.totalRead >= p.failAfter {
		return 0, errors.New("connection reset during read")
	}

	n, err := p.reader.Read(buf)
	p.totalRead += n

	if p.totalRead >= p.failAfter {
		return n, errors.New("connection reset during read")
	}

	return n, err
}

func (p *partialReadCloser) Close() error {
	return nil
}

// DNSError simulates DNS lookup failures
type DNSError struct {
	Err    string
	Server string
}

func (e *DNSError) Error() string {
	return fmt.Sprintf("lookup failed: %s (server: %s)", e.Err, e.Server)
}

func (e *DNSError) Temporary() bool {
	return true
}

func (e *DNSError) Timeout() bool {
	return false
}
