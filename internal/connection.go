package internal

import (
	"net/http"
	"sync"
)

// SessionCell owns the lazily created *http.Client shared by every request of
// a client. Creation happens exactly once, even when the first requests arrive
// concurrently from multiple goroutines.
type SessionCell struct {
	once    sync.Once
	ready   chan struct{}
	factory func() (*http.Client, error)

	client *http.Client
	err    error
}

// NewSessionCell returns a cell that will build its session with factory on first use.
func NewSessionCell(factory func() (*http.Client, error)) *SessionCell {
	return &SessionCell{
		ready:   make(chan struct{}),
		factory: factory,
	}
}

// Get returns the shared session, creating it on the first call. Concurrent
// callers block until the first creation attempt finishes and all observe its
// result.
func (s *SessionCell) Get() (*http.Client, error) {
	s.once.Do(func() {
		s.client, s.err = s.factory()
		close(s.ready)
	})

	<-s.ready
	return s.client, s.err
}

// IsInitialized returns true once a creation attempt has completed.
func (s *SessionCell) IsInitialized() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// Close releases idle connections held by the session, if one was created.
func (s *SessionCell) Close() {
	if !s.IsInitialized() || s.client == nil {
		return
	}
	s.client.CloseIdleConnections()
}
