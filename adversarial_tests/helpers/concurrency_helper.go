package helpers

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// GoroutineSnapshot captures the state of goroutines at a point in time
type GoroutineSnapshot struct {
	Count     int
	Timestamp time.Time
}

// TakeGoroutineSnapshot captures current goroutine count
func TakeGoroutineSnapshot() *GoroutineSnapshot {
	return &GoroutineSnapshot{
		Count:     runtime.NumGoroutine(),
		Timestamp: time.Now(),
	}
}

// WaitForGoroutineCleanup waits until the goroutine count is back within
// tolerance of before, retrying with GC.
func WaitForGoroutineCleanup(before *GoroutineSnapshot, maxWait time.Duration, tolerance int) error {
	deadline := time.Now().Add(maxWait)

	for time.Now().Before(deadline) {
		if runtime.NumGoroutine()-before.Count <= tolerance {
			return nil
		}
		runtime.GC()
		time.Sleep(50 * time.Millisecond)
	}

	final := runtime.NumGoroutine()
	return fmt.Errorf("goroutine leak detected: started with %d, ended with %d (tolerance %d)",
		before.Count, final, tolerance)
}

// DeadlockDetector fails a function that does not return in time.
type DeadlockDetector struct {
	timeout time.Duration
}

// NewDeadlockDetector creates a detector with the given timeout.
func NewDeadlockDetector(timeout time.Duration) *DeadlockDetector {
	return &DeadlockDetector{timeout: timeout}
}

// Run executes fn and returns its error, or a deadlock error on timeout.
func (dd *DeadlockDetector) Run(fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(dd.timeout):
		return fmt.Errorf("possible deadlock: operation did not complete within %v", dd.timeout)
	}
}

// CoordinatedStart runs numOps operations that all wait on a shared barrier
// before starting, maximising contention. The errors are indexed by operation.
func CoordinatedStart(numOps int, opFunc func(id int) error) []error {
	errs := make([]error, numOps)
	start := make(chan struct{})
	var ready, done sync.WaitGroup

	ready.Add(numOps)
	done.Add(numOps)
	for i := 0; i < numOps; i++ {
		go func(id int) {
			defer done.Done()
			ready.Done()
			<-start
			errs[id] = opFunc(id)
		}(i)
	}

	ready.Wait()
	close(start)
	done.Wait()
	return errs
}

// CountErrors splits errs into successes and failures.
func CountErrors(errs []error) (succeeded int, failed []error) {
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		failed = append(failed, err)
	}
	return succeeded, failed
}
