package errors

import (
	stderrors "errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type ParseError struct {
	File    string
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.File, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundError reports a missing record, e.g. a task id that is not in the store.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

type ConfigError struct {
	Key     string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Key, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// StoreError wraps a storage failure. Busy marks errors caused by a locked
// database, which are worth retrying.
type StoreError struct {
	Op   string
	Busy bool
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ExitCode maps an error to the CLI exit status.
func ExitCode(err error) int {
	var validErr *ValidationError
	var notFound *NotFoundError
	switch {
	case err == nil:
		return 0
	case stderrors.As(err, &validErr):
		return 2
	case stderrors.As(err, &notFound):
		return 3
	default:
		return 1
	}
}

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries: 3,
		BaseDelay:  50 * time.Millisecond,
	}
}

// Retry runs fn until it succeeds or returns an error that is not a busy
// StoreError.
func Retry(cfg *RetryConfig, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var storeErr *StoreError
		if !stderrors.As(lastErr, &storeErr) || !storeErr.Busy {
			return lastErr
		}

		if attempt < cfg.MaxRetries && cfg.BaseDelay > 0 {
			delay := cfg.BaseDelay * time.Duration(math.Pow(2, float64(attempt)))
			jitter := time.Duration(rand.Intn(int(cfg.BaseDelay/time.Millisecond)+1)) * time.Millisecond
			time.Sleep(delay + jitter)
		}
	}
	return fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, lastErr)
}

type SignalHandler struct {
	cleanup func()
}

func NewSignalHandler(cleanup func()) *SignalHandler {
	return &SignalHandler{cleanup: cleanup}
}

func (h *SignalHandler) Start() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Fprintln(os.Stderr, "\nInterrupted. Cleaning up...")
		if h.cleanup != nil {
			h.cleanup()
		}
		os.Exit(1)
	}()
}
