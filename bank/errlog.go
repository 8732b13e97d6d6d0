package bank

import (
	"errors"
	"sync"

	"golang.org/x/exp/slog"
)

// Recorder is the reporting boundary: it logs rejected operations and keeps
// their messages in order. Wrapping a call site with Swallow reproduces the
// swallow-and-log contract of the public surface: a bank error is recorded
// and absorbed, while anything else (a defect) passes through untouched.
type Recorder struct {
	logger *slog.Logger

	mu      sync.Mutex
	entries []string
}

func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// Swallow records err when it is a bank error and returns nil for it. Any
// other error is returned unchanged. A nil err is a no-op.
func (r *Recorder) Swallow(err error) error {
	if err == nil {
		return nil
	}
	var be *Error
	if !errors.As(err, &be) {
		return err
	}
	r.mu.Lock()
	r.entries = append(r.entries, be.Message)
	r.mu.Unlock()
	r.logger.Warn("operation rejected",
		slog.String("code", be.Code),
		slog.String("reason", be.Message),
	)
	return nil
}

// Entries returns a copy of the recorded messages in arrival order.
func (r *Recorder) Entries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	copy(out, r.entries)
	return out
}
