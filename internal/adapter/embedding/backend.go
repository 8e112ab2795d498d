package embedding

import (
	"context"
	"errors"
	"fmt"
)

// backend performs a single embedding call for one batch of texts.
// Implementations mark retryable failures with transientErr so the
// gateway knows which errors are worth backing off on.
type backend interface {
	embedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// transientErr marks a failure as retryable (network blip, throttling,
// server-side error).
type transientErr struct {
	err error
}

func (e *transientErr) Error() string { return e.err.Error() }
func (e *transientErr) Unwrap() error { return e.err }

func transient(err error) error {
	return &transientErr{err: err}
}

func transientf(format string, args ...any) error {
	return &transientErr{err: fmt.Errorf(format, args...)}
}

// isTransient reports whether the error chain carries a transient marker.
func isTransient(err error) bool {
	var t *transientErr
	return errors.As(err, &t)
}
