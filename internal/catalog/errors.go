package catalog

import (
	"fmt"

	"github.com/TheBoringRats/ratcrowler/pkg/failure"
)

type CatalogErrorCause string

const (
	ErrCauseOpenFailed    = "open failed"
	ErrCauseMigrateFailed = "migrate failed"
	ErrCauseWriteFailed   = "write failed"
	ErrCauseReadFailed    = "read failed"
	ErrCauseEncodeFailed  = "encode failed"
)

// CatalogError wraps every SQLite failure. Open/migrate failures are fatal
// (the process cannot run without its only durable store); per-row write
// failures are recoverable and recorded as crawl errors.
type CatalogError struct {
	Message   string
	Retryable bool
	Cause     CatalogErrorCause
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog error: %s: %s", e.Cause, e.Message)
}

func (e *CatalogError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func writeError(err error) *CatalogError {
	return &CatalogError{
		Message:   err.Error(),
		Retryable: true,
		Cause:     ErrCauseWriteFailed,
	}
}

func readError(err error) *CatalogError {
	return &CatalogError{
		Message:   err.Error(),
		Retryable: true,
		Cause:     ErrCauseReadFailed,
	}
}
