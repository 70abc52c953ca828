package extractor

import (
	"fmt"

	"github.com/TheBoringRats/ratcrowler/pkg/failure"
)

type ExtractErrorCause string

const (
	ErrCauseParseFailed = "html parse failed"
)

// ExtractError: the page is skipped, the crawl continues.
type ExtractError struct {
	Message string
	Cause   ExtractErrorCause
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extractor error: %s: %s", e.Cause, e.Message)
}

func (e *ExtractError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
