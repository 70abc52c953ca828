package fetcher

import (
	"fmt"

	"github.com/TheBoringRats/ratcrowler/internal/metadata"
	"github.com/TheBoringRats/ratcrowler/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseTimeout               = "timeout"
	ErrCauseNetworkFailure        = "network issues"
	ErrCauseHTTPStatus            = "http status"
	ErrCauseReadResponseBodyError = "failed to read response body"
	ErrCauseDecodeError           = "failed to decode response body"
	ErrCauseRedirectLimitExceeded = "reached redirect limit"
)

// FetchError carries the spec's taxonomy: HttpError holds the status,
// NetworkError and TimeoutError hold none. Per-URL errors are recoverable;
// the engine records them and moves on.
type FetchError struct {
	Message    string
	HTTPStatus int
	Cause      FetchErrorCause
}

func (e *FetchError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("fetcher error: %s (%d)", e.Cause, e.HTTPStatus)
	}
	return fmt.Sprintf("fetcher error: %s", e.Cause)
}

func (e *FetchError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// IsRetryable reports whether another attempt could succeed. Timeouts,
// transport failures, 429s and 5xxs are transient; everything else is not.
func (e *FetchError) IsRetryable() bool {
	switch e.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure, ErrCauseReadResponseBodyError:
		return true
	case ErrCauseHTTPStatus:
		return e.HTTPStatus == 429 || e.HTTPStatus >= 500
	default:
		return false
	}
}

// Kind maps the cause to the error_type string recorded in the catalog.
func (e *FetchError) Kind() string {
	switch e.Cause {
	case ErrCauseTimeout:
		return "timeout"
	case ErrCauseHTTPStatus:
		return "http_error"
	case ErrCauseRedirectLimitExceeded:
		return "redirect_limit"
	default:
		return "network_error"
	}
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure:
		return metadata.CauseNetworkFailure
	case ErrCauseHTTPStatus:
		if err.HTTPStatus == 403 || err.HTTPStatus == 429 {
			return metadata.CausePolicyDisallow
		}
		return metadata.CauseNetworkFailure
	case ErrCauseDecodeError, ErrCauseReadResponseBodyError:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
