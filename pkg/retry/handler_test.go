package retry_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheBoringRats/ratcrowler/pkg/failure"
	"github.com/TheBoringRats/ratcrowler/pkg/retry"
	"github.com/TheBoringRats/ratcrowler/pkg/timeutil"
)

type fakeError struct {
	retryable bool
}

func (e *fakeError) Error() string { return fmt.Sprintf("fake error (retryable=%t)", e.retryable) }

func (e *fakeError) Severity() failure.Severity {
	if e.retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *fakeError) IsRetryable() bool { return e.retryable }

func fastParam(maxAttempts int) retry.RetryParam {
	return retry.NewRetryParam(
		0, 0, 1, maxAttempts,
		timeutil.NewBackoffParam(time.Microsecond, 2.0, time.Millisecond),
	)
}

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	got, err := retry.Retry(fastParam(3), func() (string, failure.ClassifiedError) {
		calls++
		return "ok", nil
	})
	require.Nil(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	got, err := retry.Retry(fastParam(5), func() (int, failure.ClassifiedError) {
		calls++
		if calls < 3 {
			return 0, &fakeError{retryable: true}
		}
		return 42, nil
	})
	require.Nil(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestRetry_NonRetryableReturnsImmediately(t *testing.T) {
	calls := 0
	_, err := retry.Retry(fastParam(5), func() (int, failure.ClassifiedError) {
		calls++
		return 0, &fakeError{retryable: false}
	})
	require.NotNil(t, err)
	assert.Equal(t, 1, calls)
	assert.IsType(t, &fakeError{}, err)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := retry.Retry(fastParam(3), func() (int, failure.ClassifiedError) {
		calls++
		return 0, &fakeError{retryable: true}
	})
	require.NotNil(t, err)
	assert.Equal(t, 3, calls)

	retryErr, ok := err.(*retry.RetryError)
	require.True(t, ok)
	assert.Equal(t, retry.RetryErrorCause(retry.ErrExhaustedAttempts), retryErr.Cause)
	assert.Equal(t, failure.SeverityRecoverable, retryErr.Severity())
}

func TestRetry_ZeroAttempts(t *testing.T) {
	_, err := retry.Retry(fastParam(0), func() (int, failure.ClassifiedError) {
		t.Fatal("fn must not run")
		return 0, nil
	})
	require.NotNil(t, err)

	retryErr, ok := err.(*retry.RetryError)
	require.True(t, ok)
	assert.Equal(t, retry.RetryErrorCause(retry.ErrZeroAttempt), retryErr.Cause)
}
