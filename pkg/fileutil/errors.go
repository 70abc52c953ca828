package fileutil

import (
	"fmt"

	"github.com/TheBoringRats/ratcrowler/pkg/failure"
)

type FileErrorCause string

const (
	ErrCausePathError   = "path error"
	ErrCauseReadError   = "read error"
	ErrCauseParseError  = "parse error"
	ErrCauseFileMissing = "file missing"
)

type FileError struct {
	Message   string
	Retryable bool
	Cause     FileErrorCause
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file error: %s: %s", e.Cause, e.Message)
}

func (e *FileError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
