package fileutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TheBoringRats/ratcrowler/pkg/failure"
)

// EnsureParentDir creates the directory that will hold path, if missing.
// Used before opening the catalog file at a configured location.
func EnsureParentDir(path string) failure.ClassifiedError {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}
	return nil
}

// ReadURLList reads a JSON array of URL strings, the seed bootstrap format.
// A missing file is reported with ErrCauseFileMissing so callers can treat
// it as "nothing to import".
func ReadURLList(path string) ([]string, failure.ClassifiedError) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FileError{
				Message:   path,
				Retryable: false,
				Cause:     ErrCauseFileMissing,
			}
		}
		return nil, &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCauseReadError,
		}
	}

	var urls []string
	if err := json.Unmarshal(content, &urls); err != nil {
		return nil, &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCauseParseError,
		}
	}
	return urls, nil
}
