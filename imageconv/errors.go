package imageconv

import (
	"errors"
	"fmt"
)

// ErrInvalidURL is returned for anything that is not an absolute http(s) URL
var ErrInvalidURL = errors.New("invalid image URL")

// ErrUnsupportedFormat is returned for an unknown target format
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Processing stages reported in ProcessingError.Op
const (
	OpDownload = "download"
	OpDecode   = "decode"
	OpEncode   = "encode"
)

// ProcessingError wraps a failure in one stage of fetch-and-convert
type ProcessingError struct {
	Op  string
	URL string
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("image %s failed for %s: %v", e.Op, e.URL, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
