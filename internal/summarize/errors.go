package summarize

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when the document holds no text, before or
// after cleaning.
var ErrEmptyInput = errors.New("no text found in document")

// ErrEmptySummary is returned when every chunk was skipped or failed.
var ErrEmptySummary = errors.New("unable to generate summary")

// ChunkError records a per-chunk failure. The pipeline logs it and moves on;
// it never reaches the caller of Process.
type ChunkError struct {
	Index int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d: %s", e.Index+1, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}
