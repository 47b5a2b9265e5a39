package feed

import (
	"errors"
	"fmt"
)

var ErrMalformedEntry = errors.New("malformed feed entry")

// FetchError reports a transport or parse failure for a single source.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
