package crawler

import (
	"errors"
	"fmt"
)

// ErrBadData marks values that could not be interpreted, such as an air date
// that does not name a real calendar day or a clue position that is not
// numeric. Callers skip the affected item and continue with its siblings.
var ErrBadData = errors.New("bad data")

// FetchError reports a failed page retrieval: a transport error or a
// non-success HTTP status. The page is not cached, so the same URL is safe to
// retry on a later run.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports markup that could not be interpreted for one item: a
// document that is not HTML, or a clue cell whose structural identifier is
// missing or malformed. One ParseError never aborts the surrounding episode
// or season.
type ParseError struct {
	URL    string
	Detail string
}

func (e *ParseError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("parse: %s", e.Detail)
	}
	return fmt.Sprintf("parse %s: %s", e.URL, e.Detail)
}
