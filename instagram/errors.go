package instagram

import (
	"errors"
	"fmt"
)

// ErrMissingConfig is returned when the account id or access token is not configured.
// No request is made in that case.
var ErrMissingConfig = errors.New("instagram: missing user id or access token")

// UpstreamError is returned when the graph API could not be reached, answered
// with a non-2xx status or sent a body that could not be decoded.
type UpstreamError struct {
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("instagram upstream (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("instagram upstream: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err is (or wraps) an UpstreamError
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
