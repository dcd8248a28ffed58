package status

import (
	"errors"
	"fmt"
)

var (
	ErrTimeout       = errors.New("status request timed out")
	ErrMalformedBody = errors.New("malformed status body")
)

// HTTPStatusError is returned when the status endpoint answers with a non-2xx code
type HTTPStatusError struct {
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.Code)
}
