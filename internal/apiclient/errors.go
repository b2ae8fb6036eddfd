package apiclient

import "fmt"

// RequestError is returned for every response with a non-2xx status.
type RequestError struct {
	Status int
	Body   string
}

// Error renders the status and the raw response body.
func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Body)
}

// DecodeError is returned when a successful response does not carry the
// JSON shape the operation expects.
type DecodeError struct {
	Op   string
	Body string
	Err  error
}

// Error names the operation and the decoding failure.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: unexpected response body: %v", e.Op, e.Err)
}

// Unwrap returns the underlying decoding error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
