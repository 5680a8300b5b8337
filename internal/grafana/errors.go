package grafana

import "fmt"

// TransportError wraps a network-level failure (dial, timeout, broken
// connection) talking to the datasource proxy.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// BackendError is a non-2xx response from the backend, carrying the
// status code and the response body text.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned HTTP %d: %s", e.StatusCode, e.Body)
}

// ParseError is a malformed backend response body. Distinct from line
// normalization, which never errors. Callers treat it like a backend
// failure for cascade purposes.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed backend response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
