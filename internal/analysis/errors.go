package analysis

import "fmt"

// ServerError is an error object the server embedded in its response body
type ServerError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// TransportError wraps a failure to obtain a usable response
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
