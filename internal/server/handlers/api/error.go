package api

import "fmt"

// APIError is the error envelope every non-2xx response carries. Status echoes
// the HTTP status code so clients reading only the body still see it.
type APIError struct {
	Status      int               `json:"status"`
	Message     string            `json:"message"`
	Code        string            `json:"code"`
	ErrorFields map[string]string `json:"errorFields,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d, code=%s, message=%s", e.Status, e.Code, e.Message)
}
