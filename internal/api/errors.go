package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"anoa.com/portalnoticias/pkg/apperror"
)

// APIError is a non-2xx answer from the backend. It unwraps to the apperror
// sentinel matching its status so callers can use errors.Is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

func (e *APIError) Unwrap() error {
	return apperror.FromStatus(e.Status)
}

func newAPIError(resp *http.Response) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	message := body.Message
	if message == "" {
		message = body.Error
	}
	if message == "" {
		message = "erro na requisição"
	}
	return &APIError{Status: resp.StatusCode, Message: message}
}
