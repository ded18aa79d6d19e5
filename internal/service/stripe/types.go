package stripe

import "fmt"

// Intent mirrors the fields of a gateway payment intent the backend cares
// about. Amount is in the smallest currency unit (cents).
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// APIError is a structured error returned by the gateway itself, as opposed to
// a transport failure. Callers distinguish the two with errors.As: an APIError
// means the gateway rejected the request, anything else is retryable.
type APIError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe api error: %s (%s)", e.Message, e.Type)
}

type errorEnvelope struct {
	Error *APIError `json:"error"`
}
