package common

// Header names used on outbound requests to the Inkwell service.
const (
	// ApiKeyHeaderName carries the project API key on every request.
	ApiKeyHeaderName = "X-Api-Key"

	// RequestIDHeaderName carries a per-request correlation id.
	RequestIDHeaderName = "X-Request-Id"
)
