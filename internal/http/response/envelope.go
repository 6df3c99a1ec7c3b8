// Package response defines the uniform JSON body returned by every endpoint
// and the single boundary that turns failures into HTTP responses.
//
// Every body is an Envelope. Successful calls carry an optional data payload;
// failed calls carry a message and, for validation failures only, a map of
// field errors. Absent optional members are omitted from the JSON rather than
// serialized as null.
//
// Example success:
//
//	HTTP/1.1 200 OK
//	{ "success": true, "message": "Success", "data": { "id": 42, "username": "jdoe" } }
//
// Example validation failure:
//
//	HTTP/1.1 400 Bad Request
//	{ "success": false, "message": "Validation failed", "errors": { "email": "Email should be valid" } }
package response

// Envelope is the body shape shared by all endpoints.
type Envelope struct {
	Success bool              `json:"success" example:"true"`
	Message string            `json:"message" example:"Success"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Success wraps a payload. A nil data is omitted on the wire.
func Success(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// SuccessMessage reports success without a payload.
func SuccessMessage(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

// Error reports a failure with a message only.
func Error(message string) Envelope {
	return Envelope{Success: false, Message: message}
}

// ValidationError reports a failure with per-field messages.
func ValidationError(message string, fieldErrors map[string]string) Envelope {
	return Envelope{Success: false, Message: message, Errors: fieldErrors}
}
