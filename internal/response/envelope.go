// Package response owns the uniform envelope every endpoint answers
// with, and the single mapping from failures to HTTP statuses.
package response

// Envelope is the wire shape of all API responses. Failure envelopes
// never carry Data; success envelopes never carry Errors.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Ok wraps a payload in a success envelope.
func Ok(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// Message is a success envelope with no payload.
func Message(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

// Fail is a failure envelope with no field errors.
func Fail(message string) Envelope {
	return Envelope{Success: false, Message: message}
}

// FailWithFields is a failure envelope carrying a field → messages map.
func FailWithFields(message string, fields map[string][]string) Envelope {
	return Envelope{Success: false, Message: message, Errors: fields}
}
