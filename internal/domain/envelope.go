package domain

import "encoding/json"

// Envelope is the uniform wrapper around every API response. Success responses carry
// Data; failure responses carry Error and have Success set to false.
type Envelope[T any] struct {
	Success   bool           `json:"success"`
	Data      T              `json:"data"`
	Message   string         `json:"message,omitempty"`
	Error     *EnvelopeError `json:"error,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// EnvelopeError is the error object of a failure envelope.
type EnvelopeError struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

// RawEnvelope is an envelope whose data has not been decoded yet.
type RawEnvelope = Envelope[json.RawMessage]

// MessageResponse is the data payload of endpoints that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}

// CountResponse is the data payload of counting endpoints.
type CountResponse struct {
	Count int `json:"count"`
}
