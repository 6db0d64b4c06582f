// Package common holds cross-layer value types shared by the application,
// infrastructure and transport layers.
package common

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Timestamp is a time.Time alias serialised as RFC 3339.
type Timestamp time.Time

// NewTimestamp returns the current UTC time as a Timestamp.
func NewTimestamp() Timestamp {
	return Timestamp(time.Now().UTC())
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	*t = Timestamp(parsed.UTC())
	return nil
}

// GenerateID returns a UUID v4, optionally prefixed ("evt-<uuid>").
func GenerateID(prefix string) string {
	if prefix == "" {
		return uuid.New().String()
	}
	return fmt.Sprintf("%s-%s", prefix, uuid.New().String())
}

// ErrorDetail is the structured error body in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the generic envelope for all HTTP responses.
type APIResponse[T any] struct {
	Success   bool         `json:"success"`
	Data      T            `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp Timestamp    `json:"timestamp"`
}

// NewSuccessResponse wraps data in a successful envelope.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success:   true,
		Data:      data,
		Timestamp: NewTimestamp(),
	}
}

// NewErrorResponse wraps an error code and message in a failure envelope.
func NewErrorResponse(code, message string) APIResponse[any] {
	return APIResponse[any]{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
		},
		Timestamp: NewTimestamp(),
	}
}

// HealthStatus indicates the health of a component.
type HealthStatus string

const (
	HealthUp       HealthStatus = "up"
	HealthDown     HealthStatus = "down"
	HealthDegraded HealthStatus = "degraded"
)

// ComponentHealth reports the health of one named component.
type ComponentHealth struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}
