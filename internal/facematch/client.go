package facematch

import (
	"context"
	"encoding/json"
	"fmt"
)

// Client is the face-recognition collaborator. The core consumes the
// outcomes of these calls (confidence scores, match lists); it never
// interprets image bytes itself.
type Client interface {
	Verify(ctx context.Context, imageBase64, personName string) (*VerifyResult, error)
	Identify(ctx context.Context, imageBase64 string) (*IdentifyResult, error)
	Register(ctx context.Context, name, imageBase64 string) (*RegisterResult, error)
}

type VerifyResult struct {
	IsMatch    bool            `json:"is_match"`
	Confidence float64         `json:"confidence"`
	Raw        json.RawMessage `json:"raw,omitempty"`
}

type IdentifyMatch struct {
	PersonID   string  `json:"person_id"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type IdentifyResult struct {
	HasMatches bool            `json:"has_matches"`
	Matches    []IdentifyMatch `json:"matches"`
}

type RegisterResult struct {
	Success    bool   `json:"success"`
	AssignedID string `json:"assigned_id"`
}

// APIError wraps a failed face-API call with the endpoint and, when the
// request got far enough, the HTTP status code.
type APIError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("face api %s failed with status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("face api %s failed: %v", e.Endpoint, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }
