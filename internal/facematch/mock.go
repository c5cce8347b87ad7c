package facematch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
)

// MockClient is a deterministic in-process matcher for development and
// tests. Two images match when their payloads hash equal; registered faces
// are remembered for later Identify calls.
type MockClient struct {
	mu    sync.Mutex
	faces map[string]string // image hash -> person id
	names map[string]string // image hash -> person name
}

func NewMockClient() *MockClient {
	return &MockClient{
		faces: make(map[string]string),
		names: make(map[string]string),
	}
}

func (c *MockClient) Verify(ctx context.Context, imageBase64, personName string) (*VerifyResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := hashImage(imageBase64)
	if name, ok := c.names[h]; ok && name == personName {
		return &VerifyResult{IsMatch: true, Confidence: 0.99}, nil
	}
	return &VerifyResult{IsMatch: false, Confidence: 0.1}, nil
}

func (c *MockClient) Identify(ctx context.Context, imageBase64 string) (*IdentifyResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := hashImage(imageBase64)
	if personID, ok := c.faces[h]; ok {
		return &IdentifyResult{
			HasMatches: true,
			Matches: []IdentifyMatch{
				{PersonID: personID, Name: c.names[h], Confidence: 0.99},
			},
		}, nil
	}
	return &IdentifyResult{HasMatches: false}, nil
}

func (c *MockClient) Register(ctx context.Context, name, imageBase64 string) (*RegisterResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := hashImage(imageBase64)
	personID := "person-" + h[:12]
	c.faces[h] = personID
	c.names[h] = name
	return &RegisterResult{Success: true, AssignedID: personID}, nil
}

func hashImage(imageBase64 string) string {
	sum := sha256.Sum256([]byte(imageBase64))
	return fmt.Sprintf("%x", sum)
}
