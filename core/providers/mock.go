package providers

import (
	"context"
	"fmt"
	"time"

	"authgate/core"
)

// Predefined test authorization codes
const (
	ValidCode1 = "abc123"
	ValidCode2 = "mock_auth_code_2"
	ValidCode3 = "mock_auth_code_3"
)

// Predefined test identities
var (
	Identity1 = &core.IdentityClaims{
		SubjectID: "g-42",
		Email:     "a@x.com",
		Name:      "Mock User One",
		Picture:   "https://mock.test/avatar1.jpg",
	}

	Identity2 = &core.IdentityClaims{
		SubjectID: "g-99",
		Email:     "user2@mock.test",
		Name:      "Mock User Two",
		Picture:   "https://mock.test/avatar2.jpg",
	}
)

// MockProvider maps fixed authorization codes to fixed identities. Two
// distinct valid codes can resolve to the same identity, which mirrors a
// user logging in twice with independently issued codes.
type MockProvider struct {
	identities map[string]*core.IdentityClaims
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		identities: map[string]*core.IdentityClaims{
			ValidCode1: Identity1,
			ValidCode2: Identity1,
			ValidCode3: Identity2,
		},
	}
}

func (m *MockProvider) Exchange(ctx context.Context, code string) (*core.IdentityClaims, error) {
	identity, ok := m.identities[code]
	if !ok {
		return nil, fmt.Errorf("%w: unknown authorization code", core.ErrExchangeFailed)
	}

	claims := *identity
	claims.ExpiresAt = time.Now().Add(time.Hour)
	return &claims, nil
}
