package core

import (
	"context"
	"time"
)

// IdentityClaims are the verified attributes extracted from a provider's
// identity assertion after signature and audience checks. They are never
// persisted verbatim, only projected into a User record.
type IdentityClaims struct {
	SubjectID string
	Email     string
	Name      string
	Picture   string
	ExpiresAt time.Time
}

// IdentityProvider exchanges a single-use authorization code for verified
// identity claims. Implementations must verify the provider's assertion
// (signature and audience) before returning any claim, and must collapse
// every failure mode into ErrExchangeFailed.
type IdentityProvider interface {
	Exchange(ctx context.Context, code string) (*IdentityClaims, error)
}
