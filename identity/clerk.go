package identity

import (
	"context"
	"fmt"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
)

// ClerkDirectory looks up the verified phone numbers of a Clerk user.
type ClerkDirectory interface {
	VerifiedPhoneNumbers(ctx context.Context, userID string) ([]string, error)
}

// ClerkUsers reads users from the Clerk Backend API.
type ClerkUsers struct {
	client *user.Client
}

func NewClerkUsers(secretKey string) *ClerkUsers {
	return &ClerkUsers{client: user.NewClient(&clerk.ClientConfig{
		BackendConfig: clerk.BackendConfig{Key: clerk.String(secretKey)},
	})}
}

func (u *ClerkUsers) VerifiedPhoneNumbers(ctx context.Context, userID string) ([]string, error) {
	if u == nil || u.client == nil {
		return nil, ErrNotConfigured
	}
	cu, err := u.client.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get clerk user: %w", err)
	}
	var phones []string
	for _, p := range cu.PhoneNumbers {
		if p == nil || p.Verification == nil || p.Verification.Status != "verified" {
			continue
		}
		phones = append(phones, p.PhoneNumber)
	}
	return phones, nil
}
