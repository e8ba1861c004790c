// Package identity verifies third-party phone sign-ins and mirrors logins.
package identity

import (
	"context"
	"errors"
	"fmt"

	"bharatprint/model"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"
)

var ErrNotConfigured = errors.New("identity provider not configured")

// IDToken is the subset of a verified provider token the API relies on.
type IDToken struct {
	UID         string
	PhoneNumber string
}

type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*IDToken, error)
}

// FirebaseVerifier checks Firebase phone-auth ID tokens with the Admin SDK.
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*IDToken, error) {
	if v == nil || v.client == nil {
		return nil, ErrNotConfigured
	}
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify firebase id token: %w", err)
	}
	phone, _ := token.Claims["phone_number"].(string)
	return &IDToken{UID: token.UID, PhoneNumber: phone}, nil
}

type LoginRecorder interface {
	RecordLogin(ctx context.Context, rec model.LoginRecord) error
}

// FirestoreLoginRecorder upserts usersLogin/<phone> on every sign-in.
type FirestoreLoginRecorder struct {
	client *firestore.Client
}

func NewFirestoreLoginRecorder(client *firestore.Client) *FirestoreLoginRecorder {
	return &FirestoreLoginRecorder{client: client}
}

func (r *FirestoreLoginRecorder) RecordLogin(ctx context.Context, rec model.LoginRecord) error {
	// MergeAll only accepts map data.
	_, err := r.client.Collection("usersLogin").Doc(rec.PhoneNumber).Set(ctx, map[string]interface{}{
		"phone_number": rec.PhoneNumber,
		"user_id":      rec.UserID,
		"method":       rec.Method,
		"is_new_user":  rec.IsNewUser,
		"updated_at":   rec.UpdatedAt,
		"login":        firestore.Increment(1),
	}, firestore.MergeAll)
	return err
}
