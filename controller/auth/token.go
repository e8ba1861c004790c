package auth

import (
	"time"

	"bharatprint/model"

	"github.com/golang-jwt/jwt/v5"
)

// CreateAccessToken signs the session token for user.
func CreateAccessToken(user *model.User, secret string, ttl time.Duration, now time.Time) (string, error) {
	claims := &model.AccessClaims{
		Phone: user.PhoneNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
