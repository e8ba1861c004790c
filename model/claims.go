package model

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the session token payload; Subject carries the user id.
type AccessClaims struct {
	Phone string `json:"phone"`
	jwt.RegisteredClaims
}
