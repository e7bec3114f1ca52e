package core

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenLeeway bounds the clock skew tolerated when checking expiry.
const tokenLeeway = 30 * time.Second

// SessionClaims is the payload of a first-party session token. Validity is
// entirely determined by signature and expiry; there is no server-side
// session table and no revocation before natural expiry.
type SessionClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// IssueSessionToken mints a signed bearer token for the given user,
// valid for the configured session TTL.
func IssueSessionToken(user *User, config *Config) (string, error) {
	now := time.Now()

	claims := &SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(config.SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(config.SessionSecret))
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

// VerifySessionToken checks signature and expiry and returns the embedded
// claims. The caller is still responsible for resolving the user id
// against the directory.
func VerifySessionToken(tokenString string, config *Config) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(config.SessionSecret), nil
	}, jwt.WithLeeway(tokenLeeway))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
