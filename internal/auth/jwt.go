package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidShareToken covers bad signatures, expiry and malformed tokens.
var ErrInvalidShareToken = errors.New("invalid or expired share token")

const shareIssuer = "research-summary"

// ShareClaims grant read-only access to one stored research record.
type ShareClaims struct {
	RecordID string `json:"rid"`
	jwt.RegisteredClaims
}

func GenerateShareToken(secret, recordID string, duration time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("share secret is not configured")
	}
	now := time.Now().UTC()
	claims := ShareClaims{
		RecordID: recordID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    shareIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseShareToken(secret, tokenStr string) (*ShareClaims, error) {
	if secret == "" {
		return nil, ErrInvalidShareToken
	}
	token, err := jwt.ParseWithClaims(tokenStr, &ShareClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(shareIssuer))
	if err != nil {
		return nil, ErrInvalidShareToken
	}
	if claims, ok := token.Claims.(*ShareClaims); ok && token.Valid && claims.RecordID != "" {
		return claims, nil
	}
	return nil, ErrInvalidShareToken
}
