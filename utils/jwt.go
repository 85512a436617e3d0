package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

// TokenIssuer is stamped on every token this service signs.
const TokenIssuer = "homeserve"

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSubject = errors.New("token has no subject")
	// ErrReservedSubject rejects signed subjects that would collide with guest device ids.
	ErrReservedSubject = errors.New("token subject uses a reserved prefix")
)

// IdentityClaims are the claims of an account token.
type IdentityClaims struct {
	jwt.StandardClaims
}

// GenerateToken signs an HS256 token for subject (the account id) valid for ttl.
func GenerateToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := IdentityClaims{StandardClaims: jwt.StandardClaims{
		Subject:   subject,
		Issuer:    TokenIssuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies signature and expiry and returns the claims.
func ParseToken(secret []byte, tokenString string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractIDFromToken returns the account id carried by a valid token.
func ExtractIDFromToken(secret []byte, tokenString string) (string, error) {
	claims, err := ParseToken(secret, tokenString)
	if err != nil {
		return "", err
	}
	switch {
	case claims.Subject == "":
		return "", ErrMissingSubject
	case strings.HasPrefix(claims.Subject, "guest:"):
		return "", ErrReservedSubject
	}
	return claims.Subject, nil
}
