// Package auth issues and checks the storefront's access tokens and
// password hashes, and carries the request identity.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cupcakery/storefront/config"
)

const (
	issuer    = "storefront"
	accessTTL = 24 * time.Hour
)

// Claims is the access-token payload. The user id travels as the subject.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject back into a user id.
func (c *Claims) UserID() uint {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

var parser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithIssuer(issuer),
	jwt.WithExpirationRequired(),
)

func signingKey(*jwt.Token) (interface{}, error) {
	return []byte(config.JWTSecret()), nil
}

// GenerateToken signs an HS256 access token for userID.
func GenerateToken(userID uint, role string) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
		},
	})
	return tok.SignedString([]byte(config.JWTSecret()))
}

// ValidateToken returns the claims of a well-formed, unexpired token issued
// by this service.
func ValidateToken(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, err := parser.ParseWithClaims(raw, claims, signingKey); err != nil {
		return nil, err
	}
	if claims.UserID() == 0 {
		return nil, errors.New("auth: token has no subject")
	}
	return claims, nil
}
