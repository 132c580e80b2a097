package tokenizer

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/chaincampus/warden/core"
	"github.com/chaincampus/warden/ports"
)

// JWTTokenizer implements the Tokenizer interface with HS512 symmetric
// signing. The key and both validity windows are fixed at construction.
type JWTTokenizer struct {
	signKey        []byte
	issuer         string
	validFor       time.Duration
	refreshableFor time.Duration
}

// NewJWTTokenizer creates a new JWT tokenizer.
func NewJWTTokenizer(signKey []byte, issuer string, validFor, refreshableFor time.Duration) *JWTTokenizer {
	return &JWTTokenizer{
		signKey:        signKey,
		issuer:         issuer,
		validFor:       validFor,
		refreshableFor: refreshableFor,
	}
}

// Encode builds a signed session credential for the identity.
func (j *JWTTokenizer) Encode(identity core.Identity) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.validFor)),
			ID:        uuid.New().String(),
		},
		Scope: buildScope(identity),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode checks the signature and the effective validity window. A refresh
// check validates against issuedAt plus the refreshable duration instead of
// the stated expiry; the two windows are never conflated.
func (j *JWTTokenizer) Decode(tokenStr string, refresh bool) (ports.Claims, error) {
	// Expiry is checked manually below because the refresh window extends
	// past the stated exp claim.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return j.signKey, nil
	})
	if err != nil {
		return ports.Claims{}, core.ErrUnauthenticated
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return ports.Claims{}, core.ErrUnauthenticated
	}

	effectiveExpiry := claims.ExpiresAt.Time
	if refresh {
		effectiveExpiry = claims.IssuedAt.Add(j.refreshableFor)
	}
	if !time.Now().Before(effectiveExpiry) {
		return ports.Claims{}, core.ErrUnauthenticated
	}

	return ports.Claims{
		Subject:   claims.Subject,
		Issuer:    claims.Issuer,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
		Scope:     claims.Scope,
	}, nil
}

func buildScope(identity core.Identity) string {
	if identity.Role == "" {
		return ""
	}
	return "ROLE_" + identity.Role
}
