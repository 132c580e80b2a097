package tokenizer

import "github.com/golang-jwt/jwt/v5"

// sessionClaims combines the registered claims with the role scope.
type sessionClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}
