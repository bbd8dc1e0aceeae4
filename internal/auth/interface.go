package auth

import "papergen/internal/domain/models"

// TokenVerifier validates bearer tokens issued by the identity provider.
// The middleware stays agnostic to how verification happens, which keeps
// tests free of real JWKS traffic.
type TokenVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.AuthClaims, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	// Should be called when the verifier is no longer needed.
	Close() error
}
