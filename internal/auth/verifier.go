// Package auth consumes the external auth backend's session tokens.
// It only verifies; sign-in, sign-out and the OAuth redirect flow all
// live with the auth provider.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/smartbookmark/bookmarkd/internal/domain"
)

// Claims is the subset of the provider's token claims the core consumes.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 bearer tokens issued by the auth provider.
type Verifier struct {
	secret []byte
	issuer string // optional, "" skips the issuer check
}

// NewVerifier creates a verifier for the provider's signing secret.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses and validates a bearer token, returning the
// authenticated user. Any failure maps to an AuthError.
func (v *Verifier) Verify(tokenString string) (domain.User, error) {
	if tokenString == "" {
		return domain.User{}, &domain.AuthError{Reason: "missing token"}
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return domain.User{}, &domain.AuthError{Reason: err.Error()}
	}
	if !token.Valid {
		return domain.User{}, &domain.AuthError{Reason: "invalid token"}
	}
	if claims.Subject == "" {
		return domain.User{}, &domain.AuthError{Reason: "token carries no subject"}
	}

	return domain.User{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
	}, nil
}

type contextKey struct{}

// WithUser stores the authenticated user in the request context.
func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// CurrentUser returns the authenticated user from the context, or an
// AuthError when no user is present. This is the single gate every
// user-scoped operation goes through.
func CurrentUser(ctx context.Context) (domain.User, error) {
	u, ok := ctx.Value(contextKey{}).(domain.User)
	if !ok || u.ID == "" {
		return domain.User{}, &domain.AuthError{Reason: "no session"}
	}
	return u, nil
}

// SignToken mints a token the verifier accepts. Test and local-dev
// helper; production tokens come from the auth provider.
func SignToken(secret, issuer, subject, email, name string) (string, error) {
	claims := Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: subject,
			Issuer:  issuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
