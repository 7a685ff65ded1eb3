// Package auth verifies identity-provider tokens and issues the session
// tokens (access/refresh JWTs) the API accepts afterwards.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Identity is what the identity provider asserts about the caller.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// IdentityVerifier checks an identity-provider token and returns the
// identity it carries, or an error wrapping ErrInvalidToken.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// GoogleVerifier verifies Google-issued ID tokens against the configured
// client ids. An empty Audiences list rejects every token.
type GoogleVerifier struct {
	Audiences []string

	// verifyFn is overridden in tests; it defaults to the library's
	// signature/audience/expiry check.
	verifyFn func(token string, audiences []string) error
}

var _ IdentityVerifier = (*GoogleVerifier)(nil)

// NewGoogleVerifier returns a verifier accepting tokens issued for any of
// audiences.
func NewGoogleVerifier(audiences []string) *GoogleVerifier {
	return &GoogleVerifier{Audiences: audiences}
}

// Verify validates token and decodes its identity claims.
func (g *GoogleVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}
	if len(g.Audiences) == 0 {
		return Identity{}, fmt.Errorf("%w: no accepted audiences configured", ErrInvalidToken)
	}

	verify := g.verifyFn
	if verify == nil {
		verify = func(tok string, aud []string) error {
			v := googleAuthIDTokenVerifier.Verifier{}
			return v.VerifyIDToken(tok, aud)
		}
	}
	if err := verify(token, g.Audiences); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return decodeIdentity(token)
}

func decodeIdentity(token string) (Identity, error) {
	claimSet, err := googleAuthIDTokenVerifier.Decode(token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id := Identity{
		Subject: claimSet.Sub,
		Email:   strings.ToLower(strings.TrimSpace(claimSet.Email)),
		Name:    strings.TrimSpace(claimSet.Name),
	}
	if id.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	// The picture claim is optional; the signature was already checked above.
	extra := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, extra); err == nil {
		if p, ok := extra["picture"].(string); ok {
			id.Picture = p
		}
	}
	return id, nil
}
