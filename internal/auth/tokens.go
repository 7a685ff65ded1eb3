package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// TokenType distinguishes access from refresh tokens.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Claims are the session token claims. Subject holds the user id.
// CSRF is the double-submit value mirrored in a readable cookie.
type Claims struct {
	Admin bool      `json:"adm"`
	Type  TokenType `json:"typ"`
	CSRF  string    `json:"csrf,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses Subject as a user id.
func (c *Claims) UserID() (uint, error) {
	n, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return uint(n), nil
}

// Issued is a freshly signed token.
type Issued struct {
	Token     string
	CSRF      string
	ExpiresAt time.Time
}

// TokenCodec signs and verifies HS256 session tokens.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenCodec returns a codec using secret for HMAC signing.
func NewTokenCodec(secret string, accessTTL, refreshTTL time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}
	return &TokenCodec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// TTL returns the lifetime of tokens of type typ.
func (c *TokenCodec) TTL(typ TokenType) time.Duration {
	if typ == RefreshToken {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Issue signs a token of type typ for userID.
func (c *TokenCodec) Issue(userID uint, admin bool, typ TokenType) (Issued, error) {
	if typ != AccessToken && typ != RefreshToken {
		return Issued{}, fmt.Errorf("unknown token type %q", typ)
	}
	csrf, err := randomHex(16)
	if err != nil {
		return Issued{}, err
	}
	now := c.now().UTC()
	exp := now.Add(c.TTL(typ))
	claims := Claims{
		Admin: admin,
		Type:  typ,
		CSRF:  csrf,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: signed, CSRF: csrf, ExpiresAt: exp}, nil
}

// Parse verifies raw and checks that it is of type want.
func (c *TokenCodec) Parse(raw string, want TokenType) (*Claims, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != want {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, want)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
