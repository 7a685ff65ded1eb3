package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func newCodec(t *testing.T) *TokenCodec {
	t.Helper()
	c, err := NewTokenCodec("test-secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return c
}

func TestNewTokenCodec_Validation(t *testing.T) {
	if _, err := NewTokenCodec("", time.Minute, time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	if _, err := NewTokenCodec("s", 0, time.Hour); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}

func TestIssueParse_RoundTrip(t *testing.T) {
	c := newCodec(t)

	iss, err := c.Issue(42, true, AccessToken)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if iss.Token == "" || len(iss.CSRF) != 32 {
		t.Fatalf("unexpected issued token: %+v", iss)
	}
	if d := time.Until(iss.ExpiresAt); d <= 0 || d > time.Minute {
		t.Fatalf("unexpected expiry: %v", iss.ExpiresAt)
	}

	cl, err := c.Parse(iss.Token, AccessToken)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	uid, _ := cl.UserID()
	if uid != 42 || !cl.Admin || cl.CSRF != iss.CSRF || cl.ID == "" {
		t.Fatalf("unexpected claims: %+v", cl)
	}

	if _, err := c.Parse(iss.Token, RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token must not pass as refresh, got %v", err)
	}
	if c.TTL(RefreshToken) != time.Hour || c.TTL(AccessToken) != time.Minute {
		t.Fatalf("TTL mismatch")
	}
	if _, err := c.Issue(1, false, "bogus"); err == nil {
		t.Fatalf("expected error for unknown token type")
	}
}

func TestParse_Rejections(t *testing.T) {
	c := newCodec(t)
	iss, _ := c.Issue(7, false, RefreshToken)

	other, _ := NewTokenCodec("other-secret", time.Minute, time.Hour)
	if _, err := other.Parse(iss.Token, RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong key must fail, got %v", err)
	}

	expired := newCodec(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.Issue(7, false, AccessToken)
	if _, err := c.Parse(old.Token, AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token must fail, got %v", err)
	}

	// alg=none and foreign algorithms are refused.
	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Type: AccessToken, RegisteredClaims: jwt.RegisteredClaims{Subject: "7"}})
	raw, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := c.Parse(raw, AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("alg none must fail, got %v", err)
	}

	bad := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Type: AccessToken, RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}})
	raw, _ = bad.SignedString([]byte("test-secret"))
	if _, err := c.Parse(raw, AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("non-numeric subject must fail, got %v", err)
	}

	if _, err := c.Parse("", AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("empty token must fail")
	}
	if _, err := c.Parse("a.b.c", AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token must fail")
	}
}

// idToken builds an unsigned-looking ID token with the given claims; the
// signature check is stubbed in these tests.
func idToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("idp"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestGoogleVerifier_Verify(t *testing.T) {
	ctx := context.Background()
	var gotAud []string
	g := &GoogleVerifier{
		Audiences: []string{"client-1"},
		verifyFn: func(_ string, aud []string) error {
			gotAud = aud
			return nil
		},
	}
	tok := idToken(t, jwt.MapClaims{
		"sub":     "1234",
		"email":   " Ann@Example.COM ",
		"name":    "Ann",
		"picture": "https://img.example.com/a.png",
	})

	id, err := g.Verify(ctx, tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.Subject != "1234" || id.Email != "ann@example.com" || id.Name != "Ann" || id.Picture != "https://img.example.com/a.png" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if len(gotAud) != 1 || gotAud[0] != "client-1" {
		t.Fatalf("audiences not forwarded: %v", gotAud)
	}
}

func TestGoogleVerifier_Rejects(t *testing.T) {
	ctx := context.Background()
	ok := func(string, []string) error { return nil }

	noAud := &GoogleVerifier{verifyFn: ok}
	if _, err := noAud.Verify(ctx, "x.y.z"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("no audiences must reject, got %v", err)
	}

	g := &GoogleVerifier{Audiences: []string{"a"}, verifyFn: ok}
	if _, err := g.Verify(ctx, "   "); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("blank token must reject, got %v", err)
	}
	noSub := idToken(t, jwt.MapClaims{"email": "a@b.c"})
	if _, err := g.Verify(ctx, noSub); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("missing subject must reject, got %v", err)
	}

	failing := &GoogleVerifier{Audiences: []string{"a"}, verifyFn: func(string, []string) error { return errors.New("bad signature") }}
	_, err := failing.Verify(ctx, idToken(t, jwt.MapClaims{"sub": "1"}))
	if !errors.Is(err, ErrInvalidToken) || !strings.Contains(err.Error(), "bad signature") {
		t.Fatalf("verification failure must wrap ErrInvalidToken, got %v", err)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := g.Verify(cctx, "x.y.z"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if NewGoogleVerifier([]string{"a"}).Audiences[0] != "a" {
		t.Fatalf("NewGoogleVerifier did not keep audiences")
	}
}
