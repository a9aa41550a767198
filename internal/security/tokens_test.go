package security

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"
)

func TestTokenProvider_IssueAndValidate(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}

	token, exp, err := p.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("token empty")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	uid, err := p.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if uid != "u1" {
		t.Errorf("Validate: got userID=%q, want %q", uid, "u1")
	}
}

func TestTokenProvider_IssueTwiceBothValid(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	first, _, _ := p.Issue("u1")
	second, _, _ := p.Issue("u1")
	if first == second {
		t.Fatal("tokens should differ by jti")
	}
	for _, tok := range []string{first, second} {
		if _, err := p.Validate(tok); err != nil {
			t.Errorf("Validate: %v", err)
		}
	}
}

func TestTokenProvider_ValidateInvalid(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	_, err = p.Validate("invalid-token")
	if err != ErrInvalidToken {
		t.Errorf("Validate invalid token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_ValidateExpired(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	past := p.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	token, _, err := past.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := p.Validate(token); err != ErrInvalidToken {
		t.Errorf("Validate expired token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_ValidateWrongAudience(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	other, err := NewTokenProviderFromSettings(SigningSettings{
		PrivateKey: testPrivateKeyPEM,
		PublicKey:  testPublicKeyPEM,
		Issuer:     "test-issuer",
		Audience:   "other-audience",
		TTL:        time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenProviderFromSettings: %v", err)
	}
	token, _, err := other.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := p.Validate(token); err != ErrInvalidToken {
		t.Errorf("Validate foreign audience: want ErrInvalidToken, got %v", err)
	}
}

func TestHMACTokenProvider(t *testing.T) {
	p, err := NewHMACTokenProvider([]byte("0123456789abcdef0123456789abcdef"), "iss", "aud", time.Hour)
	if err != nil {
		t.Fatalf("NewHMACTokenProvider: %v", err)
	}
	token, _, err := p.Issue("u42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	uid, err := p.Validate(token)
	if err != nil || uid != "u42" {
		t.Fatalf("Validate = %q, %v", uid, err)
	}

	forged, err := NewHMACTokenProvider([]byte("a-different-secret-of-enough-size"), "iss", "aud", time.Hour)
	if err != nil {
		t.Fatalf("NewHMACTokenProvider: %v", err)
	}
	bad, _, _ := forged.Issue("u42")
	if _, err := p.Validate(bad); err != ErrInvalidToken {
		t.Errorf("Validate with wrong secret: want ErrInvalidToken, got %v", err)
	}
}

func TestHMACTokenProvider_EmptySecret(t *testing.T) {
	if _, err := NewHMACTokenProvider(nil, "iss", "aud", time.Hour); err != ErrInvalidKey {
		t.Errorf("want ErrInvalidKey, got %v", err)
	}
}

func TestTokenProvider_RejectsAlgorithmSwitch(t *testing.T) {
	rsaProvider, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	hmac, err := NewHMACTokenProvider([]byte(testPublicKeyPEM), "test-issuer", "test-audience", time.Hour)
	if err != nil {
		t.Fatalf("NewHMACTokenProvider: %v", err)
	}
	token, _, _ := hmac.Issue("u1")
	if _, err := rsaProvider.Validate(token); err != ErrInvalidToken {
		t.Errorf("HS256 token against RS256 provider: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_ES256(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	p, err := NewTokenProvider(key, &key.PublicKey, "iss", "aud", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	token, _, err := p.Issue("u7")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if uid, err := p.Validate(token); err != nil || uid != "u7" {
		t.Fatalf("Validate = %q, %v", uid, err)
	}
}
