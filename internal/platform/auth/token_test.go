package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only-32b")

func testClaims(exp time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "3b0e1c9a-5a55-4b5e-9d4c-2a6f0a7e9c11",
			ID:        "a1f7c2d4-1e2b-4c3d-8e9f-0a1b2c3d4e5f",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: RoleUser,
	}
}

func TestSigner_RoundTrip(t *testing.T) {
	s := NewSigner(testSigningKey)
	tok, err := s.Sign(testClaims(time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Role != RoleUser || claims.Subject == "" || claims.ID == "" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestSigner_Rejects(t *testing.T) {
	s := NewSigner(testSigningKey)

	expired, _ := s.Sign(testClaims(time.Now().Add(-time.Hour)))
	otherKey, _ := NewSigner([]byte("another-key-another-key-another-key")).Sign(testClaims(time.Now().Add(time.Hour)))

	noExp := testClaims(time.Now())
	noExp.ExpiresAt = nil
	missingExp, _ := s.Sign(noExp)

	noJTI := testClaims(time.Now().Add(time.Hour))
	noJTI.ID = ""
	missingJTI, _ := s.Sign(noJTI)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, testClaims(time.Now().Add(time.Hour))).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"expired":     expired,
		"wrong key":   otherKey,
		"missing exp": missingExp,
		"missing jti": missingJTI,
		"alg none":    none,
		"garbage":     "not.a.token",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Parse(tok); err == nil {
				t.Error("expected error")
			}
		})
	}
}
