package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"placement/internal/common"
)

func TestJWTRoundTrip(t *testing.T) {
	provider := NewJWTProvider("secret")
	userID := common.NewUUID()
	token, issued, err := provider.Generate(userID, "student", time.Minute)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	claims, err := provider.Parse(token)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if claims.Sub != userID.String() || claims.Role != "student" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Jti == "" || claims.Jti != issued.Jti {
		t.Fatalf("expected token id %q, got %q", issued.Jti, claims.Jti)
	}
}

func TestJWTRejectsTamperedSignature(t *testing.T) {
	provider := NewJWTProvider("secret")
	token, _, err := provider.Generate(common.NewUUID(), "student", time.Minute)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	other := NewJWTProvider("other")
	if _, err := other.Parse(token); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected signature error, got %v", err)
	}
	parts := strings.Split(token, ".")
	if _, err := provider.Parse(parts[0] + "." + parts[1]); !errors.Is(err, ErrTokenFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestJWTExpired(t *testing.T) {
	provider := NewJWTProvider("secret")
	issuedAt := time.Now().Add(-time.Hour)
	provider.now = func() time.Time { return issuedAt }
	token, _, err := provider.Generate(common.NewUUID(), "admin", time.Minute)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	provider.now = time.Now
	if _, err := provider.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("password stored in plaintext")
	}
	ok, err := CheckPassword(hash, "hunter22")
	if err != nil || !ok {
		t.Fatalf("expected match, got %v %v", ok, err)
	}
	ok, err = CheckPassword(hash, "wrong")
	if err != nil || ok {
		t.Fatalf("expected mismatch, got %v %v", ok, err)
	}
}

func TestGeneratePassword(t *testing.T) {
	value, err := GeneratePassword(12)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(value) != 12 {
		t.Fatalf("expected 12 characters, got %d", len(value))
	}
}
