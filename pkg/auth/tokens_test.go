package auth

import (
	"testing"
	"time"
)

func TestGate_SignVerify(t *testing.T) {
	g := NewGate("test-secret", time.Hour)

	t.Run("Roundtrip", func(t *testing.T) {
		tok := g.Sign("alice")
		id, err := g.Verify(tok)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if id != "alice" {
			t.Fatalf("expected identity alice, got %q", id)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if _, err := g.Verify(""); err != ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, tok := range []string{"no-dot", "bad.sig", "!!!.deadbeef"} {
			if _, err := g.Verify(tok); err != ErrInvalidToken {
				t.Fatalf("token %q: expected ErrInvalidToken, got %v", tok, err)
			}
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewGate("other-secret", time.Hour)
		tok := g.Sign("alice")
		if _, err := other.Verify(tok); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		past := &Gate{secret: []byte("test-secret"), ttl: -time.Hour}
		tok := past.Sign("alice")
		if _, err := g.Verify(tok); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
		}
	})

	t.Run("Tampered", func(t *testing.T) {
		tok := g.Sign("alice")
		mangled := "x" + tok[1:]
		if _, err := g.Verify(mangled); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
		}
	})
}
