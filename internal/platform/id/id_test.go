package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

// decode turns an identifier back into the UUID it was made from.
func decode(t *testing.T, s string) uuid.UUID {
	t.Helper()
	raw, err := encoding.DecodeString(strings.ToUpper(s))
	if err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	u, err := uuid.FromBytes(raw)
	if err != nil {
		t.Fatalf("uuid from %d bytes: %v", len(raw), err)
	}
	return u
}

func TestNewIDIsLowercaseBase32(t *testing.T) {
	got, err := NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if len(got) != 26 {
		t.Fatalf("len(%q) = %d, want 26", got, len(got))
	}
	if strings.Trim(got, "abcdefghijklmnopqrstuvwxyz234567") != "" {
		t.Fatalf("id %q has characters outside the lowercase base32 alphabet", got)
	}
}

func TestNewIDRoundTripsToRandomUUID(t *testing.T) {
	got, err := NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	u := decode(t, got)
	if u.Version() != 4 {
		t.Fatalf("version = %d, want 4", u.Version())
	}
	if u.Variant() != uuid.RFC4122 {
		t.Fatalf("variant = %v, want %v", u.Variant(), uuid.RFC4122)
	}
}

func TestNewIDDoesNotRepeat(t *testing.T) {
	const n = 1000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		got, err := NewID()
		if err != nil {
			t.Fatalf("NewID: %v", err)
		}
		if _, dup := seen[got]; dup {
			t.Fatalf("id %q repeated after %d draws", got, i)
		}
		seen[got] = struct{}{}
	}
}
