package password

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("s3cr3t")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(hash, "pbkdf2_sha256$") {
		t.Errorf("unexpected hash format: %s", hash)
	}
	if !Verify("s3cr3t", hash) {
		t.Error("Verify rejected the correct password")
	}
	if Verify("wrong", hash) {
		t.Error("Verify accepted a wrong password")
	}
}

func TestHashIsSalted(t *testing.T) {
	h1, err := Hash("same")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	h2, err := Hash("same")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ")
	}
	if !Verify("same", h1) || !Verify("same", h2) {
		t.Error("both salted hashes should verify")
	}
}

func TestVerifyMalformed(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"wrong scheme", "bcrypt$10$aa$bb"},
		{"missing parts", "pbkdf2_sha256$200000"},
		{"bad iterations", "pbkdf2_sha256$zero$aabb$ccdd"},
		{"bad salt hex", "pbkdf2_sha256$200000$zz$ccdd"},
		{"bad hash hex", "pbkdf2_sha256$200000$aabb$zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Verify("anything", tt.stored) {
				t.Errorf("Verify accepted malformed credential %q", tt.stored)
			}
		})
	}
}
