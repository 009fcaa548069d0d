package auth

import (
	"strings"
	"testing"
)

func TestGenerateAndVerify(t *testing.T) {
	token, err := GenerateToken("secret", "student-1", 60)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	sub, err := VerifyToken("secret", token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "student-1" {
		t.Fatalf("subject = %q", sub)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", "student-1", 60)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := VerifyToken("other", token); err == nil {
		t.Fatalf("token signed with a different secret must not verify")
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	token, err := GenerateToken("secret", "student-1", 60)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	tampered := parts[0] + "." + parts[1] + "." + "AAAA"
	if _, err := VerifyToken("secret", tampered); err == nil {
		t.Fatalf("tampered signature must not verify")
	}
}

func TestGenerateRequiresSecret(t *testing.T) {
	if _, err := GenerateToken("", "anyone", 60); err == nil {
		t.Fatalf("empty secret must be refused")
	}
}
