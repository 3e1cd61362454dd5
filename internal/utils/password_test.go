package utils

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the plain password")
	}

	tests := []struct {
		name  string
		plain string
		want  bool
	}{
		{"correct password", "s3cret", true},
		{"wrong password", "not-it", false},
		{"empty password", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPassword(hash, tt.plain); got != tt.want {
				t.Errorf("VerifyPassword(%q) = %v, want %v", tt.plain, got, tt.want)
			}
		})
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Error("expected verification to fail for a malformed hash")
	}
}
