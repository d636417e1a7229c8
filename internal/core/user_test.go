package core

import (
	"strings"
	"testing"
)

func TestRegistrationValidate(t *testing.T) {
	tests := []struct {
		name string
		reg  Registration
		ok   bool
	}{
		{"valid", Registration{Email: "ann@example.com", Password: "hunter22"}, true},
		{"with display name", Registration{Email: "Ann <ann@example.com>", Password: "hunter22"}, false},
		{"not an address", Registration{Email: "ann", Password: "hunter22"}, false},
		{"short password", Registration{Email: "ann@example.com", Password: "short"}, false},
		{"long password", Registration{Email: "ann@example.com", Password: strings.Repeat("x", 73)}, false},
		{"long language", Registration{Email: "ann@example.com", Password: "hunter22", Language: "klingon-empire"}, false},
		{"long nickname", Registration{Email: "ann@example.com", Password: "hunter22", Nickname: strings.Repeat("n", 256)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tt.ok && KindOf(err) != KindValidation {
				t.Fatalf("Validate() = %v, want validation error", err)
			}
		})
	}
}

func TestCredentials(t *testing.T) {
	if err := (Credentials{Email: " ", Password: "x"}).Validate(); KindOf(err) != KindValidation {
		t.Fatalf("blank email: %v", err)
	}
	if got := NormalizeEmail("  Ann@Example.COM "); got != "ann@example.com" {
		t.Fatalf("NormalizeEmail() = %q", got)
	}
	if KindOf(ErrBadCredentials) != KindUnauthenticated || KindUnauthenticated.String() != "unauthenticated" {
		t.Fatalf("ErrBadCredentials kind = %v", KindOf(ErrBadCredentials))
	}
}
