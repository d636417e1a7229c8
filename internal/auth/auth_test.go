package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const secret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	tok, err := GenerateToken(secret, "meloon", 42, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := ParseToken(secret, "meloon", tok)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 42 || claims.Subject != "42" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseTokenRejects(t *testing.T) {
	good, _ := GenerateToken(secret, "meloon", 1, time.Hour)

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte(secret))

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: 1}).SignedString([]byte(secret))

	tests := []struct {
		name   string
		secret string
		issuer string
		token  string
	}{
		{"wrong secret", "other", "meloon", good},
		{"wrong issuer", secret, "someone-else", good},
		{"expired", secret, "", expired},
		{"no expiry", secret, "", noExpiry},
		{"garbage", secret, "", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.secret, tt.issuer, tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("ParseToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestGenerateTokenValidation(t *testing.T) {
	if _, err := GenerateToken("", "", 1, 0); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := GenerateToken(secret, "", 0, 0); err == nil {
		t.Error("expected error for zero user id")
	}
}

func TestMiddleware(t *testing.T) {
	tok, _ := GenerateToken(secret, "", 9, time.Hour)

	var gotOwner int64
	var rejected string
	h := Middleware(secret, "", func(w http.ResponseWriter, r *http.Request, msg string) {
		rejected = msg
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOwner, _ = OwnerFromContext(r.Context())
	}))

	tests := []struct {
		name      string
		header    string
		query     string
		wantCode  int
		wantOwner int64
	}{
		{"bearer header", "Bearer " + tok, "", http.StatusOK, 9},
		{"lowercase scheme", "bearer " + tok, "", http.StatusOK, 9},
		{"query fallback", "", "?token=" + tok, http.StatusOK, 9},
		{"missing", "", "", http.StatusUnauthorized, 0},
		{"bad token", "Bearer nope", "", http.StatusUnauthorized, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotOwner, rejected = 0, ""
			req := httptest.NewRequest(http.MethodGet, "/v1/data/export"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode || gotOwner != tt.wantOwner {
				t.Fatalf("code = %d owner = %d (rejected %q); want %d, %d", rec.Code, gotOwner, rejected, tt.wantCode, tt.wantOwner)
			}
		})
	}
}

func TestOwnerFromContextRequiresPositiveID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := OwnerFromContext(req.Context()); ok {
		t.Fatal("empty context must not yield an owner")
	}
	if _, ok := OwnerFromContext(WithOwner(req.Context(), 0)); ok {
		t.Fatal("zero owner must be rejected")
	}
}
