package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-key-at-least-32-bytes")

func signToken(t testing.TB, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return token
}

func requestWith(header string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/admin/cache/stats", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	return r
}

func TestJWTAuthenticator_Valid(t *testing.T) {
	a := NewJWTAuthenticator(JWTConfig{Secret: testSecret, Issuer: "invoicekit"})
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub":   "ops",
		"iss":   "invoicekit",
		"roles": []string{RoleAdmin, RoleViewer},
		"exp":   exp.Unix(),
		"iat":   time.Now().Unix(),
	})

	id, err := a.Authenticate(requestWith("Bearer " + token))
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if id.Principal != "ops" {
		t.Errorf("Principal = %q, want ops", id.Principal)
	}
	if !id.HasRole(RoleAdmin) || !id.HasRole(RoleViewer) {
		t.Errorf("Roles = %v", id.Roles)
	}
	if !id.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", id.ExpiresAt, exp)
	}
	if id.IssuedAt.IsZero() {
		t.Error("IssuedAt not set")
	}
	if id.Anonymous {
		t.Error("token identity marked anonymous")
	}
}

func TestJWTAuthenticator_Rejections(t *testing.T) {
	a := NewJWTAuthenticator(JWTConfig{Secret: testSecret, Issuer: "invoicekit", Audience: "admin"})
	valid := jwt.MapClaims{"sub": "ops", "iss": "invoicekit", "aud": "admin", "exp": time.Now().Add(time.Hour).Unix()}
	with := func(k string, v any) jwt.MapClaims {
		c := jwt.MapClaims{}
		for key, val := range valid {
			c[key] = val
		}
		c[k] = v
		return c
	}

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{name: "no header", want: ErrMissingCredentials},
		{name: "basic scheme", header: "Basic b3BzOnB3", want: ErrMissingCredentials},
		{name: "empty bearer", header: "Bearer   ", want: ErrMissingCredentials},
		{name: "garbage", header: "Bearer not.a.jwt", want: ErrTokenMalformed},
		{name: "expired", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, with("exp", time.Now().Add(-time.Hour).Unix())), want: ErrTokenExpired},
		{name: "wrong secret", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("another-secret-of-32-bytes-long!"), valid), want: ErrInvalidCredentials},
		{name: "wrong issuer", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, with("iss", "someone-else")), want: ErrInvalidCredentials},
		{name: "wrong audience", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, with("aud", "public")), want: ErrInvalidCredentials},
		{name: "none algorithm", header: "Bearer " + signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid), want: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := a.Authenticate(requestWith(tt.header))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.want)
			}
			if id != nil {
				t.Errorf("Authenticate() identity = %+v, want nil", id)
			}
		})
	}
}

func TestJWTAuthenticator_SchemeCaseInsensitive(t *testing.T) {
	a := NewJWTAuthenticator(JWTConfig{Secret: testSecret})
	token := signToken(t, jwt.SigningMethodHS512, testSecret, jwt.MapClaims{"sub": "ops"})

	id, err := a.Authenticate(requestWith("bearer " + token))
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if id.Principal != "ops" {
		t.Errorf("Principal = %q", id.Principal)
	}
}

func TestJWTAuthenticator_MissingSecretIsInternal(t *testing.T) {
	a := NewJWTAuthenticator(JWTConfig{})
	_, err := a.Authenticate(requestWith("Bearer x.y.z"))
	if err == nil || IsCredentialError(err) {
		t.Fatalf("Authenticate() error = %v, want an internal error", err)
	}
}

func TestRolesFrom(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{name: "array", in: []any{"admin", 7, "", "viewer"}, want: []string{"admin", "viewer"}},
		{name: "space separated", in: "admin  viewer", want: []string{"admin", "viewer"}},
		{name: "missing", in: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rolesFrom(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("rolesFrom() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("rolesFrom()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func BenchmarkJWTAuthenticator(b *testing.B) {
	a := NewJWTAuthenticator(JWTConfig{Secret: testSecret})
	r := requestWith("Bearer " + signToken(b, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "ops", "roles": "admin"}))

	b.ReportAllocs()
	for b.Loop() {
		_, _ = a.Authenticate(r)
	}
}
