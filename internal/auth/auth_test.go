package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func gatedHandler(t *testing.T) (http.Handler, *Principal) {
	t.Helper()
	var seen Principal
	gate := NewGate(testSecret, slog.Default())
	h := gate.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		require.True(t, ok)
		seen = p
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &seen
}

func Test_Middleware_ValidToken(t *testing.T) {
	req := require.New(t)
	h, seen := gatedHandler(t)

	token, err := GenerateToken(testSecret, "alice@example.com", "alice", time.Minute)
	req.NoError(err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	req.Equal(http.StatusNoContent, w.Code)
	req.Equal("alice@example.com", seen.Email)
	req.Equal("alice", seen.Username)
	req.Equal("alice@example.com", seen.UserID())
}

func Test_Middleware_Rejections(t *testing.T) {
	expired, err := GenerateToken(testSecret, "alice@example.com", "alice", -time.Minute)
	require.NoError(t, err)

	wrongKey, err := GenerateToken([]byte("other-secret"), "alice@example.com", "alice", time.Minute)
	require.NoError(t, err)

	// токен с алгоритмом none не проходит проверку метода подписи
	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: "alice",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "empty token", header: "Bearer "},
		{name: "garbage token", header: "Bearer not.a.jwt"},
		{name: "expired token", header: "Bearer " + expired},
		{name: "wrong signing key", header: "Bearer " + wrongKey},
		{name: "alg none", header: "Bearer " + noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := gatedHandler(t)
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			require.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func Test_Principal_UserIDFallback(t *testing.T) {
	require.Equal(t, "bob", Principal{Username: "bob"}.UserID())
	require.Equal(t, "bob@example.com", Principal{Email: "bob@example.com", Username: "bob"}.UserID())
}
