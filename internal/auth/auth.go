// Package auth — JWT-аутентификация (HS256). Маршрутный слой получает
// auth gate как обычный http middleware, так что вместо этой реализации
// можно подставить любую другую.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sir_venger/dataset_lite/pkg/httperrors"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

const principalKey contextKey = "auth_principal"

// Principal — аутентифицированный пользователь.
type Principal struct {
	Subject  string
	Email    string
	Username string
}

// UserID возвращает идентификатор для поля userId data set'а:
// email, при его отсутствии username.
func (p Principal) UserID() string {
	if p.Email != "" {
		return p.Email
	}
	return p.Username
}

// Claims — структура JWT claims сервиса.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// Gate валидирует Bearer-токены и кладёт Principal в контекст запроса.
type Gate struct {
	secret []byte
	log    *slog.Logger
}

// NewGate создаёт auth gate с общим секретом подписи.
func NewGate(secret []byte, log *slog.Logger) *Gate {
	return &Gate{
		secret: secret,
		log:    log.With(slog.String("component", "auth_gate")),
	}
}

// Middleware возвращает http middleware: извлекает Bearer-токен,
// проверяет подпись и срок действия, кладёт Principal в контекст.
func (g *Gate) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				httperrors.Unauthorized(w)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(*jwt.Token) (any, error) {
				return g.secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				g.log.Debug("jwt validation failed",
					slog.String("remote_addr", r.RemoteAddr),
				)
				httperrors.Unauthorized(w)
				return
			}

			p := Principal{
				Subject:  claims.Subject,
				Email:    claims.Email,
				Username: claims.Username,
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// WithPrincipal кладёт Principal в контекст.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext извлекает Principal из контекста запроса.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// GenerateToken выпускает подписанный токен; используется в тестах
// и вспомогательных утилитах.
func GenerateToken(secret []byte, email, username string, ttl time.Duration) (string, error) {
	claims := &Claims{
		Email:    email,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "dataset_lite",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
