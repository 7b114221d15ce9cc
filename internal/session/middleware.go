package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"BloomStore/pkg/kit"
)

const (
	Header     = "X-Session-Id"
	CookieName = "sid"
)

type ctxKey struct{}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// RequireHeader is used by services behind the gateway: the session id
// arrives as a trusted header.
func RequireHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(Header))
		if id == "" {
			kit.WriteError(w, r, http.StatusUnauthorized, "missing session", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

// Issuer resolves the visitor's session from the sid cookie and mints a new
// one when the cookie is absent, expired or forged.
type Issuer struct {
	Tokens *TokenMaker
	TTL    time.Duration
	Secure bool
	Log    *zap.Logger
}

func (i *Issuer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := i.resolve(r)
		if id == "" {
			var err error
			id, err = i.issue(w)
			if err != nil {
				if i.Log != nil {
					i.Log.Error("issue session failed", zap.Error(err))
				}
				kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
				return
			}
		}

		r.Header.Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

func (i *Issuer) resolve(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	claims, err := i.Tokens.Parse(c.Value)
	if err != nil {
		return ""
	}
	return claims.SessionID
}

func (i *Issuer) issue(w http.ResponseWriter) (string, error) {
	id := NewID()
	tok, err := i.Tokens.New(id, i.TTL)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(i.TTL.Seconds()),
		HttpOnly: true,
		Secure:   i.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

// StripHeader drops a client-supplied session header so only the gateway can
// set it.
func StripHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(Header)
		next.ServeHTTP(w, r)
	})
}
