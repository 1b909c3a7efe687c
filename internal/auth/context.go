package auth

import (
	"context"
	"net/http"
	"time"
)

const CookieName = "sid"

type ctxKey struct{}

type authed struct {
	session Session
	token   string
}

func WithSession(ctx context.Context, s Session, token string) context.Context {
	return context.WithValue(ctx, ctxKey{}, authed{session: s, token: token})
}

func FromContext(ctx context.Context) (Session, string, bool) {
	a, ok := ctx.Value(ctxKey{}).(authed)
	return a.session, a.token, ok
}

func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// Cookies builds the session cookie: Secure and SameSite=None in production,
// Lax otherwise.
type Cookies struct {
	Production bool
	TTL        time.Duration
}

func (c Cookies) sameSite() http.SameSite {
	if c.Production {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (c Cookies) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Production,
		SameSite: c.sameSite(),
	})
}

func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Production,
		SameSite: c.sameSite(),
	})
}
