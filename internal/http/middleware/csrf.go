// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements anti-forgery protection for the HTML forms. The
// scheme is a signed double-submit cookie: every browser session receives a
// random session value in a cookie, each rendered form embeds an HMAC of
// that value under a hidden field, and every state-changing request must
// present a field that verifies against the cookie. Requests failing the
// check are rejected before any handler runs.
//
// Design goals:
//   - Keep transport concerns (cookie issuance, verification) in middleware.
//   - No server-side session store; the cookie plus the HMAC key is the
//     entire state, which suits the single-process deployment.
//   - Handlers only ever call TokenFrom to embed the token in forms.
package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FormFieldCSRF is the hidden form field carrying the anti-forgery token.
const FormFieldCSRF = "csrf_token"

// csrfCookieName holds the per-session random value the token is bound to.
const csrfCookieName = "cleanlog_session"

// ctxKeyCSRFToken stashes the token for the current request so templates
// can embed it.
const ctxKeyCSRFToken = "csrf.token"

// CSRFOptions configures the CSRF guard.
type CSRFOptions struct {
	// Key is the HMAC secret the tokens are signed with. Required.
	Key []byte
	// Secure marks the session cookie Secure; enable behind HTTPS.
	Secure bool
	// CookieMaxAge bounds the session cookie lifetime in seconds.
	// Values <= 0 default to 30 days.
	CookieMaxAge int
}

// TokenFrom returns the anti-forgery token for the current request, as
// stashed by CSRF(). Handlers pass it to templates; an empty string means
// the middleware is not installed.
func TokenFrom(c *gin.Context) string {
	v, ok := c.Get(ctxKeyCSRFToken)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// CSRF returns a Gin middleware enforcing the double-submit check.
//
// Behavior:
//   - Ensures a session cookie exists, issuing a fresh UUID value when
//     absent, and stashes the matching token in the context for templates.
//   - Safe methods (GET, HEAD, OPTIONS) pass through.
//   - Unsafe methods must carry a form field (or X-CSRF-Token header) that
//     verifies against the session cookie; on mismatch the request is
//     aborted with 403 and the generic error page.
func CSRF(opt CSRFOptions) gin.HandlerFunc {
	maxAge := opt.CookieMaxAge
	if maxAge <= 0 {
		maxAge = 30 * 24 * 3600
	}
	return func(c *gin.Context) {
		session, err := c.Cookie(csrfCookieName)
		if err != nil || session == "" {
			session = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(csrfCookieName, session, maxAge, "/", "", opt.Secure, true)
		}
		c.Set(ctxKeyCSRFToken, sign(opt.Key, session))

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		token := c.PostForm(FormFieldCSRF)
		if token == "" {
			token = c.GetHeader("X-CSRF-Token")
		}
		if !verify(opt.Key, session, token) {
			LoggerFrom(c).Warn().
				Str("remote_ip", c.ClientIP()).
				Msg("csrf token rejected")
			c.HTML(http.StatusForbidden, ErrorTemplateName, gin.H{
				"Title":   "Neplatný požadavek",
				"Message": "Formulář vypršel. Vraťte se zpět a odešlete jej znovu.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// sign returns the hex HMAC-SHA256 of the session value under key.
func sign(key []byte, session string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(session))
	return hex.EncodeToString(mac.Sum(nil))
}

// verify reports whether token is a valid signature for session. The
// comparison is constant-time.
func verify(key []byte, session, token string) bool {
	if session == "" || token == "" {
		return false
	}
	want, err := hex.DecodeString(token)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(session))
	return hmac.Equal(want, mac.Sum(nil))
}
