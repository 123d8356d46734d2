package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/PaoComPlanta/rota-da-festa/internal/helpers"
	"github.com/PaoComPlanta/rota-da-festa/internal/services"
)

const secret = "super-secret-jwt-token-with-at-least-32-characters"

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, sub string, ttl time.Duration) string {
	t.Helper()
	claims := helpers.CustomClaims{
		Email: "ana@example.pt",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

type stubRefresher struct {
	token *types.TokenResponse
	err   error
	calls int
}

func (s *stubRefresher) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	s.calls++
	return s.token, s.err
}

// seen records what the middleware chain left in the context.
type seen struct {
	session string
	user    *helpers.EnhancedClaims
}

func newRouter(p *seen, mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/", func(c *gin.Context) {
		p.session = CurrentSession(c)
		p.user = CurrentUser(c)
		c.Status(http.StatusNoContent)
	})
	return r
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSessionIssuesCookie(t *testing.T) {
	p := &seen{}
	r := newRouter(p, Session())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	c := findCookie(rec, helpers.SessionCookie)
	if c == nil {
		t.Fatal("no session cookie issued")
	}
	if c.Value != p.session || uuid.Validate(p.session) != nil {
		t.Errorf("session = %q, cookie = %q", p.session, c.Value)
	}
}

func TestSessionKeepsExistingCookie(t *testing.T) {
	p := &seen{}
	r := newRouter(p, Session())
	existing := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: helpers.SessionCookie, Value: existing})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if p.session != existing {
		t.Errorf("session = %q, want %q", p.session, existing)
	}
	if findCookie(rec, helpers.SessionCookie) != nil {
		t.Error("cookie re-issued for a valid session")
	}
}

func TestSessionReplacesGarbage(t *testing.T) {
	p := &seen{}
	r := newRouter(p, Session())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: helpers.SessionCookie, Value: "../../etc/passwd"})
	r.ServeHTTP(httptest.NewRecorder(), req)

	if uuid.Validate(p.session) != nil {
		t.Errorf("session = %q, want a fresh uuid", p.session)
	}
}

func TestOptionalAuth(t *testing.T) {
	validator, err := helpers.NewHMACValidator(secret)
	if err != nil {
		t.Fatal(err)
	}
	userID := uuid.New()

	t.Run("anonymous", func(t *testing.T) {
		p := &seen{}
		r := newRouter(p, OptionalAuth(validator, &stubRefresher{}, quiet))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusNoContent || p.user != nil {
			t.Errorf("code = %d, user = %+v", rec.Code, p.user)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		p := &seen{}
		r := newRouter(p, OptionalAuth(validator, &stubRefresher{}, quiet))
		token := sign(t, userID.String(), time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: helpers.AccessTokenCookie, Value: token})
		r.ServeHTTP(httptest.NewRecorder(), req)

		if p.user == nil {
			t.Fatal("user not set")
		}
		if p.user.UserID != userID || p.user.AccessToken != token || p.user.Email != "ana@example.pt" || p.user.Role != "authenticated" {
			t.Errorf("claims = %+v", p.user)
		}
	})

	t.Run("token without role is a guest", func(t *testing.T) {
		p := &seen{}
		r := newRouter(p, OptionalAuth(validator, &stubRefresher{}, quiet))
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, helpers.CustomClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID.String(),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString([]byte(secret))
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: helpers.AccessTokenCookie, Value: token})
		r.ServeHTTP(httptest.NewRecorder(), req)

		if p.user == nil || p.user.Role != "guest" {
			t.Errorf("user = %+v, want role guest", p.user)
		}
	})

	t.Run("expired token is refreshed", func(t *testing.T) {
		fresh := sign(t, userID.String(), time.Hour)
		ref := &stubRefresher{token: &types.TokenResponse{Session: types.Session{
			AccessToken:  fresh,
			RefreshToken: "next-refresh",
			ExpiresIn:    3600,
		}}}
		p := &seen{}
		r := newRouter(p, OptionalAuth(validator, ref, quiet))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: helpers.AccessTokenCookie, Value: sign(t, userID.String(), -time.Minute)})
		req.AddCookie(&http.Cookie{Name: helpers.RefreshTokenCookie, Value: "old-refresh"})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if ref.calls != 1 {
			t.Errorf("refresh calls = %d", ref.calls)
		}
		if p.user == nil || p.user.AccessToken != fresh {
			t.Fatalf("user = %+v", p.user)
		}
		if c := findCookie(rec, helpers.AccessTokenCookie); c == nil || c.Value != fresh {
			t.Errorf("access cookie = %+v", c)
		}
		if c := findCookie(rec, helpers.RefreshTokenCookie); c == nil || c.Value != "next-refresh" {
			t.Errorf("refresh cookie = %+v", c)
		}
	})

	t.Run("failed refresh continues anonymously", func(t *testing.T) {
		ref := &stubRefresher{err: errors.New("refresh token revoked")}
		p := &seen{}
		r := newRouter(p, OptionalAuth(validator, ref, quiet))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: helpers.AccessTokenCookie, Value: "not-a-jwt"})
		req.AddCookie(&http.Cookie{Name: helpers.RefreshTokenCookie, Value: "revoked"})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent || p.user != nil {
			t.Errorf("code = %d, user = %+v", rec.Code, p.user)
		}
		if c := findCookie(rec, helpers.AccessTokenCookie); c == nil || c.MaxAge >= 0 {
			t.Errorf("access cookie not cleared: %+v", c)
		}
	})

	t.Run("nil validator", func(t *testing.T) {
		p := &seen{}
		r := newRouter(p, OptionalAuth(nil, nil, quiet))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: helpers.AccessTokenCookie, Value: sign(t, userID.String(), time.Hour)})
		r.ServeHTTP(httptest.NewRecorder(), req)
		if p.user != nil {
			t.Error("user set without a validator")
		}
	})
}

func TestErrorHandlerStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: 7", services.ErrEventNotFound), http.StatusNotFound},
		{services.ErrEventsNotLoaded, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: bad", services.ErrInvalidCredentials), http.StatusUnauthorized},
		{services.ErrUnknownPreset, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		r := gin.New()
		r.Use(RequestID(), ErrorHandler(quiet))
		r.GET("/", func(c *gin.Context) { c.Error(tt.err) })

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != tt.want {
			t.Errorf("%v: code = %d, want %d", tt.err, rec.Code, tt.want)
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
	}
}
