package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

type CustomClaims struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	AppMetadata struct {
		Provider  string   `json:"provider"`
		Providers []string `json:"providers"`
		Roles     []string `json:"roles,omitempty"`
	} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// TokenValidator checks Supabase access tokens, either against the
// project's JWKS or against the legacy shared HMAC secret.
type TokenValidator struct {
	keyFunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
	methods []string
}

func NewHMACValidator(secret string) (*TokenValidator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	key := []byte(secret)
	return &TokenValidator{
		keyFunc: func(*jwt.Token) (interface{}, error) { return key, nil },
		methods: []string{"HS256", "HS384", "HS512"},
	}, nil
}

// NewJWKSValidator fetches the key set once and refreshes it in the background
// until Close is called.
func NewJWKSValidator(supabaseURL string) (*TokenValidator, error) {
	if supabaseURL == "" {
		return nil, errors.New("SUPABASE_URL not set")
	}
	jwksURL := fmt.Sprintf("%s/auth/v1/.well-known/jwks.json", supabaseURL)

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshTimeout:    10 * time.Second,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("load JWKS from %s: %w", jwksURL, err)
	}
	return &TokenValidator{
		keyFunc: jwks.Keyfunc,
		jwks:    jwks,
		methods: []string{"RS256", "ES256"},
	}, nil
}

func (v *TokenValidator) ValidateToken(tokenStr string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, v.keyFunc, jwt.WithValidMethods(v.methods))
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

func (v *TokenValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
