package helpers

import "github.com/google/uuid"

// EnhancedClaims is what the auth middleware stores under "user".
type EnhancedClaims struct {
	*CustomClaims
	Role        string    `json:"role"`
	UserID      uuid.UUID `json:"id"`
	Email       string    `json:"email,omitempty"`
	AccessToken string    `json:"-"`
}

func (ec *EnhancedClaims) GetSafeRole() string {
	if ec.Role == "" {
		return "guest"
	}
	return ec.Role
}
