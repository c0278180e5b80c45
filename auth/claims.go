package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims is the subset of access token claims the widgets care about.
type UserClaims struct {
	UserID string
	Email  string
	Expiry time.Time
}

// Claims decodes an access token without verifying its signature. The token
// is only ever used as an opaque bearer value; the decoded claims are
// informational.
func Claims(accessToken string) (*UserClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("failed to decode access token: %w", err)
	}
	ret := &UserClaims{}
	if userID, ok := claims["1bb.user_id"].(string); ok {
		ret.UserID = userID
	} else if sub, err := claims.GetSubject(); err == nil {
		ret.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		ret.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ret.Expiry = exp.Time
	}
	return ret, nil
}
