package utils // package utils provides helpers for session token creation and validation

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Session tokens are stateless HS256 JWTs: nothing is persisted server
// side, validity is determined purely by signature and embedded expiry.
// Access and refresh tokens share a secret and differ in the `typ` claim
// and their lifetime.  A refresh token can never be used as an access
// token or vice versa.

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned for every validation failure: expired,
// malformed, signature mismatch or wrong token type.  Callers must not be
// able to distinguish a forged token from an expired one.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the validated content of a session token.
type Identity struct {
	UserID  uint64
	Role    string
	IsStaff bool
}

// NewAccessToken signs a short-lived access token for a user.  Claims:
// sub (user id), role, staff, typ, exp and iat.
func NewAccessToken(secret string, userID uint64, role string, isStaff bool, ttlMin int) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   userID,
		"role":  role,
		"staff": isStaff,
		"typ":   TokenTypeAccess,
		"exp":   now.Add(time.Duration(ttlMin) * time.Minute).Unix(),
		"iat":   now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// NewRefreshToken signs a long-lived refresh token.  It carries only the
// subject; role and staff are re-read from the store when it is redeemed,
// so a role change takes effect on the next refresh.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": userID,
		"typ": TokenTypeRefresh,
		"exp": now.Add(time.Duration(ttlDays) * 24 * time.Hour).Unix(),
		"iat": now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates a raw token of the expected type and returns the
// identity it asserts.  All failures collapse into ErrInvalidToken.
func ParseToken(secret, raw, wantType string) (Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject any signing method other than HMAC before touching claims.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != wantType {
		return Identity{}, ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64) // JSON numbers decode as float64
	if !ok || sub <= 0 {
		return Identity{}, ErrInvalidToken
	}
	id := Identity{UserID: uint64(sub)}
	id.Role, _ = claims["role"].(string)
	id.IsStaff, _ = claims["staff"].(bool)
	return id, nil
}
