// Package token implements the stateless password-reset credential.  A
// reset token is derived from the user's current state instead of being
// stored: HMAC-SHA256 keyed by the server secret over the user id, the
// password hash, the last-login timestamp, the issue timestamp and the
// email.  Because the password hash is part of the input, completing a
// reset silently invalidates every token issued before it; no table of
// outstanding requests and no cleanup job are needed.  The trade-off is
// that a single token cannot be revoked without changing user state.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adboard/adboard/internal/model"
)

// Generator mints and checks reset tokens.  Timeout bounds the validity
// window measured from the issue timestamp embedded in the token.
type Generator struct {
	Secret  string
	Timeout time.Duration

	now func() time.Time // overridable in tests
}

func NewGenerator(secret string, timeout time.Duration) *Generator {
	return &Generator{Secret: secret, Timeout: timeout, now: time.Now}
}

// Make returns a token of the form "<base36 timestamp>-<hmac>" for the
// user's current state.
func (g *Generator) Make(u *model.User) string {
	return g.makeAt(u, g.now().UTC().Unix())
}

func (g *Generator) makeAt(u *model.User, ts int64) string {
	return strconv.FormatInt(ts, 36) + "-" + g.signState(u, ts)
}

// Check reports whether the token matches the user's current state and is
// inside the validity window.  Any parse failure, signature mismatch,
// future timestamp or expired timestamp yields false.
func (g *Generator) Check(u *model.User, tok string) bool {
	tsPart, sig, ok := strings.Cut(tok, "-")
	if !ok || sig == "" {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil || ts < 0 {
		return false
	}
	if !hmac.Equal([]byte(sig), []byte(g.signState(u, ts))) {
		return false
	}
	now := g.now().UTC().Unix()
	if ts > now {
		return false
	}
	return time.Duration(now-ts)*time.Second <= g.Timeout
}

// signState binds the token to everything that changes when the password
// is reset or the account logs in.
func (g *Generator) signState(u *model.User, ts int64) string {
	var lastLogin int64
	if u.LastLogin != nil {
		lastLogin = u.LastLogin.UTC().Unix()
	}
	state := fmt.Sprintf("%d:%s:%d:%d:%s", u.ID, u.PasswordHash, lastLogin, ts, u.Email)
	mac := hmac.New(sha256.New, []byte(g.Secret))
	mac.Write([]byte(state))
	// Half the digest keeps the reset URL short while leaving 128 bits of
	// unforgeability.
	return hex.EncodeToString(mac.Sum(nil)[:16])
}

// EncodeUID encodes a user id for transport inside the reset link.  It is
// an encoding, not a signature: anyone can decode it, and integrity is
// enforced by Check against the token instead.
func EncodeUID(id uint64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(id, 10)))
}

// DecodeUID reverses EncodeUID.  Malformed input or a non-numeric payload
// is an error; the caller maps it to an invalid-uid response.
func DecodeUID(s string) (uint64, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("decode uid: %w", err)
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse uid: %w", err)
	}
	return id, nil
}
