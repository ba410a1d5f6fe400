package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"  // secure random number generation
	"encoding/hex" // hex encoding for registration tokens
	"errors"       // sentinel errors for token parsing
	"time"         // expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SessionToken represents a signed HS256 JWT session credential along with
// its expiry. The token string is what gets stored in the auth-token cookie
// and optionally sent as a bearer header.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// SessionClaims are the claims carried by a parsed session token.
type SessionClaims struct {
	UserID uint64
	Email  string
	Role   string
}

// ErrInvalidToken is returned by ParseSessionToken for any token that fails
// signature, expiry or claim-shape validation. Callers should not be more
// specific towards clients.
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionToken builds and signs an HS256 JWT for a user. The JWT carries
// subject (sub), email, role, expiration (exp) and issued at (iat). TTL is
// expressed in hours; the workflow uses a fixed 24 hour session.
func NewSessionToken(secret string, userID uint64, email, role string, ttlHours int) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlHours) * time.Hour)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies a session JWT and extracts its claims. Any
// failure (bad signature, wrong algorithm, expired, malformed claims) is
// collapsed into ErrInvalidToken.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything other than HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64) // JSON numbers decode as float64
	if !ok || sub <= 0 {
		return SessionClaims{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		return SessionClaims{}, ErrInvalidToken
	}
	return SessionClaims{UserID: uint64(sub), Email: email, Role: role}, nil
}

// RegistrationToken is the opaque credential mailed to an approved
// candidate. Only the raw hex string is stored on the application row; it is
// compared verbatim at redemption time.
type RegistrationToken struct {
	Raw string    // 64 hex chars (32 random bytes, 256 bits of entropy)
	Exp time.Time // UTC expiration time
}

// NewRegistrationToken returns a cryptographically random registration token
// and its expiry, ttlDays from now.
func NewRegistrationToken(ttlDays int) (RegistrationToken, error) {
	raw, err := randomHex(32) // 32 bytes -> 64 hex chars
	if err != nil {
		return RegistrationToken{}, err
	}
	return RegistrationToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
