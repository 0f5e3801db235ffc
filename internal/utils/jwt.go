package utils // package utils provides helper functions for token creation and validation

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken represents a signed JWT access token along with its expiry
// and unique identifier.  The JTI is what the revocation set keys on when
// a token is logged out before its natural expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	JTI   string    // unique token identifier (jti claim)
	Exp   time.Time // the UTC expiration time
}

// TokenClaims is the decoded view of an access token that handlers and
// middleware care about.
type TokenClaims struct {
	UserID   uint64
	Username string
	Role     string
	JTI      string
	Exp      time.Time
}

// ErrInvalidToken is returned by ParseAccessToken for malformed, expired
// or wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user.  The claims
// carry the subject (user id), username and role so the frontend can
// render without a second round trip; authorization still re-reads the
// role from the store on every protected request.
func NewAccessToken(secret string, userID uint64, username, role string, ttlMin int) (AccessToken, error) {
	jti, err := randomHex(16)
	if err != nil {
		return AccessToken{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"role":     role,
		"jti":      jti,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, JTI: jti, Exp: exp}, nil
}

// ParseAccessToken validates the signature and expiry of a raw token and
// extracts the claims used across the application.  Only HMAC-signed
// tokens are accepted.
func ParseAccessToken(secret, raw string) (TokenClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return TokenClaims{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, ErrInvalidToken
	}
	out := TokenClaims{}
	if sub, ok := claims["sub"].(float64); ok {
		out.UserID = uint64(sub)
	}
	out.Username, _ = claims["username"].(string)
	out.Role, _ = claims["role"].(string)
	out.JTI, _ = claims["jti"].(string)
	if exp, ok := claims["exp"].(float64); ok {
		out.Exp = time.Unix(int64(exp), 0).UTC()
	}
	return out, nil
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
