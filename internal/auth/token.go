package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/docdesk/internal/domain"
)

// ErrDecode is returned for tokens that cannot be parsed into claims.
var ErrDecode = errors.New("malformed token")

// Claims describes the JWT payload issued by the backend.
type Claims struct {
	Role       domain.Role           `json:"role"`
	Department *domain.DepartmentRef `json:"department,omitempty"`
	jwt.RegisteredClaims
}

// Expiry returns the exp claim in UTC and whether it is present.
func (c *Claims) Expiry() (time.Time, bool) {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time.UTC(), true
}

// Session projects the claims onto the identity exposed to views.
func (c *Claims) Session() *domain.Session {
	session := &domain.Session{
		Username:   c.Subject,
		Role:       c.Role,
		Department: c.Department,
	}
	if exp, ok := c.Expiry(); ok {
		session.ExpiresAt = &exp
	}
	return session
}

// IsExpired reports whether claims are past their exp at now. Claims
// without exp never expire. Nil claims count as expired.
func IsExpired(claims *Claims, now time.Time) bool {
	if claims == nil {
		return true
	}
	exp, ok := claims.Expiry()
	if !ok {
		return false
	}
	return !now.Before(exp)
}

// Codec decodes bearer tokens without verifying their signature. The
// backend signs; the client only reads.
type Codec struct {
	parser *jwt.Parser
}

// NewCodec builds a codec.
func NewCodec() *Codec {
	return &Codec{parser: jwt.NewParser()}
}

// Decode parses the payload segment of token. The header and signature
// segments must be present but are not read. Any failure, including a
// panic inside the parser, is reported as ErrDecode.
func (c *Codec) Decode(token string) (claims *Claims, err error) {
	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, fmt.Errorf("%w: %v", ErrDecode, r)
		}
	}()

	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrDecode)
	}

	parts := strings.Split(token, ".")
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: expected at least 3 segments, got %d", ErrDecode, len(parts))
	}
	raw, err := c.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrDecode, err)
	}

	decoded := &Claims{}
	if err := json.Unmarshal(raw, decoded); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrDecode, err)
	}
	return decoded, nil
}

// TokenManager issues and validates signed tokens. The fixture backend
// uses it to mint tokens in the same shape as the real backend.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute, now: time.Now}
}

// GenerateToken builds and signs a JWT for the user.
func (tm *TokenManager) GenerateToken(user domain.User) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		Role:       user.Role,
		Department: user.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token, err := tm.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Sign encodes arbitrary claims with HS256.
func (tm *TokenManager) Sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// ParseToken validates the signature and expiry and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
