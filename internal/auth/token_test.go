package auth

import (
	"encoding/base64"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/docdesk/internal/domain"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func signClaims(t *testing.T, claims *Claims) string {
	t.Helper()
	token, err := NewTokenManager("test-secret", 60).Sign(claims)
	require.NoError(t, err)
	return token
}

func TestDecodeRoundTrip(t *testing.T) {
	exp := epoch.Add(time.Hour)
	cases := []*Claims{
		{Role: domain.RoleEmployee, RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: jwt.NewNumericDate(exp)}},
		{Role: domain.RoleDeptHead, Department: &domain.DepartmentRef{ID: 7, Name: "Finance"}, RegisteredClaims: jwt.RegisteredClaims{Subject: "bob", ExpiresAt: jwt.NewNumericDate(exp)}},
		{Role: domain.RoleDirector, RegisteredClaims: jwt.RegisteredClaims{Subject: "carol"}},
	}

	codec := NewCodec()
	for _, want := range cases {
		got, err := codec.Decode(signClaims(t, want))
		require.NoError(t, err)
		assert.Equal(t, want.Subject, got.Subject)
		assert.Equal(t, want.Role, got.Role)
		assert.Equal(t, want.Department, got.Department)

		wantExp, wantOK := want.Expiry()
		gotExp, gotOK := got.Expiry()
		assert.Equal(t, wantOK, gotOK)
		assert.Equal(t, wantExp.Unix(), gotExp.Unix())
	}
}

func TestDecodeMalformed(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`["not","a","record"]`))
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

	inputs := []string{
		"",
		"not-a-jwt",
		"a.b",
		"a.%%%.c",
		header + "." + payload + ".sig",
		header + ".bm90LWpzb24.sig",
	}

	codec := NewCodec()
	for _, input := range inputs {
		claims, err := codec.Decode(input)
		assert.Nil(t, claims, input)
		assert.ErrorIs(t, err, ErrDecode, input)
	}
}

func TestDecodeIgnoresSignature(t *testing.T) {
	token := signClaims(t, &Claims{Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{Subject: "dave"}})
	tampered := token[:len(token)-4] + "AAAA"

	claims, err := NewCodec().Decode(tampered)
	require.NoError(t, err)
	assert.Equal(t, "dave", claims.Subject)
}

func TestDecodeIgnoresHeader(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"alice","role":"EMPLOYEE","exp":4102444800}`))
	headers := map[string]string{
		"garbage":     "x",
		"no alg":      base64.RawURLEncoding.EncodeToString([]byte(`{"typ":"JWT"}`)),
		"unknown alg": base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"XYZ"}`)),
		"empty":       "",
	}

	codec := NewCodec()
	for name, header := range headers {
		claims, err := codec.Decode(header + "." + payload + ".sig")
		require.NoError(t, err, name)
		assert.Equal(t, "alice", claims.Subject, name)
		assert.Equal(t, domain.RoleEmployee, claims.Role, name)
		exp, ok := claims.Expiry()
		require.True(t, ok, name)
		assert.Equal(t, int64(4102444800), exp.Unix(), name)
	}
}

func TestDecodeDepartmentAsBareID(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"erin","role":"EMPLOYEE","department":3}`))

	claims, err := NewCodec().Decode(header + "." + payload + ".sig")
	require.NoError(t, err)
	require.NotNil(t, claims.Department)
	assert.Equal(t, int64(3), claims.Department.ID)
}

func TestExpiryIsUTC(t *testing.T) {
	local := epoch.In(time.FixedZone("UTC+3", 3*60*60))
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(local)}}

	exp, ok := claims.Expiry()
	require.True(t, ok)
	assert.Equal(t, epoch, exp)
	assert.Equal(t, time.UTC, exp.Location())

	decoded, err := NewCodec().Decode(signClaims(t, claims))
	require.NoError(t, err)
	exp, ok = decoded.Expiry()
	require.True(t, ok)
	assert.Equal(t, epoch, exp)
}

func TestDecodeDepartmentLooseForms(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	cases := map[string]domain.DepartmentRef{
		`{"sub":"erin","department":{"id":"3"}}`: {ID: 3},
		`{"sub":"erin","department":"Legal"}`:    {Name: "Legal"},
	}

	codec := NewCodec()
	for payload, want := range cases {
		claims, err := codec.Decode(header + "." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig")
		require.NoError(t, err, payload)
		require.NotNil(t, claims.Department, payload)
		assert.Equal(t, want, *claims.Department, payload)
	}
}

func TestIsExpired(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(epoch)}}

	assert.False(t, IsExpired(claims, epoch.Add(-time.Second)))
	assert.True(t, IsExpired(claims, epoch), "exp itself is expired")
	assert.True(t, IsExpired(nil, epoch))
	assert.False(t, IsExpired(&Claims{}, epoch.Add(100*365*24*time.Hour)), "no exp never expires")
}

func TestIsExpiredMonotonic(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(epoch)}}

	expiredAt := time.Time{}
	for offset := -5 * time.Second; offset <= 5*time.Second; offset += 250 * time.Millisecond {
		now := epoch.Add(offset)
		expired := IsExpired(claims, now)
		if !expiredAt.IsZero() {
			assert.True(t, expired, "expired at %v but not at %v", expiredAt, now)
		}
		if expired && expiredAt.IsZero() {
			expiredAt = now
		}
	}
	assert.Equal(t, epoch, expiredAt)
}

func TestClaimsSession(t *testing.T) {
	exp := epoch.Add(time.Hour)
	claims := &Claims{
		Role:             domain.RoleEmployee,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: jwt.NewNumericDate(exp)},
	}

	session := claims.Session()
	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, domain.RoleEmployee, session.Role)
	assert.Nil(t, session.Department)
	require.NotNil(t, session.ExpiresAt)
	assert.Equal(t, exp.Unix(), session.ExpiresAt.Unix())
}

func TestTokenManagerParseRejectsExpired(t *testing.T) {
	manager := NewTokenManager("secret", 1)
	manager.now = func() time.Time { return epoch }

	token, expiresAt, err := manager.GenerateToken(domain.User{Username: "alice", Role: domain.RoleEmployee})
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(time.Minute), expiresAt)

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)

	manager.now = func() time.Time { return epoch.Add(2 * time.Minute) }
	_, err = manager.ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = NewTokenManager("other", 1).ParseToken(token)
	assert.Error(t, err)
}
