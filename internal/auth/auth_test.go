// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	v := NewVerifier("test-secret")

	token, err := v.Sign(Caller{UID: "u1", Email: "a@example.com", Role: RoleAdmin}, time.Hour)
	require.NoError(t, err)

	c, err := v.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UID)
	assert.Equal(t, "a@example.com", c.Email)
	assert.True(t, c.IsAdmin())
}

func TestParseDefaultsToSeller(t *testing.T) {
	v := NewVerifier("test-secret")
	token, err := v.Sign(Caller{UID: "u2"}, time.Hour)
	require.NoError(t, err)

	c, err := v.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, RoleSeller, c.Role)
	assert.False(t, c.IsAdmin())
}

func TestParseRejects(t *testing.T) {
	v := NewVerifier("test-secret")

	expired, err := v.Sign(Caller{UID: "u1"}, -time.Minute)
	require.NoError(t, err)
	otherKey, err := NewVerifier("other-secret").Sign(Caller{UID: "u1"}, time.Hour)
	require.NoError(t, err)
	noSubject, err := v.Sign(Caller{}, time.Hour)
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":     "not-a-token",
		"expired":     expired,
		"wrong key":   otherKey,
		"no subject":  noSubject,
		"alg none":    unsigned,
		"empty token": "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def", "abc.def"},
		{"bearer abc", "abc"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		if got := BearerToken(r); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestCallerContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, CallerFrom(ctx))

	c := &Caller{UID: "u1"}
	assert.Same(t, c, CallerFrom(WithCaller(ctx, c)))

	var nilCaller *Caller
	assert.False(t, nilCaller.IsAdmin())
}
