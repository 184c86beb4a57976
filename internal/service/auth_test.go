package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	s := &authService{}

	hash, err := s.hashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	assert.True(t, s.verifyPassword(hash, "correct horse battery staple"))
	assert.False(t, s.verifyPassword(hash, "wrong password"))
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	s := &authService{}

	a, err := s.hashPassword("same")
	require.NoError(t, err)
	b, err := s.hashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsGarbage(t *testing.T) {
	s := &authService{}

	assert.False(t, s.verifyPassword("", "x"))
	assert.False(t, s.verifyPassword("not-a-hash", "x"))
	assert.False(t, s.verifyPassword("$argon2id$v=19$m=65536,t=1,p=4$!!!$!!!", "x"))
}

func TestGenerateTokenIsURLSafeAndUnique(t *testing.T) {
	a, err := generateToken()
	require.NoError(t, err)
	b, err := generateToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "/")
}
