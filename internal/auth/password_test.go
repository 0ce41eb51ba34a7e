package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/soundwave/internal/entities"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, CheckPassword("correct horse", hash))
	assert.ErrorIs(t, CheckPassword("wrong horse", hash), ErrInvalidPassword)
}

func TestHashPassword_Length(t *testing.T) {
	_, err := HashPassword("ab", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.ErrorIs(t, err, entities.ErrInvalidInput)

	_, err = HashPassword(strings.Repeat("a", 73), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestGenerateSecret(t *testing.T) {
	first, err := GenerateSecret()
	require.NoError(t, err)
	second, err := GenerateSecret()
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}
