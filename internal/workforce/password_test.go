// internal/workforce/password_test.go
package workforce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, salt, err := hashPassword("SecurePass123!")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	ok, err := verifyPassword("SecurePass123!", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyPassword("WrongPass123!", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordUsesUniqueSalts(t *testing.T) {
	_, salt1, err := hashPassword("same-password")
	require.NoError(t, err)
	_, salt2, err := hashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, salt1, salt2)
}

func TestNormalizeSpecialization(t *testing.T) {
	assert.Equal(t, SpecializationMechanical, NormalizeSpecialization("mechanical"))
	assert.Equal(t, SpecializationOther, NormalizeSpecialization("plumbing"))
	assert.Equal(t, SpecializationOther, NormalizeSpecialization(""))
}
