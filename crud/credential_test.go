package crud

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCredentialStore_HashAndVerify(t *testing.T) {
	cs := NewCredentialStore("pepper", bcrypt.MinCost)

	hash, err := cs.Hash("secret-password")
	require.NoError(t, err)
	assert.NotContains(t, hash, "secret-password")
	assert.True(t, cs.Verify("secret-password", hash))
	assert.False(t, cs.Verify("wrong-password", hash))
	assert.False(t, cs.Verify("secret-password", "not-a-hash"))

	other, err := cs.Hash("secret-password")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes of the same password must be salted")
}

func TestCredentialStore_PepperMatters(t *testing.T) {
	hash, err := NewCredentialStore("one", bcrypt.MinCost).Hash("secret-password")
	require.NoError(t, err)
	assert.False(t, NewCredentialStore("two", bcrypt.MinCost).Verify("secret-password", hash))
}

func TestCredentialStore_DefaultsAndLimits(t *testing.T) {
	cs := NewCredentialStore("pepper", 0)
	assert.Equal(t, bcrypt.DefaultCost, cs.cost)
	assert.Equal(t, 72-len("pepper"), cs.maxPasswordBytes())

	_, err := NewCredentialStore("", bcrypt.MinCost).Hash(strings.Repeat("a", 73))
	assert.Error(t, err)

	assert.NotPanics(t, func() { cs.VerifyDummy("whatever") })
}
