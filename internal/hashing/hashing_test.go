package hashing

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func hashers() map[string]Hasher {
	return map[string]Hasher{
		"bcrypt":   NewBcrypt(bcrypt.MinCost),
		"argon2id": &Argon2id{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16},
	}
}

func TestHasher_RoundTrip(t *testing.T) {
	for name, h := range hashers() {
		t.Run(name, func(t *testing.T) {
			hash, err := h.Hash([]byte("correct horse"))
			require.NoError(t, err)
			assert.NotContains(t, hash, "correct horse")

			ok, err := h.Verify([]byte("correct horse"), hash)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = h.Verify([]byte("wrong horse"), hash)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestHasher_Salted(t *testing.T) {
	for name, h := range hashers() {
		t.Run(name, func(t *testing.T) {
			a, err := h.Hash([]byte("pw"))
			require.NoError(t, err)
			b, err := h.Hash([]byte("pw"))
			require.NoError(t, err)
			assert.NotEqual(t, a, b)
		})
	}
}

func TestHasher_CrossVerify(t *testing.T) {
	hs := hashers()

	hash, err := hs["bcrypt"].Hash([]byte("pw"))
	require.NoError(t, err)
	ok, err := hs["argon2id"].Verify([]byte("pw"), hash)
	require.NoError(t, err)
	assert.True(t, ok)

	hash, err = hs["argon2id"].Hash([]byte("pw"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$"))
	ok, err = hs["bcrypt"].Verify([]byte("pw"), hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBcrypt_TooLong(t *testing.T) {
	_, err := NewBcrypt(bcrypt.MinCost).Hash([]byte(strings.Repeat("x", 73)))
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestVerify_Malformed(t *testing.T) {
	h := NewArgon2id()

	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=1,t=1,p=1$onlysalt",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
		"$argon2id$v=19$m=1,t=1,p=1$!!!$a2V5",
	} {
		ok, err := h.Verify([]byte("pw"), encoded)
		assert.False(t, ok, encoded)
		assert.ErrorIs(t, err, ErrUnknownFormat, encoded)
	}
}

func TestNew(t *testing.T) {
	h, err := New("bcrypt", 0)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, h.(*Bcrypt).Cost)

	h, err = New("argon2id", 0)
	require.NoError(t, err)
	assert.IsType(t, &Argon2id{}, h)

	_, err = New("md5", 0)
	require.Error(t, err)
}
