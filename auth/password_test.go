package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashSecret_RoundTrip(t *testing.T) {
	req := require.New(t)

	hash, err := HashSecret("x1")
	req.NoError(err)
	req.Contains(hash, "$argon2id$")

	ok, err := VerifySecret("x1", hash)
	req.NoError(err)
	req.True(ok)

	ok, err = VerifySecret("wrong", hash)
	req.NoError(err)
	req.False(ok)
}

func TestHashSecret_SaltMakesHashesDiffer(t *testing.T) {
	req := require.New(t)

	first, err := HashSecret("x1")
	req.NoError(err)
	second, err := HashSecret("x1")
	req.NoError(err)
	req.NotEqual(first, second)
}

func TestVerifySecret_MalformedHash(t *testing.T) {
	req := require.New(t)

	_, err := VerifySecret("x1", "not-a-hash")
	req.ErrorIs(err, ErrMalformedHash)
}
