package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	stderrors "errors"

	"chat-hub/errors"
)

func TestDirectory_ClaimIsExclusive(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()
	dir.Attach("s1")
	dir.Attach("s2")

	req.NoError(dir.Claim("s1", "alice"))
	err := dir.Claim("s2", "alice")
	req.Error(err)
	req.True(stderrors.Is(err, errors.ErrValidation))

	// The same session may re-claim its own nickname.
	req.NoError(dir.Claim("s1", "alice"))
}

func TestDirectory_RenameFreesOldNickname(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()
	dir.Attach("s1")
	dir.Attach("s2")

	req.NoError(dir.Claim("s1", "alice"))
	req.NoError(dir.Claim("s1", "alicia"))
	req.NoError(dir.Claim("s2", "alice"))

	id, ok := dir.Resolve("alicia")
	req.True(ok)
	req.Equal("s1", string(id))
}

func TestDirectory_ReleaseDropsMappings(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()
	dir.Attach("s1")
	req.NoError(dir.Claim("s1", "alice"))

	dir.Release("s1")
	_, ok := dir.Resolve("alice")
	req.False(ok)
	_, ok = dir.Session("s1")
	req.False(ok)
	req.Equal(0, dir.Count())
}
