package hashutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheBoringRats/ratcrowler/pkg/hashutil"
)

func TestContentHash_Deterministic(t *testing.T) {
	body := []byte("<html><body>hello</body></html>")
	assert.Equal(t, hashutil.ContentHash(body), hashutil.ContentHash(body))
}

func TestContentHash_SingleByteChange(t *testing.T) {
	a := []byte("<html><body>hello</body></html>")
	b := append([]byte(nil), a...)
	b[10] ^= 1

	assert.NotEqual(t, hashutil.ContentHash(a), hashutil.ContentHash(b))
}

func TestContentHash_IsSHA256Hex(t *testing.T) {
	got := hashutil.ContentHash([]byte(""))
	// SHA-256 of the empty string is a well-known value.
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", got)
}

func TestHashBytes(t *testing.T) {
	data := []byte("payload")

	sha, err := hashutil.HashBytes(data, hashutil.HashAlgoSHA256)
	require.NoError(t, err)
	assert.Len(t, sha, 64)

	b3, err := hashutil.HashBytes(data, hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)
	assert.Len(t, b3, 64)
	assert.NotEqual(t, sha, b3)

	_, err = hashutil.HashBytes(data, "md5")
	assert.Error(t, err)
}

func TestKey_DistinguishesTupleBoundaries(t *testing.T) {
	// ("ab","c") and ("a","bc") must not collide.
	assert.NotEqual(t, hashutil.Key("ab", "c"), hashutil.Key("a", "bc"))
	assert.Equal(t, hashutil.Key("a", "b", "c"), hashutil.Key("a", "b", "c"))
}
