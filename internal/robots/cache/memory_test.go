package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/robotstxt"

	"github.com/TheBoringRats/ratcrowler/internal/robots/cache"
)

func TestMemoryCache_GetPut(t *testing.T) {
	c := cache.NewMemoryCache()

	_, resolved := c.Get("http://a.test")
	assert.False(t, resolved)

	data, err := robotstxt.FromBytes([]byte("User-agent: *\nDisallow: /x\n"))
	require.NoError(t, err)

	c.Put("http://a.test", data)
	got, resolved := c.Get("http://a.test")
	assert.True(t, resolved)
	assert.Same(t, data, got)
	assert.Equal(t, 1, c.Size())
}

func TestMemoryCache_NilMeansAllowAll(t *testing.T) {
	c := cache.NewMemoryCache()
	c.Put("http://down.test", nil)

	got, resolved := c.Get("http://down.test")
	assert.True(t, resolved, "a failed fetch still marks the origin resolved")
	assert.Nil(t, got)
}
