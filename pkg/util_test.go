package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesToString(t *testing.T) {
	assert.Equal(t, "test me", BytesToString([]byte("test me")))
	assert.Equal(t, "", BytesToString(nil))
}

func TestGenerateRandomString(t *testing.T) {
	s1, err := GenerateRandomString(35)
	require.NoError(t, err)
	require.NotEmpty(t, s1)

	s2, err := GenerateRandomString(35)
	require.NoError(t, err)
	require.NotEmpty(t, s2)

	// overwhelming probability, not certainty - but if this ever
	// fires, the random source is broken anyway
	assert.NotEqual(t, s1, s2)
}

func TestPathExists(t *testing.T) {
	tempDir := t.TempDir()

	exists, err := PathExists(tempDir, true)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = PathExists(tempDir+"/nope", false)
	require.NoError(t, err)
	assert.False(t, exists)

	// a dir is not a file
	exists, err = PathExists(tempDir, false)
	require.NoError(t, err)
	assert.False(t, exists)
}
