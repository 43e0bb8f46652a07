package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cr3t")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, CheckPasswordHash("s3cr3t", hash))
	assert.False(t, CheckPasswordHash("not-s3cr3t", hash))
	assert.False(t, CheckPasswordHash("s3cr3t", "not-a-hash"))
}
