package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUploadedID(t *testing.T) {
	assert.True(t, IsUploadedID("abc123def456ghi789jk"))
	assert.True(t, IsUploadedID("0f3c2a9b7d6e4c1a8b5d2e9f0a1b2c3d"))

	assert.False(t, IsUploadedID("abc123"))
	assert.False(t, IsUploadedID("file:///tmp/img.jpg"))
	assert.False(t, IsUploadedID("/var/mobile/photo_0001_abcdefghijkl.jpg"))
	assert.False(t, IsUploadedID("0f3c2a9b-7d6e-4c1a-8b5d-2e9f0a1b2c3d"))
	assert.False(t, IsUploadedID(""))
}
