package uploadsigner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsViewableImage(t *testing.T) {
	for _, name := range []string{"a.jpeg", "a.jpg", "a.gif", "a.png", "a.svg", "PHOTO.JPG", "dir.v2/x.Png"} {
		assert.True(t, IsViewableImage(name), name)
	}
	for _, name := range []string{"a.pdf", "a.webp", "a.tiff", "png", "", "a.png.exe", "a."} {
		assert.False(t, IsViewableImage(name), name)
	}
}

func TestShouldIncludeThumbnail(t *testing.T) {
	assert.True(t, ShouldIncludeThumbnail("photo.jpg", false))
	assert.False(t, ShouldIncludeThumbnail("photo.jpg", true))
	assert.False(t, ShouldIncludeThumbnail("report.pdf", false))
	assert.False(t, ShouldIncludeThumbnail("report.pdf", true))
}
