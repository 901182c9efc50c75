package uploadsigner

import (
	"path"
	"strings"
)

var viewableImageExtensions = map[string]struct{}{
	"jpeg": {},
	"jpg":  {},
	"gif":  {},
	"png":  {},
	"svg":  {},
}

// IsViewableImage reports whether filename has an extension every supported
// browser renders natively. Only the extension is inspected.
func IsViewableImage(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	_, ok := viewableImageExtensions[ext]
	return ok
}

// ShouldIncludeThumbnail is true for viewable images uploaded from browsers
// that cannot render a client-side preview
func ShouldIncludeThumbnail(filename string, isBrowserPreviewCapable bool) bool {
	return !isBrowserPreviewCapable && IsViewableImage(filename)
}
