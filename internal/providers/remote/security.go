package remote

import (
	"path"
	"strings"

	"github.com/relayforge/relayforge/internal/toolkit"
)

// allowedExtensions mirrors the write_file whitelist: source, markup,
// and plain-text formats a deploy/config workflow would touch.
var allowedExtensions = map[string]bool{
	".py": true, ".txt": true, ".js": true, ".html": true, ".css": true,
	".json": true, ".md": true, ".yml": true, ".yaml": true, ".sh": true, ".conf": true,
}

// rejectTraversal rejects ".." segments and absolute paths, the
// traversal check shared by every path-bearing remote tool.
func rejectTraversal(filename string) error {
	if strings.Contains(filename, "..") || strings.HasPrefix(filename, "/") {
		return toolkit.ErrPathTraversal
	}
	return nil
}

// validateFilename rejects path traversal, absolute paths, and
// extensions outside allowedExtensions, returning the filename
// unchanged when it passes. Used only by write_file: extensions are
// not restricted for reads or directory listings.
func validateFilename(filename string) (string, error) {
	if err := rejectTraversal(filename); err != nil {
		return "", err
	}
	ext := strings.ToLower(path.Ext(filename))
	if ext != "" && !allowedExtensions[ext] {
		return "", toolkit.ErrForbiddenExtension
	}
	return filename, nil
}
