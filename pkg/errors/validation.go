package errors

import (
	"strings"
	"unicode"
)

// maxPathLength bounds paths accepted from the command line.
const maxPathLength = 4096

// ValidatePath rejects empty, overlong and control-character paths before
// they reach the filesystem. Absolute paths and ".." are fine: the CLI reads
// whatever the user points it at.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return New(ErrCodeInvalidPath, "path cannot be empty")
	case len(path) > maxPathLength:
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	case strings.IndexFunc(path, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidPath, "path contains invalid characters")
	}
	return nil
}

// ValidateUploadName checks the file name of a multipart upload. Only the
// extension is ever used, but a name that looks like a path is refused
// outright.
func ValidateUploadName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "file name cannot be empty")
	}
	if err := ValidatePath(name); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "file name %q", name)
	}
	switch {
	case strings.ContainsAny(name, `/\`):
		return New(ErrCodeInvalidInput, "file name cannot contain path separators")
	case strings.Contains(name, ".."):
		return New(ErrCodeInvalidInput, "file name cannot contain path traversal sequences (..)")
	case strings.HasPrefix(name, "."):
		return New(ErrCodeInvalidInput, "file name cannot be a hidden file")
	}
	return nil
}
