package api

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrPathTraversal is returned when path traversal is detected
	ErrPathTraversal = errors.New("path traversal detected")
	// ErrInvalidPath is returned when the path is invalid
	ErrInvalidPath = errors.New("invalid path")
	// ErrPathOutsideBase is returned when path escapes base directory
	ErrPathOutsideBase = errors.New("path outside allowed directory")
)

// maxPathLength bounds user-supplied file names.
const maxPathLength = 4096

// ResolvePath turns a client-supplied file name into a path to open. With
// an empty root the viewer may open any local file and userPath is only
// cleaned. Otherwise userPath must be relative and stay inside root.
//
// Security considerations:
//   - CWE-22: Improper Limitation of a Pathname to a Restricted Directory ('Path Traversal')
func ResolvePath(root, userPath string) (string, error) {
	if userPath == "" {
		return "", fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}
	if len(userPath) > maxPathLength {
		return "", fmt.Errorf("%w: path longer than %d bytes", ErrInvalidPath, maxPathLength)
	}
	if strings.ContainsRune(userPath, 0) {
		return "", fmt.Errorf("%w: path contains a null byte", ErrInvalidPath)
	}
	if root == "" {
		return filepath.Clean(userPath), nil
	}

	if strings.Contains(userPath, "..") {
		return "", fmt.Errorf("%w: path contains '..'", ErrPathTraversal)
	}
	cleanPath := filepath.Clean(userPath)
	if filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("%w: absolute paths not allowed", ErrInvalidPath)
	}

	absBase, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath := filepath.Join(absBase, cleanPath)

	// filepath.Rel rather than a prefix test, so "/data2" is not inside "/data".
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path escapes base directory", ErrPathOutsideBase)
	}
	return absPath, nil
}

var digestPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ValidateDigest checks that id is a hex BLAKE3-256 digest, optionally
// followed by ":" and an encoding label, as used for snapshot keys.
func ValidateDigest(id string) error {
	digest, label, _ := strings.Cut(id, ":")
	if !digestPattern.MatchString(digest) {
		return fmt.Errorf("%w: %q is not a digest", ErrInvalidPath, id)
	}
	if strings.ContainsAny(label, `/\`) {
		return fmt.Errorf("%w: encoding label cannot contain path separators", ErrInvalidPath)
	}
	return nil
}
