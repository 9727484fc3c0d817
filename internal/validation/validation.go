// Package validation checks user-supplied configuration values before they
// reach the filesystem or the network.
package validation

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ValidatePath rejects empty paths, paths that climb out of the working
// tree and paths with control characters. Absolute paths are allowed.
func ValidatePath(p string) error {
	if p == "" {
		return fmt.Errorf("path cannot be empty")
	}

	cleanPath := filepath.Clean(p)
	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return fmt.Errorf("path traversal detected: %s", p)
		}
	}

	if strings.ContainsAny(cleanPath, "\x00\n\r") {
		return fmt.Errorf("path contains control characters: %q", p)
	}
	return nil
}

// ValidateHost rejects listen hosts carrying shell or URL metacharacters.
func ValidateHost(host string) error {
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\", "/"}
	for _, char := range dangerousChars {
		if strings.Contains(host, char) {
			return fmt.Errorf("host contains dangerous character: %s", char)
		}
	}
	return nil
}

// ValidateOriginPattern checks a websocket origin pattern. Patterns match
// the host of the Origin header, so they carry no scheme, and use
// path.Match syntax.
func ValidateOriginPattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("origin pattern cannot be empty")
	}
	if strings.Contains(pattern, "://") {
		return fmt.Errorf("origin pattern %q must be a host, not a URL", pattern)
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid origin pattern %q: %w", pattern, err)
	}
	return nil
}

// ValidateName accepts identifiers made of letters, digits, '-' and '_'.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	for _, r := range name {
		if !(r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return fmt.Errorf("%q may only contain letters, digits, '-' and '_'", name)
		}
	}
	return nil
}
