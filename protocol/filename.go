package protocol

import (
	"strings"
	"unicode"
)

// ValidateFilename checks that name fits the device filesystem's 8.3 rule:
// a base name of 1 to MaxBaseNameLength characters, optionally followed by a
// period and an extension of 1 to MaxExtensionLength characters. Path
// separators, further periods, whitespace and control characters are rejected.
func ValidateFilename(name string) error {
	if name == "" {
		return &ValidationError{Name: name, Reason: "filename cannot be empty"}
	}
	if strings.ContainsAny(name, `/\`) {
		return &ValidationError{Name: name, Reason: "filename cannot contain path separators"}
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return &ValidationError{Name: name, Reason: "filename cannot contain whitespace or control characters"}
		}
	}

	base, ext, hasExt := strings.Cut(name, ".")
	if hasExt && strings.Contains(ext, ".") {
		return &ValidationError{Name: name, Reason: "filename can contain at most one period"}
	}
	if base == "" {
		return &ValidationError{Name: name, Reason: "base name cannot be empty"}
	}
	if len(base) > MaxBaseNameLength {
		return &ValidationError{Name: name, Reason: "base name longer than 8 characters"}
	}
	if hasExt && ext == "" {
		return &ValidationError{Name: name, Reason: "extension cannot be empty"}
	}
	if len(ext) > MaxExtensionLength {
		return &ValidationError{Name: name, Reason: "extension longer than 3 characters"}
	}
	return nil
}
