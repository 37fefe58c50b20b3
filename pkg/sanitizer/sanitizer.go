// Package sanitizer makes file and folder names comply with Windows naming
// restrictions and resolves name collisions within a single directory.
// Rules follow the Microsoft file naming documentation: reserved characters,
// control characters, trailing dots and spaces, reserved device names, and
// the 255-character component limit.
package sanitizer

import (
	"fmt"
	"path"
	"strings"
)

// MaxNameLength is the maximum length of a single path component, in runes.
const MaxNameLength = 255

// DefaultSubstitute replaces invalid characters unless overridden.
const DefaultSubstitute = '_'

// reservedDeviceNames are disallowed as a base name regardless of extension,
// case-insensitive.
var reservedDeviceNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// Result of sanitizing a single name.
type Result struct {
	Valid bool   // true when the input needed no change
	Name  string // sanitized name; equals the input when Valid
}

func isReservedChar(r rune) bool {
	switch r {
	case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
		return true
	}
	return r < 0x20
}

// ValidateSubstitute reports whether r may be used as the replacement
// character. A substitute that is itself subject to replacement or
// stripping would make sanitization non-terminating.
func ValidateSubstitute(r rune) error {
	if isReservedChar(r) || r == '.' || r == ' ' {
		return fmt.Errorf("substitute character %q is not a valid Windows filename character", r)
	}
	return nil
}

// Sanitize maps name to a Windows-compatible replacement. Idempotent:
// sanitizing an already-sanitized name reports Valid.
func Sanitize(name string, substitute rune) Result {
	sanitized := replaceReservedChars(name, substitute)
	sanitized = strings.TrimRight(sanitized, ". ")
	sanitized = fixReservedDeviceName(sanitized, substitute)
	sanitized = truncate(sanitized)
	sanitized = strings.TrimRight(sanitized, ". ")

	if sanitized == "" {
		sanitized = string(substitute)
	}

	return Result{Valid: sanitized == name, Name: sanitized}
}

func replaceReservedChars(name string, substitute rune) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		if isReservedChar(r) {
			b.WriteRune(substitute)
		} else {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// fixReservedDeviceName alters base names matching a reserved device name by
// appending the substitute. Character replacement cannot fix this class: the
// characters are all legal, the name as a whole is not.
func fixReservedDeviceName(name string, substitute rune) string {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)

	if _, ok := reservedDeviceNames[strings.ToUpper(base)]; !ok {
		return name
	}

	return base + string(substitute) + ext
}

// truncate shortens name to MaxNameLength runes, keeping the extension when
// it leaves room for at least one base rune. A truncated base that lands on
// a reserved device name drops trailing runes until it no longer matches.
func truncate(name string) string {
	runes := []rune(name)
	if len(runes) <= MaxNameLength {
		return name
	}

	ext := path.Ext(name)
	extRunes := []rune(ext)
	if len(extRunes) == 0 || len(extRunes) >= MaxNameLength {
		return string(runes[:MaxNameLength])
	}

	base := []rune(strings.TrimSuffix(name, ext))
	base = base[:MaxNameLength-len(extRunes)]
	for {
		if _, ok := reservedDeviceNames[strings.ToUpper(string(base))]; !ok {
			break
		}
		base = base[:len(base)-1]
	}

	return string(base) + ext
}
