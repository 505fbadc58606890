package communities

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidName = errors.New("invalid community name")

// community names: 3-21 chars, alphanumeric plus underscore, can't start with underscore
var nameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_]{2,20}$`)

// NormalizeName canonicalizes a community name for storage and lookup:
// surrounding whitespace and any "r/" or "/r/" prefix are stripped, and the
// result is lowercased. Returns ErrInvalidName for anything that couldn't be
// a real community name, so malformed input is rejected before any network
// or database call.
func NormalizeName(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, "r/")
	if !nameRegex.MatchString(name) {
		return "", ErrInvalidName
	}
	return name, nil
}
