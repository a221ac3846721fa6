package utils

import "strings"

// FormBool converts a checkbox/radio form value to a bool.  This is the only
// truthy token set in the application; handlers must not re-implement their
// own coercion.
func FormBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "true", "1", "on":
		return true
	}
	return false
}

// NormalizeAvailability collapses a submitted availability value onto the
// two symbolic states stored in the database.  Anything that is not exactly
// available reads as not available.
func NormalizeAvailability(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), "Y") {
		return "Y"
	}
	return "N"
}
