package filter

import (
	"bytes"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// matchContent applies a content restriction's fuzzy level to one value.
func matchContent(value, pattern []byte, fuzzyLevel uint32) bool {
	if fuzzyLevel&FLIgnoreNonSpace != 0 {
		value = stripNonSpacing(value)
		pattern = stripNonSpacing(pattern)
	}
	if fuzzyLevel&FLLoose != 0 {
		value = normalizeLoose(value)
		pattern = normalizeLoose(pattern)
	} else if fuzzyLevel&FLIgnoreCase != 0 {
		value = bytes.ToLower(value)
		pattern = bytes.ToLower(pattern)
	}

	switch fuzzyLevel & 0xFFFF {
	case FLSubstring:
		return bytes.Contains(value, pattern)
	case FLPrefix:
		return bytes.HasPrefix(value, pattern)
	default:
		return bytes.Equal(value, pattern)
	}
}

// normalizeLoose lowercases a value and collapses runs of whitespace to a
// single space.
func normalizeLoose(value []byte) []byte {
	s := strings.ToLower(string(value))

	var result strings.Builder
	inWhitespace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inWhitespace {
				result.WriteRune(' ')
				inWhitespace = true
			}
		} else {
			result.WriteRune(r)
			inWhitespace = false
		}
	}

	return []byte(strings.TrimSpace(result.String()))
}

// stripNonSpacing removes combining marks, so "Zoë" matches "Zoe".
func stripNonSpacing(value []byte) []byte {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.Bytes(t, value)
	if err != nil {
		return value
	}
	return out
}

// contentBytes returns the byte form of a single string or binary value.
func contentBytes(v interface{}) ([]byte, bool) {
	switch x := v.(type) {
	case string:
		return []byte(x), true
	case []byte:
		return x, true
	}
	return nil, false
}

// scalars flattens a single or multi-valued stored value.
func scalars(v interface{}) []interface{} {
	switch x := v.(type) {
	case []string:
		out := make([]interface{}, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case [][]byte:
		out := make([]interface{}, len(x))
		for i, b := range x {
			out[i] = b
		}
		return out
	case []int32:
		out := make([]interface{}, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out
	default:
		return []interface{}{v}
	}
}

// compareValues orders two scalar values of the same kind. Strings compare
// case-insensitively. The second result is false when the kinds differ.
func compareValues(a, b interface{}) (int, bool) {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(strings.ToLower(x), strings.ToLower(y)), true
	case []byte:
		y, ok := b.([]byte)
		if !ok {
			return 0, false
		}
		return bytes.Compare(x, y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	}

	xi, ok := asInt64(a)
	if !ok {
		return 0, false
	}
	yi, ok := asInt64(b)
	if !ok {
		return 0, false
	}
	switch {
	case xi < yi:
		return -1, true
	case xi > yi:
		return 1, true
	default:
		return 0, true
	}
}

func asInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case int:
		return int64(x), true
	}
	return 0, false
}
