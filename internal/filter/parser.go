package filter

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// Parser errors
var (
	ErrEmptyFilter      = errors.New("filter: empty filter")
	ErrInvalidFilter    = errors.New("filter: invalid filter syntax")
	ErrUnbalancedParens = errors.New("filter: unbalanced parentheses")
	ErrMissingProperty  = errors.New("filter: missing property name")
	ErrUnknownProperty  = errors.New("filter: unknown property")
	ErrBadValue         = errors.New("filter: bad value")
)

// Parse parses a restriction written in filter syntax:
//   - (Prop=value)     - property equality
//   - (Prop=*)         - existence
//   - (Prop=val*)      - prefix content match, case-insensitive
//   - (Prop=*val*)     - substring content match, case-insensitive
//   - (Prop=a*b)       - pattern match
//   - (Prop>=value)    - greater or equal
//   - (Prop<=value)    - less or equal
//   - (Prop~=value)    - loose full string match
//   - (&(f1)(f2)...)   - AND
//   - (|(f1)(f2)...)   - OR
//   - (!(filter))      - NOT
func Parse(filterStr string) (*Restriction, error) {
	filterStr = strings.TrimSpace(filterStr)
	if filterStr == "" {
		return nil, ErrEmptyFilter
	}

	return parseFilter(filterStr)
}

func parseFilter(s string) (*Restriction, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyFilter
	}

	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		if strings.Contains(s, "(") {
			return nil, ErrInvalidFilter
		}
		s = "(" + s + ")"
	}

	inner := s[1 : len(s)-1]
	if inner == "" {
		return nil, ErrEmptyFilter
	}

	switch inner[0] {
	case '&':
		children, err := parseFilterList(inner[1:])
		if err != nil {
			return nil, err
		}
		return NewAnd(children...), nil
	case '|':
		children, err := parseFilterList(inner[1:])
		if err != nil {
			return nil, err
		}
		return NewOr(children...), nil
	case '!':
		child, err := parseFilter(inner[1:])
		if err != nil {
			return nil, err
		}
		return NewNot(child), nil
	default:
		return parseSimpleFilter(inner)
	}
}

func parseFilterList(s string) ([]*Restriction, error) {
	var filters []*Restriction
	s = strings.TrimSpace(s)

	for len(s) > 0 {
		if s[0] != '(' {
			return nil, ErrInvalidFilter
		}

		depth := 0
		end := -1
		for i, c := range s {
			if c == '(' {
				depth++
			} else if c == ')' {
				depth--
				if depth == 0 {
					end = i
					break
				}
			}
		}
		if end == -1 {
			return nil, ErrUnbalancedParens
		}

		f, err := parseFilter(s[:end+1])
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)

		s = strings.TrimSpace(s[end+1:])
	}

	if len(filters) == 0 {
		return nil, ErrInvalidFilter
	}
	return filters, nil
}

func parseSimpleFilter(s string) (*Restriction, error) {
	for _, op := range []struct {
		token string
		relop Relop
	}{
		{">=", RelopGE},
		{"<=", RelopLE},
	} {
		if idx := strings.Index(s, op.token); idx >= 0 {
			tag, err := lookupTag(s[:idx])
			if err != nil {
				return nil, err
			}
			v, err := typedValue(tag, s[idx+2:])
			if err != nil {
				return nil, err
			}
			return NewProperty(tag, op.relop, v), nil
		}
	}

	if idx := strings.Index(s, "~="); idx >= 0 {
		tag, err := lookupTag(s[:idx])
		if err != nil {
			return nil, err
		}
		if !tag.Type().IsString() {
			return nil, fmt.Errorf("%w: loose match on %s", ErrBadValue, tag)
		}
		return NewContent(tag, FLFullString|FLLoose, s[idx+2:]), nil
	}

	idx := strings.Index(s, "=")
	if idx < 0 {
		return nil, ErrInvalidFilter
	}
	tag, err := lookupTag(s[:idx])
	if err != nil {
		return nil, err
	}
	value := s[idx+1:]

	if value == "*" {
		return NewExist(tag), nil
	}
	if strings.Contains(value, "*") {
		return parseWildcard(tag, value)
	}

	v, err := typedValue(tag, value)
	if err != nil {
		return nil, err
	}
	return NewProperty(tag, RelopEQ, v), nil
}

// parseWildcard maps "val*" and "*val*" to content restrictions and any
// other pattern to a like comparison.
func parseWildcard(tag nspi.PropTag, value string) (*Restriction, error) {
	if !tag.Type().IsString() {
		return nil, fmt.Errorf("%w: wildcard on %s", ErrBadValue, tag)
	}

	parts := strings.Split(value, "*")
	switch {
	case len(parts) == 2 && parts[0] != "" && parts[1] == "":
		return NewContent(tag, FLPrefix|FLIgnoreCase, parts[0]), nil
	case len(parts) == 3 && parts[0] == "" && parts[1] != "" && parts[2] == "":
		return NewContent(tag, FLSubstring|FLIgnoreCase, parts[1]), nil
	}

	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return NewProperty(tag, RelopRE, "^"+strings.Join(quoted, ".*")+"$"), nil
}

func lookupTag(name string) (nspi.PropTag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrMissingProperty
	}
	tag, ok := nspi.TagByName(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}
	return tag, nil
}

// typedValue converts filter text to the stored form of tag's type.
func typedValue(tag nspi.PropTag, s string) (interface{}, error) {
	switch tag.Type() {
	case nspi.PtypString, nspi.PtypString8, nspi.PtypMultipleString, nspi.PtypMultipleString8:
		return s, nil
	case nspi.PtypInteger32, nspi.PtypMultipleInt32:
		n, err := strconv.ParseInt(s, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		return int32(n), nil
	case nspi.PtypInteger16:
		n, err := strconv.ParseInt(s, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		return int16(n), nil
	case nspi.PtypBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		return b, nil
	case nspi.PtypBinary, nspi.PtypMultipleBinary:
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s values cannot be written as text", ErrBadValue, tag.Type())
}
