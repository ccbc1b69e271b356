package codepage

import (
	"errors"
	"fmt"

	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// ErrTypeMismatch is returned when a stored value cannot be produced in the
// requested type.
var ErrTypeMismatch = errors.New("codepage: property type mismatch")

type convKey struct {
	native    nspi.PropType
	requested nspi.PropType
}

type convFunc func(r *Registry, val interface{}, cp uint32) (interface{}, error)

// conversions lists every (native, requested) pair that needs more than a
// copy. Pairs of equal non-string types fall through to a copy.
var conversions = map[convKey]convFunc{
	{nspi.PtypString, nspi.PtypString}:                   toUnicode,
	{nspi.PtypString8, nspi.PtypString}:                  toUnicode,
	{nspi.PtypString, nspi.PtypString8}:                  toEightBit,
	{nspi.PtypString8, nspi.PtypString8}:                 toEightBit,
	{nspi.PtypMultipleString, nspi.PtypMultipleString}:   toUnicodeMulti,
	{nspi.PtypMultipleString8, nspi.PtypMultipleString}:  toUnicodeMulti,
	{nspi.PtypMultipleString, nspi.PtypMultipleString8}:  toEightBitMulti,
	{nspi.PtypMultipleString8, nspi.PtypMultipleString8}: toEightBitMulti,
}

// Converter reconciles stored property values with requested types.
type Converter struct {
	registry *Registry
}

// NewConverter returns a converter backed by registry.
func NewConverter(registry *Registry) *Converter {
	return &Converter{registry: registry}
}

// Registry returns the code page registry.
func (c *Converter) Registry() *Registry {
	return c.registry
}

// ResolveType returns the type a value of native type is produced in when
// the caller asked for requested.
func ResolveType(native, requested nspi.PropType, cp uint32) nspi.PropType {
	if requested != nspi.PtypUnspecified {
		return requested
	}
	switch native {
	case nspi.PtypString, nspi.PtypString8:
		if cp == nspi.CodePageWinUnicode {
			return nspi.PtypString
		}
		return nspi.PtypString8
	case nspi.PtypMultipleString, nspi.PtypMultipleString8:
		if cp == nspi.CodePageWinUnicode {
			return nspi.PtypMultipleString
		}
		return nspi.PtypMultipleString8
	}
	return native
}

// Convert produces stored in the requested type. Strings in stored values
// are Go strings regardless of their native type; 8-bit output is encoded
// with cp. A pair that cannot be converted yields a valueless slot.
func (c *Converter) Convert(stored nspi.PropertyValue, requested nspi.PropType, cp uint32) nspi.PropertyValue {
	native := stored.Tag.Type()
	target := ResolveType(native, requested, cp)
	tag := stored.Tag.WithType(target)

	if fn, ok := conversions[convKey{native, target}]; ok {
		val, err := fn(c.registry, stored.Value, cp)
		if err != nil {
			return nspi.ErrorValue(stored.Tag, nspi.NotSupported)
		}
		return nspi.PropertyValue{Tag: tag, Value: val}
	}

	if native == target {
		return stored.Clone()
	}
	return nspi.ErrorValue(stored.Tag, nspi.NotSupported)
}

// ToStored converts a caller-supplied value to its stored form, decoding
// 8-bit strings with cp. The tag keeps its type.
func (c *Converter) ToStored(v nspi.PropertyValue, cp uint32) (nspi.PropertyValue, error) {
	switch v.Tag.Type() {
	case nspi.PtypString8:
		s, err := c.decodeOne(v.Value, cp)
		if err != nil {
			return nspi.PropertyValue{}, err
		}
		return nspi.PropertyValue{Tag: v.Tag, Value: s}, nil
	case nspi.PtypMultipleString8:
		switch vals := v.Value.(type) {
		case []string:
			return v.Clone(), nil
		case [][]byte:
			out := make([]string, len(vals))
			for i, b := range vals {
				s, err := c.registry.Decode(b, cp)
				if err != nil {
					return nspi.PropertyValue{}, err
				}
				out[i] = s
			}
			return nspi.PropertyValue{Tag: v.Tag, Value: out}, nil
		}
		return nspi.PropertyValue{}, fmt.Errorf("%w: %T for %s", ErrTypeMismatch, v.Value, v.Tag)
	default:
		return v.Clone(), nil
	}
}

// DecodeString decodes an 8-bit caller string with cp.
func (c *Converter) DecodeString(b []byte, cp uint32) (string, error) {
	return c.registry.Decode(b, cp)
}

func (c *Converter) decodeOne(val interface{}, cp uint32) (string, error) {
	switch x := val.(type) {
	case string:
		return x, nil
	case []byte:
		return c.registry.Decode(x, cp)
	}
	return "", fmt.Errorf("%w: %T", ErrTypeMismatch, val)
}

func toUnicode(_ *Registry, val interface{}, _ uint32) (interface{}, error) {
	s, ok := val.(string)
	if !ok {
		return nil, ErrTypeMismatch
	}
	return s, nil
}

func toEightBit(r *Registry, val interface{}, cp uint32) (interface{}, error) {
	s, ok := val.(string)
	if !ok {
		return nil, ErrTypeMismatch
	}
	return r.Encode(s, cp)
}

func toUnicodeMulti(_ *Registry, val interface{}, _ uint32) (interface{}, error) {
	vals, ok := val.([]string)
	if !ok {
		return nil, ErrTypeMismatch
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out, nil
}

func toEightBitMulti(r *Registry, val interface{}, cp uint32) (interface{}, error) {
	vals, ok := val.([]string)
	if !ok {
		return nil, ErrTypeMismatch
	}
	out := make([][]byte, len(vals))
	for i, s := range vals {
		b, err := r.Encode(s, cp)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
