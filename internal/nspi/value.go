package nspi

import (
	"bytes"
	"time"
)

// PropertyValue pairs a tag with its value. The Go type of Value depends on
// the tag type:
//
//	PtypInteger16        int16
//	PtypInteger32        int32
//	PtypBoolean          bool
//	PtypString           string
//	PtypString8          []byte (wire form) or string (stored form)
//	PtypBinary           []byte
//	PtypGUID             []byte (16 bytes)
//	PtypTime             time.Time
//	PtypErrorCode        ErrorCode
//	PtypMultipleInt32    []int32
//	PtypMultipleString   []string
//	PtypMultipleString8  [][]byte (wire form) or []string (stored form)
//	PtypMultipleBinary   [][]byte
type PropertyValue struct {
	Tag   PropTag     `json:"tag"`
	Value interface{} `json:"value,omitempty"`
}

// ErrorValue returns the valueless form of tag.
func ErrorValue(tag PropTag, code ErrorCode) PropertyValue {
	return PropertyValue{Tag: tag.WithType(PtypErrorCode), Value: code}
}

// IsError reports whether the value marks a missing property.
func (v PropertyValue) IsError() bool {
	return v.Tag.Type() == PtypErrorCode
}

// Clone returns a deep copy of the value.
func (v PropertyValue) Clone() PropertyValue {
	return PropertyValue{Tag: v.Tag, Value: cloneValue(v.Value)}
}

// Equal reports whether two values have the same tag and content.
func (v PropertyValue) Equal(o PropertyValue) bool {
	if v.Tag != o.Tag {
		return false
	}
	return valuesEqual(v.Value, o.Value)
}

func cloneValue(val interface{}) interface{} {
	switch x := val.(type) {
	case []byte:
		return cloneBytes(x)
	case []string:
		out := make([]string, len(x))
		copy(out, x)
		return out
	case [][]byte:
		out := make([][]byte, len(x))
		for i, b := range x {
			out[i] = cloneBytes(b)
		}
		return out
	case []int32:
		out := make([]int32, len(x))
		copy(out, x)
		return out
	default:
		return val
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func valuesEqual(a, b interface{}) bool {
	switch x := a.(type) {
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	case []string:
		y, ok := b.([]string)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if x[i] != y[i] {
				return false
			}
		}
		return true
	case [][]byte:
		y, ok := b.([][]byte)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !bytes.Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case []int32:
		y, ok := b.([]int32)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if x[i] != y[i] {
				return false
			}
		}
		return true
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	default:
		return a == b
	}
}

// PropertyRow is an ordered list of property values.
type PropertyRow []PropertyValue

// Find returns the value whose property ID matches tag.
func (r PropertyRow) Find(tag PropTag) (PropertyValue, bool) {
	for _, v := range r {
		if v.Tag.ID() == tag.ID() {
			return v, true
		}
	}
	return PropertyValue{}, false
}

// HasErrors reports whether any slot is valueless.
func (r PropertyRow) HasErrors() bool {
	for _, v := range r {
		if v.IsError() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the row.
func (r PropertyRow) Clone() PropertyRow {
	if r == nil {
		return nil
	}
	out := make(PropertyRow, len(r))
	for i, v := range r {
		out[i] = v.Clone()
	}
	return out
}

// PropertyRowSet is an ordered list of rows.
type PropertyRowSet []PropertyRow
