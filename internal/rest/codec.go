package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// ErrUnsupportedValue is returned for tags whose type has no JSON form.
var ErrUnsupportedValue = errors.New("rest: unsupported value type")

// decodeValue reads v into a property value whose Go type matches the tag
// type. A missing or null value yields a nil Value.
func decodeValue(v Value) (nspi.PropertyValue, error) {
	out := nspi.PropertyValue{Tag: v.Tag}
	if len(v.Value) == 0 || string(v.Value) == "null" {
		return out, nil
	}

	var (
		dst interface{}
		err error
	)
	switch v.Tag.Type() {
	case nspi.PtypInteger16:
		var x int16
		err = json.Unmarshal(v.Value, &x)
		dst = x
	case nspi.PtypInteger32:
		var x int32
		err = json.Unmarshal(v.Value, &x)
		dst = x
	case nspi.PtypBoolean:
		var x bool
		err = json.Unmarshal(v.Value, &x)
		dst = x
	case nspi.PtypErrorCode:
		var x uint32
		err = json.Unmarshal(v.Value, &x)
		dst = nspi.ErrorCode(x)
	case nspi.PtypString:
		var x string
		err = json.Unmarshal(v.Value, &x)
		dst = x
	case nspi.PtypString8, nspi.PtypBinary, nspi.PtypGUID:
		var x []byte
		err = json.Unmarshal(v.Value, &x)
		dst = x
	case nspi.PtypTime:
		var x time.Time
		err = json.Unmarshal(v.Value, &x)
		dst = x
	case nspi.PtypMultipleInt32:
		var x []int32
		err = json.Unmarshal(v.Value, &x)
		dst = x
	case nspi.PtypMultipleString:
		var x []string
		err = json.Unmarshal(v.Value, &x)
		dst = x
	case nspi.PtypMultipleString8, nspi.PtypMultipleBinary:
		var x [][]byte
		err = json.Unmarshal(v.Value, &x)
		dst = x
	default:
		return nspi.PropertyValue{}, fmt.Errorf("%w: %s", ErrUnsupportedValue, v.Tag.Type())
	}
	if err != nil {
		return nspi.PropertyValue{}, fmt.Errorf("rest: value for %s: %w", v.Tag, err)
	}
	out.Value = dst
	return out, nil
}

// decodeRow reads every value of a row.
func decodeRow(values []Value) (nspi.PropertyRow, error) {
	row := make(nspi.PropertyRow, 0, len(values))
	for _, v := range values {
		pv, err := decodeValue(v)
		if err != nil {
			return nil, err
		}
		row = append(row, pv)
	}
	return row, nil
}
