package boltstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KilimcininKorOglu/nspid/internal/directory"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

type objectRecord struct {
	GUID        uuid.UUID     `json:"guid"`
	DN          string        `json:"dn"`
	DisplayType uint32        `json:"displayType"`
	Props       []valueRecord `json:"props"`
}

// valueRecord keeps one field per value shape. Empty slices decode to the
// empty value of the tag type.
type valueRecord struct {
	Tag   nspi.PropTag `json:"tag"`
	Str   *string      `json:"str,omitempty"`
	Strs  []string     `json:"strs,omitempty"`
	Bin   []byte       `json:"bin,omitempty"`
	Bins  [][]byte     `json:"bins,omitempty"`
	Int   *int32       `json:"int,omitempty"`
	Ints  []int32      `json:"ints,omitempty"`
	Short *int16       `json:"short,omitempty"`
	Bool  *bool        `json:"bool,omitempty"`
	Time  *time.Time   `json:"time,omitempty"`
}

func encodeObject(obj *directory.Object) ([]byte, error) {
	rec := objectRecord{
		GUID:        obj.GUID,
		DN:          obj.DN,
		DisplayType: uint32(obj.DisplayType),
	}
	for _, v := range obj.Values() {
		vr, err := encodeValue(v)
		if err != nil {
			return nil, err
		}
		rec.Props = append(rec.Props, vr)
	}
	return json.Marshal(rec)
}

func encodeValue(v nspi.PropertyValue) (valueRecord, error) {
	vr := valueRecord{Tag: v.Tag}
	switch x := v.Value.(type) {
	case string:
		vr.Str = &x
	case []string:
		vr.Strs = x
	case []byte:
		vr.Bin = x
	case [][]byte:
		vr.Bins = x
	case int32:
		vr.Int = &x
	case []int32:
		vr.Ints = x
	case int16:
		vr.Short = &x
	case bool:
		vr.Bool = &x
	case time.Time:
		vr.Time = &x
	default:
		return valueRecord{}, fmt.Errorf("boltstore: cannot encode %T for %s", v.Value, v.Tag)
	}
	return vr, nil
}

func decodeObject(data []byte) (*directory.Object, error) {
	var rec objectRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("boltstore: decode object: %w", err)
	}
	obj := directory.NewObject(rec.DN, nspi.DisplayType(rec.DisplayType))
	obj.GUID = rec.GUID
	for _, vr := range rec.Props {
		obj.Set(nspi.PropertyValue{Tag: vr.Tag, Value: vr.value()})
	}
	return obj, nil
}

func (vr valueRecord) value() interface{} {
	switch {
	case vr.Str != nil:
		return *vr.Str
	case vr.Strs != nil:
		return vr.Strs
	case vr.Bins != nil:
		return vr.Bins
	case vr.Bin != nil:
		return vr.Bin
	case vr.Int != nil:
		return *vr.Int
	case vr.Ints != nil:
		return vr.Ints
	case vr.Short != nil:
		return *vr.Short
	case vr.Bool != nil:
		return *vr.Bool
	case vr.Time != nil:
		return *vr.Time
	}
	return emptyValue(vr.Tag.Type())
}

func emptyValue(t nspi.PropType) interface{} {
	switch t {
	case nspi.PtypMultipleString, nspi.PtypMultipleString8:
		return []string{}
	case nspi.PtypMultipleBinary:
		return [][]byte{}
	case nspi.PtypMultipleInt32:
		return []int32{}
	}
	return []byte{}
}
