package props

import (
	"encoding/binary"
	"sort"
	"strings"

	"github.com/KilimcininKorOglu/nspid/internal/codepage"
	"github.com/KilimcininKorOglu/nspid/internal/directory"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// DefaultColumns is the column set used when a table operation does not
// name its columns. DisplayName follows the code page.
var DefaultColumns = nspi.PropTagArray{
	nspi.PidTagAddressBookContainerID,
	nspi.PidTagObjectType,
	nspi.PidTagDisplayType,
	nspi.PidTagDisplayName.WithType(nspi.PtypUnspecified),
	nspi.PidTagPrimaryTelephoneNumber.WithType(nspi.PtypUnspecified),
	nspi.PidTagDepartmentName.WithType(nspi.PtypUnspecified),
	nspi.PidTagOfficeLocation.WithType(nspi.PtypUnspecified),
}

// Options controls how one row is produced.
type Options struct {
	// Flags carries fEphID and fSkipObjects.
	Flags uint32
	// CodePage encodes 8-bit string output.
	CodePage uint32
	// ContainerID is reported in PidTagAddressBookContainerId for
	// objects that are not containers themselves.
	ContainerID uint32
	// UnicodeStrings returns string columns requested without a type as
	// Unicode. Explicit 8-bit requests still use CodePage.
	UnicodeStrings bool
}

// Builder produces property rows.
type Builder struct {
	store     *directory.Store
	converter *codepage.Converter
	serverUID nspi.FlatUID
}

// NewBuilder creates a row builder. serverUID is carried by ephemeral
// entry IDs.
func NewBuilder(store *directory.Store, converter *codepage.Converter, serverUID nspi.FlatUID) *Builder {
	return &Builder{
		store:     store,
		converter: converter,
		serverUID: serverUID,
	}
}

// Converter returns the converter rows are produced with.
func (b *Builder) Converter() *codepage.Converter {
	return b.converter
}

// Row returns the values of tags for obj in the order given. A nil obj
// yields a row in which every slot is valueless.
func (b *Builder) Row(obj *directory.Object, tags nspi.PropTagArray, opts Options) nspi.PropertyRow {
	row := make(nspi.PropertyRow, 0, len(tags))
	for _, tag := range tags {
		row = append(row, b.slot(obj, tag, opts))
	}
	return row
}

// RowForMId looks up mid and returns its row. An MId that cannot be
// located yields a valueless row.
func (b *Builder) RowForMId(mid nspi.MId, tags nspi.PropTagArray, opts Options) nspi.PropertyRow {
	var obj *directory.Object
	if mid.IsObject() {
		obj, _ = b.store.Object(mid)
	}
	return b.Row(obj, tags, opts)
}

// Rows returns one row per MId.
func (b *Builder) Rows(mids []nspi.MId, tags nspi.PropTagArray, opts Options) nspi.PropertyRowSet {
	rows := make(nspi.PropertyRowSet, 0, len(mids))
	for _, mid := range mids {
		rows = append(rows, b.RowForMId(mid, tags, opts))
	}
	return rows
}

func (b *Builder) slot(obj *directory.Object, tag nspi.PropTag, opts Options) nspi.PropertyValue {
	if obj == nil {
		return nspi.ErrorValue(tag, nspi.NotFound)
	}
	if tag.Type() == nspi.PtypEmbeddedTable {
		return nspi.ErrorValue(tag, nspi.NotSupported)
	}
	stored, ok := b.Value(obj, tag, opts)
	if !ok {
		return nspi.ErrorValue(tag, nspi.NotFound)
	}
	requested := tag.Type()
	if opts.UnicodeStrings {
		requested = codepage.ResolveType(stored.Tag.Type(), requested, nspi.CodePageWinUnicode)
	}
	return b.converter.Convert(stored, requested, opts.CodePage)
}

// Value returns the stored form of tag on obj. Computed properties take
// precedence over stored ones.
func (b *Builder) Value(obj *directory.Object, tag nspi.PropTag, opts Options) (nspi.PropertyValue, bool) {
	native, known := nspi.NativeTag(tag)
	if !known {
		v, ok := obj.Get(tag)
		return v, ok
	}

	if v, ok := b.computed(obj, native, opts); ok {
		return nspi.PropertyValue{Tag: native, Value: v}, true
	}
	v, ok := obj.Get(native)
	if !ok || isEmpty(v.Value) {
		return nspi.PropertyValue{}, false
	}
	return v, true
}

func (b *Builder) computed(obj *directory.Object, tag nspi.PropTag, opts Options) (interface{}, bool) {
	switch tag {
	case nspi.PidTagEntryID:
		return b.EntryID(obj, opts.Flags).Bytes(), true
	case nspi.PidTagRecordKey, nspi.PidTagTemplateID:
		return nspi.NewPermanentEntryID(obj.DisplayType, obj.DN).Bytes(), true
	case nspi.PidTagInstanceKey:
		key := make([]byte, 4)
		binary.LittleEndian.PutUint32(key, uint32(obj.MId))
		return key, true
	case nspi.PidTagMappingSignature:
		sig := nspi.NSPIProviderUID
		return sig[:], true
	case nspi.PidTagSearchKey:
		if _, ok := obj.Get(tag); ok {
			return nil, false
		}
		return SearchKey(obj), true
	case nspi.PidTagTransmittableDisplayName, nspi.PidTagAddressBookDisplayNamePrintable:
		if _, ok := obj.Get(tag); ok {
			return nil, false
		}
		name := obj.DisplayName()
		return name, name != ""
	case nspi.PidTagInitialDetailsPane:
		return int32(0), obj.IsAddressable()
	case nspi.PidTagSelectable:
		return true, obj.DisplayType == nspi.DTAddressTemplate
	}

	c, isContainer := b.containerOf(obj)
	if !isContainer {
		if tag == nspi.PidTagAddressBookContainerID {
			return int32(opts.ContainerID), true
		}
		return nil, false
	}
	switch tag {
	case nspi.PidTagAddressBookContainerID:
		return int32(c.ID), true
	case nspi.PidTagContainerFlags:
		return int32(c.Flags), true
	case nspi.PidTagDepth:
		return int32(c.Depth), true
	case nspi.PidTagAddressBookIsMaster:
		return c.IsMaster, true
	case nspi.PidTagAddressBookParentEntryID:
		if c.ID == nspi.GALContainerID || c.ParentID == nspi.GALContainerID {
			return nil, false
		}
		parent, ok := b.store.Container(c.ParentID)
		if !ok {
			return nil, false
		}
		return nspi.NewPermanentEntryID(nspi.DTContainer, parent.Object.DN).Bytes(), true
	}
	return nil, false
}

// containerOf returns the container obj describes.
func (b *Builder) containerOf(obj *directory.Object) (*directory.Container, bool) {
	if obj.DisplayType != nspi.DTContainer {
		return nil, false
	}
	if c, ok := b.store.Container(uint32(obj.MId)); ok {
		return c, true
	}
	gal, ok := b.store.Container(nspi.GALContainerID)
	if ok && gal.Object != nil && gal.Object.MId == obj.MId {
		return gal, true
	}
	return nil, false
}

// EntryID returns the entry ID of obj, ephemeral when flags carry fEphID.
func (b *Builder) EntryID(obj *directory.Object, flags uint32) nspi.EntryID {
	if flags&nspi.FlagEphID != 0 {
		return nspi.NewEphemeralEntryID(b.serverUID, obj.DisplayType, obj.MId)
	}
	return nspi.NewPermanentEntryID(obj.DisplayType, obj.DN)
}

// SearchKey returns the address type and e-mail address of obj in upper
// case, NUL terminated.
func SearchKey(obj *directory.Object) []byte {
	addrType := obj.String(nspi.PidTagAddressType)
	if addrType == "" {
		addrType = "EX"
	}
	addr := obj.String(nspi.PidTagEmailAddress)
	if addr == "" {
		addr = obj.DN
	}
	return append([]byte(strings.ToUpper(addrType+":"+addr)), 0)
}

// computedTags lists the computed properties every object reports.
var computedTags = []nspi.PropTag{
	nspi.PidTagEntryID,
	nspi.PidTagRecordKey,
	nspi.PidTagTemplateID,
	nspi.PidTagInstanceKey,
	nspi.PidTagMappingSignature,
	nspi.PidTagSearchKey,
	nspi.PidTagAddressBookContainerID,
}

var containerTags = []nspi.PropTag{
	nspi.PidTagContainerFlags,
	nspi.PidTagDepth,
	nspi.PidTagAddressBookIsMaster,
	nspi.PidTagAddressBookParentEntryID,
	nspi.PidTagContainerContents,
}

// PropList returns the tags that have a value on obj, ordered by tag.
// String types are reported as 8-bit strings. fSkipObjects drops
// object-valued properties.
func (b *Builder) PropList(obj *directory.Object, flags uint32) nspi.PropTagArray {
	seen := make(map[uint16]nspi.PropTag)
	add := func(tag nspi.PropTag) {
		if flags&nspi.FlagSkipObjects != 0 && tag.Type() == nspi.PtypEmbeddedTable {
			return
		}
		seen[tag.ID()] = ReportedType(tag)
	}

	for _, v := range obj.Values() {
		if !isEmpty(v.Value) {
			add(v.Tag)
		}
	}
	for _, tag := range computedTags {
		add(tag)
	}
	if name := obj.DisplayName(); name != "" {
		add(nspi.PidTagTransmittableDisplayName)
		add(nspi.PidTagAddressBookDisplayNamePrintable)
	}
	if obj.IsAddressable() {
		add(nspi.PidTagInitialDetailsPane)
	}
	if _, ok := b.containerOf(obj); ok {
		for _, tag := range containerTags {
			if tag == nspi.PidTagAddressBookParentEntryID {
				if _, ok := b.computed(obj, tag, Options{}); !ok {
					continue
				}
			}
			add(tag)
		}
	}

	out := make(nspi.PropTagArray, 0, len(seen))
	for _, tag := range seen {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ReportedType rewrites Unicode string types to their 8-bit forms.
func ReportedType(tag nspi.PropTag) nspi.PropTag {
	switch tag.Type() {
	case nspi.PtypString:
		return tag.WithType(nspi.PtypString8)
	case nspi.PtypMultipleString:
		return tag.WithType(nspi.PtypMultipleString8)
	}
	return tag
}

// Unspecified rewrites every tag to PtypUnspecified so values are produced
// in their native types.
func Unspecified(tags nspi.PropTagArray) nspi.PropTagArray {
	out := make(nspi.PropTagArray, len(tags))
	for i, tag := range tags {
		out[i] = tag.WithType(nspi.PtypUnspecified)
	}
	return out
}

func isEmpty(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case []string:
		return len(x) == 0
	case [][]byte:
		return len(x) == 0
	case []int32:
		return len(x) == 0
	}
	return false
}
