package table

import (
	"bytes"
	"sort"

	"golang.org/x/text/collate"

	"github.com/KilimcininKorOglu/nspid/internal/directory"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// row is one entry of a view.
type row struct {
	obj *directory.Object
	key []byte
}

// View is a sorted snapshot of an address list.
type View struct {
	ContainerID uint32
	SortType    nspi.SortType

	rows     []row
	index    map[nspi.MId]int
	collator *collate.Collator
	buf      collate.Buffer
}

func newView(containerID uint32, sortType nspi.SortType, sortLocale uint32, objects []*directory.Object) *View {
	v := &View{
		ContainerID: containerID,
		SortType:    sortType,
		rows:        make([]row, 0, len(objects)),
		index:       make(map[nspi.MId]int, len(objects)),
		collator:    newCollator(sortLocale),
	}
	for _, obj := range objects {
		v.rows = append(v.rows, row{obj: obj, key: v.Key(sortValue(obj, sortType))})
	}

	sort.SliceStable(v.rows, func(i, j int) bool {
		return compareRows(v.rows[i], v.rows[j]) < 0
	})
	for i, r := range v.rows {
		v.index[r.obj.MId] = i
	}
	return v
}

// compareRows orders by collation key, then by MId.
func compareRows(a, b row) int {
	if c := bytes.Compare(a.key, b.key); c != 0 {
		return c
	}
	switch {
	case a.obj.MId < b.obj.MId:
		return -1
	case a.obj.MId > b.obj.MId:
		return 1
	default:
		return 0
	}
}

// sortValue returns the property a sort type orders by.
func sortValue(obj *directory.Object, sortType nspi.SortType) string {
	if sortType == nspi.SortTypePhoneticDisplayName {
		return obj.PhoneticDisplayName()
	}
	return obj.DisplayName()
}

// SortTag returns the property a table sort type orders by.
func SortTag(sortType nspi.SortType) nspi.PropTag {
	if sortType == nspi.SortTypePhoneticDisplayName {
		return nspi.PidTagAddressBookPhoneticDisplayName
	}
	return nspi.PidTagDisplayName
}

// Key returns the collation key of s. The result is a fresh slice.
func (v *View) Key(s string) []byte {
	k := v.collator.KeyFromString(&v.buf, s)
	out := make([]byte, len(k))
	copy(out, k)
	v.buf.Reset()
	return out
}

// Len returns the number of rows.
func (v *View) Len() int {
	return len(v.rows)
}

// MIds returns the MIds of every row in order.
func (v *View) MIds() []nspi.MId {
	out := make([]nspi.MId, len(v.rows))
	for i, r := range v.rows {
		out[i] = r.obj.MId
	}
	return out
}

// Slice returns the MIds of rows [from, to).
func (v *View) Slice(from, to int) []nspi.MId {
	from, to = clamp(from, 0, len(v.rows)), clamp(to, 0, len(v.rows))
	if from >= to {
		return []nspi.MId{}
	}
	out := make([]nspi.MId, 0, to-from)
	for _, r := range v.rows[from:to] {
		out = append(out, r.obj.MId)
	}
	return out
}

// Object returns the object at position i.
func (v *View) Object(i int) *directory.Object {
	return v.rows[i].obj
}

// Index returns the position of mid.
func (v *View) Index(mid nspi.MId) (int, bool) {
	if !mid.IsObject() {
		return 0, false
	}
	i, ok := v.index[mid]
	return i, ok
}

// Contains reports whether mid is a row of the view.
func (v *View) Contains(mid nspi.MId) bool {
	_, ok := v.Index(mid)
	return ok
}

// Position locates a cursor. MIDBeginningOfTable is position 0,
// MIDEndOfTable is Len, MIDCurrent is numPos clamped to the table, and any
// other value must be the MId of a row.
func (v *View) Position(mid nspi.MId, numPos uint32) (int, bool) {
	switch mid {
	case nspi.MIDBeginningOfTable:
		return 0, true
	case nspi.MIDEndOfTable:
		return len(v.rows), true
	case nspi.MIDCurrent:
		return clamp(int(numPos), 0, len(v.rows)), true
	}
	return v.Index(mid)
}

// MIdAt returns the cursor value for position i: the MId of the row, or
// MIDEndOfTable past the last row.
func (v *View) MIdAt(i int) nspi.MId {
	if i >= len(v.rows) {
		return nspi.MIDEndOfTable
	}
	if i < 0 {
		return nspi.MIDBeginningOfTable
	}
	return v.rows[i].obj.MId
}

// Seek returns the first position whose sort key is at or after key.
func (v *View) Seek(key []byte) (int, bool) {
	i := sort.Search(len(v.rows), func(i int) bool {
		return bytes.Compare(v.rows[i].key, key) >= 0
	})
	return i, i < len(v.rows)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
