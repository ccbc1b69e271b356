package nspi

// MId is a minimal entry ID.
type MId uint32

// Positional MIds.
const (
	MIDBeginningOfTable MId = 0x00000000
	MIDCurrent          MId = 0x00000001
	MIDEndOfTable       MId = 0x00000002
)

// ANR outcome MIds.
const (
	MIDUnresolved MId = 0x00000000
	MIDAmbiguous  MId = 0x00000001
	MIDResolved   MId = 0x00000002
)

// MinObjectMId is the smallest MId that can denote an object.
const MinObjectMId MId = 0x00000010

// IsObject reports whether the MId lies in the object range.
func (m MId) IsObject() bool {
	return m >= MinObjectMId
}

// CloneMIds returns a copy of mids, preserving nil.
func CloneMIds(mids []MId) []MId {
	if mids == nil {
		return nil
	}
	out := make([]MId, len(mids))
	copy(out, mids)
	return out
}
