package nspi

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/google/uuid"
)

// Entry ID types.
const (
	EntryIDPermanent byte = 0x00
	EntryIDEphemeral byte = 0x87
)

const (
	entryIDHeaderLen    = 28 // IDType, R1-R3, ProviderUID, R4, DisplayType
	ephemeralEntryIDLen = entryIDHeaderLen + 4
	entryIDR4           = 0x00000001
)

// Entry ID errors.
var (
	ErrEntryIDTooShort     = errors.New("nspi: entry id too short")
	ErrEntryIDUnknownType  = errors.New("nspi: unknown entry id type")
	ErrEntryIDNoTerminator = errors.New("nspi: permanent entry id DN is not terminated")
)

// FlatUID is a GUID in its little endian wire layout.
type FlatUID [16]byte

// FlatUIDFromUUID converts an RFC 4122 UUID into its wire layout.
func FlatUIDFromUUID(u uuid.UUID) FlatUID {
	var f FlatUID
	f[0], f[1], f[2], f[3] = u[3], u[2], u[1], u[0]
	f[4], f[5] = u[5], u[4]
	f[6], f[7] = u[7], u[6]
	copy(f[8:], u[8:])
	return f
}

// UUID converts the wire layout back to a UUID.
func (f FlatUID) UUID() uuid.UUID {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = f[3], f[2], f[1], f[0]
	u[4], u[5] = f[5], f[4]
	u[6], u[7] = f[7], f[6]
	copy(u[8:], f[8:])
	return u
}

// NSPIProviderUID is the provider UID carried by every permanent entry ID.
var NSPIProviderUID = FlatUIDFromUUID(uuid.MustParse("C840A7DC-42C0-1A10-B4B9-08002B2FE182"))

// EntryID is a decoded permanent or ephemeral entry ID.
type EntryID struct {
	Type        byte
	ProviderUID FlatUID
	DisplayType DisplayType
	DN          string // permanent only
	MId         MId    // ephemeral only
}

// NewPermanentEntryID returns a permanent entry ID for dn.
func NewPermanentEntryID(dt DisplayType, dn string) EntryID {
	return EntryID{
		Type:        EntryIDPermanent,
		ProviderUID: NSPIProviderUID,
		DisplayType: dt,
		DN:          dn,
	}
}

// NewEphemeralEntryID returns an ephemeral entry ID for mid issued by the
// server identified by serverUID.
func NewEphemeralEntryID(serverUID FlatUID, dt DisplayType, mid MId) EntryID {
	return EntryID{
		Type:        EntryIDEphemeral,
		ProviderUID: serverUID,
		DisplayType: dt,
		MId:         mid,
	}
}

// IsEphemeral reports whether the entry ID is ephemeral.
func (e EntryID) IsEphemeral() bool {
	return e.Type == EntryIDEphemeral
}

// Bytes encodes the entry ID.
func (e EntryID) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteByte(e.Type)
	buf.Write([]byte{0, 0, 0})
	buf.Write(e.ProviderUID[:])
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], entryIDR4)
	buf.Write(u32[:])
	binary.LittleEndian.PutUint32(u32[:], uint32(e.DisplayType))
	buf.Write(u32[:])
	if e.Type == EntryIDEphemeral {
		binary.LittleEndian.PutUint32(u32[:], uint32(e.MId))
		buf.Write(u32[:])
		return buf.Bytes()
	}
	buf.WriteString(e.DN)
	buf.WriteByte(0)
	return buf.Bytes()
}

// ParseEntryID decodes an entry ID.
func ParseEntryID(b []byte) (EntryID, error) {
	if len(b) < entryIDHeaderLen {
		return EntryID{}, ErrEntryIDTooShort
	}

	var e EntryID
	e.Type = b[0]
	copy(e.ProviderUID[:], b[4:20])
	e.DisplayType = DisplayType(binary.LittleEndian.Uint32(b[24:28]))

	switch e.Type {
	case EntryIDEphemeral:
		if len(b) < ephemeralEntryIDLen {
			return EntryID{}, ErrEntryIDTooShort
		}
		e.MId = MId(binary.LittleEndian.Uint32(b[28:32]))
	case EntryIDPermanent:
		dn := b[entryIDHeaderLen:]
		end := bytes.IndexByte(dn, 0)
		if end < 0 {
			return EntryID{}, ErrEntryIDNoTerminator
		}
		e.DN = string(dn[:end])
	default:
		return EntryID{}, ErrEntryIDUnknownType
	}

	return e, nil
}
