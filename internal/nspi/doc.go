// Package nspi defines the protocol vocabulary shared by every layer of the
// address book server.
//
// # Overview
//
// The types in this package mirror the data structures of the Name Service
// Provider Interface:
//
//   - ErrorCode: the result code returned by every operation
//   - MId: minimal entry IDs and the reserved positional values
//   - STAT: the caller-owned cursor threaded through table operations
//   - PropTag and PropType: property tags and property types
//   - PropertyValue, PropertyRow and PropertyRowSet: row data
//   - EntryID: permanent and ephemeral entry ID encoding
//
// # Result Codes
//
// ErrorCode implements the error interface so codes can be logged and
// compared directly:
//
//	if code := result.Code; code != nspi.Success {
//	    logger.Warn("operation failed", "code", code)
//	}
//
// Success and ErrorsReturned are the only codes that carry output.
//
// # Property Tags
//
// A property tag packs a 16-bit property ID and a 16-bit property type:
//
//	tag := nspi.PidTagDisplayName           // 0x3001001E
//	tag.ID()                                // 0x3001
//	tag.Type()                              // PtypString8
//	tag.WithType(nspi.PtypString)           // 0x3001001F
//
// A value that could not be produced keeps its ID and carries PtypErrorCode:
//
//	v := nspi.ErrorValue(nspi.PidTagTitle, nspi.NotFound)
//	v.Tag                                   // 0x3A17000A
//
// # Entry IDs
//
// Entry IDs are encoded in the little endian wire layout:
//
//	id := nspi.NewPermanentEntryID(nspi.DTMailUser, "/o=org/cn=alice")
//	b := id.Bytes()
//	parsed, err := nspi.ParseEntryID(b)
package nspi
