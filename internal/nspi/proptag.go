package nspi

import (
	"fmt"
	"sort"
	"strings"
)

// PropType is the low 16 bits of a property tag.
type PropType uint16

// Property types.
const (
	PtypUnspecified     PropType = 0x0000
	PtypNull            PropType = 0x0001
	PtypInteger16       PropType = 0x0002
	PtypInteger32       PropType = 0x0003
	PtypErrorCode       PropType = 0x000A
	PtypBoolean         PropType = 0x000B
	PtypEmbeddedTable   PropType = 0x000D
	PtypString8         PropType = 0x001E
	PtypString          PropType = 0x001F
	PtypTime            PropType = 0x0040
	PtypGUID            PropType = 0x0048
	PtypBinary          PropType = 0x0102
	PtypMultipleFlag    PropType = 0x1000
	PtypMultipleInt32   PropType = PtypMultipleFlag | PtypInteger32
	PtypMultipleString8 PropType = PtypMultipleFlag | PtypString8
	PtypMultipleString  PropType = PtypMultipleFlag | PtypString
	PtypMultipleBinary  PropType = PtypMultipleFlag | PtypBinary
)

// IsMultiple reports whether the type is multi-valued.
func (t PropType) IsMultiple() bool {
	return t&PtypMultipleFlag != 0
}

// IsString reports whether the type is a single or multi-valued string.
func (t PropType) IsString() bool {
	base := t &^ PtypMultipleFlag
	return base == PtypString8 || base == PtypString
}

// String returns the name of the property type.
func (t PropType) String() string {
	switch t {
	case PtypUnspecified:
		return "PtypUnspecified"
	case PtypNull:
		return "PtypNull"
	case PtypInteger16:
		return "PtypInteger16"
	case PtypInteger32:
		return "PtypInteger32"
	case PtypErrorCode:
		return "PtypErrorCode"
	case PtypBoolean:
		return "PtypBoolean"
	case PtypEmbeddedTable:
		return "PtypEmbeddedTable"
	case PtypString8:
		return "PtypString8"
	case PtypString:
		return "PtypString"
	case PtypTime:
		return "PtypTime"
	case PtypGUID:
		return "PtypGuid"
	case PtypBinary:
		return "PtypBinary"
	case PtypMultipleInt32:
		return "PtypMultipleInteger32"
	case PtypMultipleString8:
		return "PtypMultipleString8"
	case PtypMultipleString:
		return "PtypMultipleString"
	case PtypMultipleBinary:
		return "PtypMultipleBinary"
	default:
		return fmt.Sprintf("PropType(0x%04X)", uint16(t))
	}
}

// PropTag is a 32-bit property tag.
type PropTag uint32

// NewPropTag builds a property tag from an ID and a type.
func NewPropTag(id uint16, typ PropType) PropTag {
	return PropTag(uint32(id)<<16 | uint32(typ))
}

// ID returns the property ID.
func (t PropTag) ID() uint16 {
	return uint16(t >> 16)
}

// Type returns the property type.
func (t PropTag) Type() PropType {
	return PropType(t & 0xFFFF)
}

// WithType returns the tag with its type replaced.
func (t PropTag) WithType(typ PropType) PropTag {
	return NewPropTag(t.ID(), typ)
}

// String returns the symbolic name when known, otherwise the hex value.
func (t PropTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	if name, ok := idNames[t.ID()]; ok {
		return fmt.Sprintf("%s:%s", name, t.Type())
	}
	return fmt.Sprintf("0x%08X", uint32(t))
}

// Well-known property tags with their native types.
const (
	PidTagTemplateData                       PropTag = 0x00010102
	PidTagScriptData                         PropTag = 0x00040102
	PidTagInstanceKey                        PropTag = 0x0FF60102
	PidTagMappingSignature                   PropTag = 0x0FF80102
	PidTagRecordKey                          PropTag = 0x0FF90102
	PidTagObjectType                         PropTag = 0x0FFE0003
	PidTagEntryID                            PropTag = 0x0FFF0102
	PidTagDisplayName                        PropTag = 0x3001001F
	PidTagAddressType                        PropTag = 0x3002001F
	PidTagEmailAddress                       PropTag = 0x3003001F
	PidTagComment                            PropTag = 0x3004001F
	PidTagDepth                              PropTag = 0x30050003
	PidTagSearchKey                          PropTag = 0x300B0102
	PidTagContainerFlags                     PropTag = 0x36000003
	PidTagSelectable                         PropTag = 0x3609000B
	PidTagContainerContents                  PropTag = 0x360F000D
	PidTagDisplayType                        PropTag = 0x39000003
	PidTagTemplateID                         PropTag = 0x39020102
	PidTagSMTPAddress                        PropTag = 0x39FE001F
	PidTagAddressBookDisplayNamePrintable    PropTag = 0x39FF001F
	PidTagAccount                            PropTag = 0x3A00001F
	PidTagGivenName                          PropTag = 0x3A06001F
	PidTagBusinessTelephoneNumber            PropTag = 0x3A08001F
	PidTagInitials                           PropTag = 0x3A0A001F
	PidTagSurname                            PropTag = 0x3A11001F
	PidTagCompanyName                        PropTag = 0x3A16001F
	PidTagTitle                              PropTag = 0x3A17001F
	PidTagDepartmentName                     PropTag = 0x3A18001F
	PidTagOfficeLocation                     PropTag = 0x3A19001F
	PidTagPrimaryTelephoneNumber             PropTag = 0x3A1A001F
	PidTagMobileTelephoneNumber              PropTag = 0x3A1C001F
	PidTagTransmittableDisplayName           PropTag = 0x3A20001F
	PidTagUserX509Certificate                PropTag = 0x3A701102
	PidTagInitialDetailsPane                 PropTag = 0x3F080003
	PidTagAddressBookMember                  PropTag = 0x8009101E
	PidTagAddressBookIsMemberOfDistList      PropTag = 0x8008101E
	PidTagAddressBookProxyAddresses          PropTag = 0x800F101F
	PidTagAddressBookPublicDelegates         PropTag = 0x8015101E
	PidTagAddressBookObjectDistinguishedName PropTag = 0x803C001F
	PidTagAddressBookX509Certificate         PropTag = 0x8C6A1102
	PidTagAddressBookPhoneticDisplayName     PropTag = 0x8C92001F
	PidTagAddressBookHelpFileName            PropTag = 0x8C9B001F
	PidTagAddressBookHelpFileContents        PropTag = 0x8C9C0102
	PidTagAddressBookIsMaster                PropTag = 0xFFFB000B
	PidTagAddressBookParentEntryID           PropTag = 0xFFFC0102
	PidTagAddressBookContainerID             PropTag = 0xFFFD0003
)

var tagNames = map[PropTag]string{
	PidTagTemplateData:                       "TemplateData",
	PidTagScriptData:                         "ScriptData",
	PidTagInstanceKey:                        "InstanceKey",
	PidTagMappingSignature:                   "MappingSignature",
	PidTagRecordKey:                          "RecordKey",
	PidTagObjectType:                         "ObjectType",
	PidTagEntryID:                            "EntryId",
	PidTagDisplayName:                        "DisplayName",
	PidTagAddressType:                        "AddressType",
	PidTagEmailAddress:                       "EmailAddress",
	PidTagComment:                            "Comment",
	PidTagDepth:                              "Depth",
	PidTagSearchKey:                          "SearchKey",
	PidTagContainerFlags:                     "ContainerFlags",
	PidTagSelectable:                         "Selectable",
	PidTagContainerContents:                  "ContainerContents",
	PidTagDisplayType:                        "DisplayType",
	PidTagTemplateID:                         "TemplateId",
	PidTagSMTPAddress:                        "SmtpAddress",
	PidTagAddressBookDisplayNamePrintable:    "AddressBookDisplayNamePrintable",
	PidTagAccount:                            "Account",
	PidTagGivenName:                          "GivenName",
	PidTagBusinessTelephoneNumber:            "BusinessTelephoneNumber",
	PidTagInitials:                           "Initials",
	PidTagSurname:                            "Surname",
	PidTagCompanyName:                        "CompanyName",
	PidTagTitle:                              "Title",
	PidTagDepartmentName:                     "DepartmentName",
	PidTagOfficeLocation:                     "OfficeLocation",
	PidTagPrimaryTelephoneNumber:             "PrimaryTelephoneNumber",
	PidTagMobileTelephoneNumber:              "MobileTelephoneNumber",
	PidTagTransmittableDisplayName:           "TransmittableDisplayName",
	PidTagUserX509Certificate:                "UserX509Certificate",
	PidTagInitialDetailsPane:                 "InitialDetailsPane",
	PidTagAddressBookMember:                  "AddressBookMember",
	PidTagAddressBookIsMemberOfDistList:      "AddressBookIsMemberOfDistributionList",
	PidTagAddressBookProxyAddresses:          "AddressBookProxyAddresses",
	PidTagAddressBookPublicDelegates:         "AddressBookPublicDelegates",
	PidTagAddressBookObjectDistinguishedName: "AddressBookObjectDistinguishedName",
	PidTagAddressBookX509Certificate:         "AddressBookX509Certificate",
	PidTagAddressBookPhoneticDisplayName:     "AddressBookPhoneticDisplayName",
	PidTagAddressBookHelpFileName:            "AddressBookHelpFileName",
	PidTagAddressBookHelpFileContents:        "AddressBookHelpFileContents",
	PidTagAddressBookIsMaster:                "AddressBookIsMaster",
	PidTagAddressBookParentEntryID:           "AddressBookParentEntryId",
	PidTagAddressBookContainerID:             "AddressBookContainerId",
}

var (
	idNames   = make(map[uint16]string, len(tagNames))
	idToTag   = make(map[uint16]PropTag, len(tagNames))
	nameToTag = make(map[string]PropTag, len(tagNames))
)

func init() {
	for tag, name := range tagNames {
		idNames[tag.ID()] = name
		idToTag[tag.ID()] = tag
		nameToTag[strings.ToLower(name)] = tag
	}
}

// TagByName returns the native tag for a symbolic name. The lookup is
// case-insensitive and accepts an optional "PidTag" prefix.
func TagByName(name string) (PropTag, bool) {
	key := strings.ToLower(strings.TrimPrefix(name, "PidTag"))
	tag, ok := nameToTag[key]
	return tag, ok
}

// NativeTag returns the registered tag sharing the property ID of t.
func NativeTag(t PropTag) (PropTag, bool) {
	tag, ok := idToTag[t.ID()]
	return tag, ok
}

// KnownTags returns every registered tag, ordered by tag value.
func KnownTags() []PropTag {
	tags := make([]PropTag, 0, len(tagNames))
	for tag := range tagNames {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// PropTagArray is an ordered list of property tags.
type PropTagArray []PropTag

// Contains reports whether the array holds a tag with the same property ID.
func (a PropTagArray) Contains(tag PropTag) bool {
	for _, t := range a {
		if t.ID() == tag.ID() {
			return true
		}
	}
	return false
}
