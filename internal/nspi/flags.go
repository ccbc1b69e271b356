package nspi

// DisplayType classifies an address book object.
type DisplayType uint32

// Display types.
const (
	DTMailUser        DisplayType = 0x00000000
	DTDistList        DisplayType = 0x00000001
	DTForum           DisplayType = 0x00000002
	DTAgent           DisplayType = 0x00000003
	DTOrganization    DisplayType = 0x00000004
	DTPrivateDistList DisplayType = 0x00000005
	DTRemoteMailUser  DisplayType = 0x00000006
	DTContainer       DisplayType = 0x00000100
	DTTemplate        DisplayType = 0x00000101
	DTAddressTemplate DisplayType = 0x00000102
	DTSearch          DisplayType = 0x00000200
)

var displayTypeNames = map[DisplayType]string{
	DTMailUser:        "mailuser",
	DTDistList:        "distlist",
	DTForum:           "forum",
	DTAgent:           "agent",
	DTOrganization:    "organization",
	DTPrivateDistList: "private_distlist",
	DTRemoteMailUser:  "remote_mailuser",
	DTContainer:       "container",
	DTTemplate:        "template",
	DTAddressTemplate: "address_template",
	DTSearch:          "search",
}

// String returns the lowercase name of the display type.
func (d DisplayType) String() string {
	if name, ok := displayTypeNames[d]; ok {
		return name
	}
	return "unknown"
}

// ParseDisplayType parses a display type name.
func ParseDisplayType(s string) (DisplayType, bool) {
	for dt, name := range displayTypeNames {
		if name == s {
			return dt, true
		}
	}
	return 0, false
}

// Object types reported in PidTagObjectType.
const (
	ObjectTypeABContainer uint32 = 0x00000004
	ObjectTypeMailUser    uint32 = 0x00000006
	ObjectTypeDistList    uint32 = 0x00000008
)

// ObjectType returns the PidTagObjectType value for the display type.
func (d DisplayType) ObjectType() uint32 {
	switch d {
	case DTDistList, DTPrivateDistList:
		return ObjectTypeDistList
	case DTContainer:
		return ObjectTypeABContainer
	default:
		return ObjectTypeMailUser
	}
}

// Bind flags.
const (
	FlagAnonymousLogin uint32 = 0x00000020
)

// Retrieve property flags.
const (
	FlagSkipObjects uint32 = 0x00000001
	FlagEphID       uint32 = 0x00000002
)

// GetSpecialTable flags.
const (
	FlagAddressCreationTemplates uint32 = 0x00000002
	FlagUnicodeStrings           uint32 = 0x00000004
)

// QueryColumns flags.
const (
	FlagUnicodeProptypes uint32 = 0x80000000
)

// ModLinkAtt flags.
const (
	FlagDelete uint32 = 0x00000001
)

// GetTemplateInfo flags.
const (
	TITemplate         uint32 = 0x00000001
	TIScript           uint32 = 0x00000004
	TIEmt              uint32 = 0x00000010
	TIHelpFileName     uint32 = 0x00000020
	TIHelpFileContents uint32 = 0x00000040
)

// Container flags reported in PidTagContainerFlags.
const (
	ABRecip         uint32 = 0x00000001
	ABSubcontainers uint32 = 0x00000002
	ABUnmodifiable  uint32 = 0x00000008
)

// Code pages with protocol meaning.
const (
	CodePageWinUnicode  uint32 = 0x000004B0
	CodePageTeletex     uint32 = 0x00004F25
	CodePageWindows1252 uint32 = 0x000004E4
)

// DefaultLocale is the en-US locale ID.
const DefaultLocale uint32 = 0x00000409
