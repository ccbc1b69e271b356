package nspi

// SortType identifies the order of a table.
type SortType uint32

// Sort types.
const (
	SortTypeDisplayName         SortType = 0x00000000
	SortTypePhoneticDisplayName SortType = 0x00000003
	SortTypeDisplayNameRO       SortType = 0x000003E8
	SortTypeDisplayNameW        SortType = 0x000003E9
)

// String returns the name of the sort type.
func (s SortType) String() string {
	switch s {
	case SortTypeDisplayName:
		return "DisplayName"
	case SortTypePhoneticDisplayName:
		return "PhoneticDisplayName"
	case SortTypeDisplayNameRO:
		return "DisplayName_RO"
	case SortTypeDisplayNameW:
		return "DisplayName_W"
	default:
		return "unknown"
	}
}

// IsTableSort reports whether the sort type orders a container table.
func (s SortType) IsTableSort() bool {
	return s == SortTypeDisplayName || s == SortTypePhoneticDisplayName
}

// GALContainerID is the container ID of the Global Address List.
const GALContainerID uint32 = 0

// STAT is the cursor block carried by table operations. It is a value type;
// every operation works on a copy and returns the updated copy on success.
type STAT struct {
	SortType       SortType `json:"sortType"`
	ContainerID    uint32   `json:"containerID"`
	CurrentRec     MId      `json:"currentRec"`
	Delta          int32    `json:"delta"`
	NumPos         uint32   `json:"numPos"`
	TotalRecs      uint32   `json:"totalRecs"`
	CodePage       uint32   `json:"codePage"`
	TemplateLocale uint32   `json:"templateLocale"`
	SortLocale     uint32   `json:"sortLocale"`
}

// NewSTAT returns a STAT positioned at the beginning of the Global Address
// List with the given code page and default locales.
func NewSTAT(codePage uint32) STAT {
	return STAT{
		SortType:       SortTypeDisplayName,
		ContainerID:    GALContainerID,
		CurrentRec:     MIDBeginningOfTable,
		CodePage:       codePage,
		TemplateLocale: DefaultLocale,
		SortLocale:     DefaultLocale,
	}
}
