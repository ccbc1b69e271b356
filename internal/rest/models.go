package rest

import (
	"encoding/json"
	"time"

	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// Value is a property value on the wire. Its JSON shape is read according
// to the type of Tag.
type Value struct {
	Tag   nspi.PropTag    `json:"tag"`
	Value json.RawMessage `json:"value,omitempty"`
}

// UnbindRequest is the body of unbind.
type UnbindRequest struct {
	Reserved uint32 `json:"reserved"`
}

// SeekEntriesRequest is the body of seekEntries.
type SeekEntriesRequest struct {
	Reserved      uint32            `json:"reserved"`
	Stat          nspi.STAT         `json:"stat"`
	Target        Value             `json:"target"`
	ExplicitTable []nspi.MId        `json:"explicitTable,omitempty"`
	PropTags      nspi.PropTagArray `json:"propTags,omitempty"`
}

// GetMatchesRequest is the body of getMatches. Filter is written in the
// restriction filter syntax; empty means no restriction.
type GetMatchesRequest struct {
	Reserved1 uint32            `json:"reserved1"`
	Stat      nspi.STAT         `json:"stat"`
	Reserved  nspi.PropTagArray `json:"reserved,omitempty"`
	Reserved2 nspi.PropTag      `json:"reserved2"`
	Filter    string            `json:"filter,omitempty"`
	PropName  *string           `json:"propName,omitempty"`
	Requested uint32            `json:"requested"`
	PropTags  nspi.PropTagArray `json:"propTags,omitempty"`
}

// ModPropsRequest is the body of modProps.
type ModPropsRequest struct {
	Reserved uint32            `json:"reserved"`
	Stat     nspi.STAT         `json:"stat"`
	PropTags nspi.PropTagArray `json:"propTags"`
	Row      []Value           `json:"row"`
}

// QueryColumnsRequest is the body of queryColumns.
type QueryColumnsRequest struct {
	Flags uint32 `json:"flags"`
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status           string    `json:"status"`
	ServerGUID       string    `json:"serverGuid"`
	Objects          int       `json:"objects"`
	Sessions         int       `json:"sessions"`
	HierarchyVersion uint32    `json:"hierarchyVersion"`
	Requests         int64     `json:"requests"`
	ActiveRequests   int64     `json:"activeRequests"`
	StartTime        time.Time `json:"startTime"`
	Uptime           string    `json:"uptime"`
}
