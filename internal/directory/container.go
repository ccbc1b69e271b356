package directory

import (
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// Container is an address list. The Global Address List has ID 0 and holds
// every addressable object; other containers hold an explicit member list.
type Container struct {
	ID       uint32
	ParentID uint32
	Depth    uint32
	Flags    uint32
	IsMaster bool
	Object   *Object
	members  []nspi.MId
}

// Members returns a copy of the member MIds.
func (c *Container) Members() []nspi.MId {
	return nspi.CloneMIds(c.members)
}

// snapshot copies c so its Object can be read without the store lock.
// Member lists are fixed once the store is built and stay shared.
func (c *Container) snapshot() *Container {
	cp := *c
	return &cp
}

func (c *Container) hasMember(mid nspi.MId) bool {
	for _, m := range c.members {
		if m == mid {
			return true
		}
	}
	return false
}

// Template is a display or address creation template.
type Template struct {
	// Object holds the template's own properties (DN, display name).
	Object *Object
	// Type is the display type the template renders.
	Type nspi.DisplayType
	// Locale is the LCID the template is written for.
	Locale uint32
	// AddressType is the e-mail type a creation template produces.
	AddressType string
	// Creation marks templates offered in the address creation table.
	Creation         bool
	TemplateData     []byte
	ScriptData       []byte
	HelpFileName     string
	HelpFileContents []byte
}
