// Package directory implements the address book store.
package directory

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// Object is an address book object. Objects handed out by the Store are
// snapshots and must not be mutated; use Store.Modify to change one.
type Object struct {
	MId         nspi.MId
	GUID        uuid.UUID
	DN          string
	DisplayType nspi.DisplayType
	props       map[uint16]nspi.PropertyValue
}

// NewObject creates an object with no properties.
func NewObject(dn string, dt nspi.DisplayType) *Object {
	return &Object{
		GUID:        GUIDForDN(dn),
		DN:          dn,
		DisplayType: dt,
		props:       make(map[uint16]nspi.PropertyValue),
	}
}

// dnNamespace seeds the name-based GUIDs of objects without an explicit one.
var dnNamespace = uuid.MustParse("6a2d0c1e-8d4b-4c55-9a0e-3c1f7b5e2d90")

// GUIDForDN derives a stable GUID from a DN.
func GUIDForDN(dn string) uuid.UUID {
	return uuid.NewSHA1(dnNamespace, []byte(normalizeDN(dn)))
}

// Get returns the stored value whose property ID matches tag.
func (o *Object) Get(tag nspi.PropTag) (nspi.PropertyValue, bool) {
	v, ok := o.props[tag.ID()]
	return v, ok
}

// Set stores v, replacing any value with the same property ID.
func (o *Object) Set(v nspi.PropertyValue) {
	o.props[v.Tag.ID()] = v
}

// SetString stores a Unicode string property.
func (o *Object) SetString(tag nspi.PropTag, s string) {
	o.Set(nspi.PropertyValue{Tag: tag, Value: s})
}

// Delete removes the property with tag's ID.
func (o *Object) Delete(tag nspi.PropTag) {
	delete(o.props, tag.ID())
}

// Tags returns the tags of every stored property, ordered by tag.
func (o *Object) Tags() []nspi.PropTag {
	tags := make([]nspi.PropTag, 0, len(o.props))
	for _, v := range o.props {
		tags = append(tags, v.Tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Values returns copies of every stored property, ordered by tag.
func (o *Object) Values() []nspi.PropertyValue {
	out := make([]nspi.PropertyValue, 0, len(o.props))
	for _, tag := range o.Tags() {
		out = append(out, o.props[tag.ID()].Clone())
	}
	return out
}

// String returns a string property or "".
func (o *Object) String(tag nspi.PropTag) string {
	v, ok := o.Get(tag)
	if !ok {
		return ""
	}
	s, _ := v.Value.(string)
	return s
}

// Strings returns a multi-valued string property or nil.
func (o *Object) Strings(tag nspi.PropTag) []string {
	v, ok := o.Get(tag)
	if !ok {
		return nil
	}
	s, _ := v.Value.([]string)
	return s
}

// DisplayName returns PidTagDisplayName.
func (o *Object) DisplayName() string {
	return o.String(nspi.PidTagDisplayName)
}

// PhoneticDisplayName returns PidTagAddressBookPhoneticDisplayName.
func (o *Object) PhoneticDisplayName() string {
	return o.String(nspi.PidTagAddressBookPhoneticDisplayName)
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	c := &Object{
		MId:         o.MId,
		GUID:        o.GUID,
		DN:          o.DN,
		DisplayType: o.DisplayType,
		props:       make(map[uint16]nspi.PropertyValue, len(o.props)),
	}
	for id, v := range o.props {
		c.props[id] = v.Clone()
	}
	return c
}

// IsAddressable reports whether the object belongs in address lists.
func (o *Object) IsAddressable() bool {
	switch o.DisplayType {
	case nspi.DTContainer, nspi.DTTemplate, nspi.DTAddressTemplate, nspi.DTSearch:
		return false
	}
	return true
}

func normalizeDN(dn string) string {
	return strings.ToLower(strings.TrimSpace(dn))
}
