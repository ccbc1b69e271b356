package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KilimcininKorOglu/nspid/internal/acl"
	"github.com/KilimcininKorOglu/nspid/internal/directory"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

var (
	errUnresolvedEntryID = errors.New("server: entry id does not name an object")
	errWrongValueType    = errors.New("server: value does not match property type")
)

// modifiable lists the properties ModProps may change.
var modifiable = nspi.PropTagArray{
	nspi.PidTagUserX509Certificate,
	nspi.PidTagAddressBookX509Certificate,
}

// linkable lists the properties ModLinkAtt may change.
var linkable = nspi.PropTagArray{
	nspi.PidTagAddressBookMember,
	nspi.PidTagAddressBookPublicDelegates,
}

func anonymous(sess *Session) bool {
	return sess == nil || sess.Anonymous
}

// ModPropsRequest holds the parameters of ModProps. Row carries the new
// values of the properties named in PropTags; an empty multi-value
// removes the property.
type ModPropsRequest struct {
	Reserved uint32            `json:"reserved"`
	Stat     nspi.STAT         `json:"stat"`
	PropTags nspi.PropTagArray `json:"propTags"`
	Row      nspi.PropertyRow  `json:"row"`
}

// ModProps replaces properties of the object at Stat.CurrentRec. The
// change is applied to the object as a whole or not at all.
func (s *Server) ModProps(sess *Session, req ModPropsRequest) Result {
	code := s.modProps(sess, req)
	s.trace("ModProps", code, req.Stat, "tags", len(req.PropTags))
	return Result{Code: code}
}

func (s *Server) modProps(sess *Session, req ModPropsRequest) nspi.ErrorCode {
	if req.PropTags == nil {
		return nspi.InvalidParameter
	}
	obj, ok := s.store.Object(req.Stat.CurrentRec)
	if !ok || !req.Stat.CurrentRec.IsObject() {
		return nspi.InvalidParameter
	}

	values := make([]nspi.PropertyValue, 0, len(req.Row))
	for _, v := range req.Row {
		if !req.PropTags.Contains(v.Tag) {
			continue
		}
		if !modifiable.Contains(v.Tag) {
			return nspi.AccessDenied
		}
		ctx := acl.NewAccessContext(obj.DisplayType, v.Tag, acl.Modify).WithAnonymous(anonymous(sess))
		if !s.acl.CheckAccess(ctx) {
			return nspi.AccessDenied
		}
		stored, err := s.storedValue(v, req.Stat.CodePage)
		if err != nil {
			return nspi.InvalidParameter
		}
		values = append(values, stored)
	}

	err := s.store.Modify(obj.MId, func(o *directory.Object) error {
		for _, v := range values {
			if emptyValue(v.Value) {
				o.Delete(v.Tag)
				continue
			}
			o.Set(v)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("modify properties failed", "mid", uint32(obj.MId), "error", err)
		return nspi.GeneralFailure
	}
	return nspi.Success
}

// storedValue converts a caller value to stored form under the native
// tag of its property.
func (s *Server) storedValue(v nspi.PropertyValue, cp uint32) (nspi.PropertyValue, error) {
	native, ok := nspi.NativeTag(v.Tag)
	if !ok {
		return nspi.PropertyValue{}, fmt.Errorf("%w: unknown %s", errWrongValueType, v.Tag)
	}
	stored, err := s.converter.ToStored(v, cp)
	if err != nil {
		return nspi.PropertyValue{}, err
	}
	switch native.Type() {
	case nspi.PtypMultipleBinary:
		if _, ok := stored.Value.([][]byte); !ok && stored.Value != nil {
			return nspi.PropertyValue{}, fmt.Errorf("%w: %T for %s", errWrongValueType, stored.Value, native)
		}
	case nspi.PtypBinary:
		if _, ok := stored.Value.([]byte); !ok {
			return nspi.PropertyValue{}, fmt.Errorf("%w: %T for %s", errWrongValueType, stored.Value, native)
		}
	}
	stored.Tag = native
	return stored, nil
}

func emptyValue(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case [][]byte:
		return len(x) == 0
	case []string:
		return len(x) == 0
	}
	return false
}

// ModLinkAttRequest holds the parameters of ModLinkAtt. Only the
// FlagDelete bit of Flags is meaningful.
type ModLinkAttRequest struct {
	Flags    uint32       `json:"flags"`
	PropTag  nspi.PropTag `json:"propTag"`
	MId      nspi.MId     `json:"mid"`
	EntryIDs [][]byte     `json:"entryIds"`
}

// ModLinkAtt adds entries to, or removes them from, a linked property.
func (s *Server) ModLinkAtt(sess *Session, req ModLinkAttRequest) Result {
	remove := req.Flags&nspi.FlagDelete != 0
	code := s.modLinkAtt(sess, req.PropTag, req.MId, req.EntryIDs, remove)
	s.logger.Debug("nspi operation",
		"op", "ModLinkAtt",
		"code", code.String(),
		"mid", uint32(req.MId),
		"tag", req.PropTag.String(),
		"delete", remove,
		"entries", len(req.EntryIDs),
	)
	return Result{Code: code}
}

func (s *Server) modLinkAtt(sess *Session, tag nspi.PropTag, mid nspi.MId, entryIDs [][]byte, remove bool) nspi.ErrorCode {
	if !linkable.Contains(tag) {
		return nspi.NotFound
	}
	native, _ := nspi.NativeTag(tag)

	obj, ok := s.store.Object(mid)
	if !ok || !mid.IsObject() {
		return nspi.InvalidParameter
	}

	op := acl.AddLink
	if remove {
		op = acl.RemoveLink
	}
	ctx := acl.NewAccessContext(obj.DisplayType, native, op).WithAnonymous(anonymous(sess))
	if !s.acl.CheckAccess(ctx) {
		return nspi.AccessDenied
	}

	dns := make([]string, 0, len(entryIDs))
	for _, b := range entryIDs {
		target, err := s.resolveEntryID(b)
		if err != nil {
			s.logger.Debug("entry id not resolved", "mid", uint32(mid), "error", err)
			return nspi.AccessDenied
		}
		dns = append(dns, target.DN)
	}

	err := s.store.Modify(mid, func(o *directory.Object) error {
		var next []string
		if remove {
			next = removeDNs(o.Strings(native), dns)
		} else {
			next = addDNs(o.Strings(native), dns)
		}
		if len(next) == 0 {
			o.Delete(native)
			return nil
		}
		o.Set(nspi.PropertyValue{Tag: native, Value: next})
		return nil
	})
	if err != nil {
		s.logger.Error("modify link attribute failed", "mid", uint32(mid), "error", err)
		return nspi.GeneralFailure
	}
	return nspi.Success
}

// resolveEntryID returns the object a permanent or ephemeral entry ID
// names. An ephemeral ID must have been issued by this server.
func (s *Server) resolveEntryID(b []byte) (*directory.Object, error) {
	eid, err := nspi.ParseEntryID(b)
	if err != nil {
		return nil, err
	}

	var (
		obj *directory.Object
		ok  bool
	)
	if eid.IsEphemeral() {
		if eid.ProviderUID != s.serverUID {
			return nil, fmt.Errorf("%w: foreign provider", errUnresolvedEntryID)
		}
		obj, ok = s.store.Object(eid.MId)
	} else {
		obj, ok = s.store.ObjectByDN(eid.DN)
	}
	if !ok {
		return nil, errUnresolvedEntryID
	}
	if !s.config.IgnoreEntryIDDisplayType && eid.DisplayType != obj.DisplayType {
		return nil, fmt.Errorf("%w: display type %s for %s", errUnresolvedEntryID, eid.DisplayType, obj.DisplayType)
	}
	return obj, nil
}

func addDNs(current, dns []string) []string {
	out := append([]string(nil), current...)
	for _, dn := range dns {
		if !containsDN(out, dn) {
			out = append(out, dn)
		}
	}
	return out
}

func removeDNs(current, dns []string) []string {
	var out []string
	for _, dn := range current {
		if !containsDN(dns, dn) {
			out = append(out, dn)
		}
	}
	return out
}

func containsDN(dns []string, dn string) bool {
	for _, d := range dns {
		if strings.EqualFold(d, dn) {
			return true
		}
	}
	return false
}
