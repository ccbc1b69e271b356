package directory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// Store errors.
var (
	ErrObjectNotFound    = errors.New("directory: object not found")
	ErrContainerNotFound = errors.New("directory: container not found")
	ErrDuplicateDN       = errors.New("directory: duplicate distinguished name")
	ErrInvalidObject     = errors.New("directory: invalid object")
	ErrStoreClosed       = errors.New("directory: store is closed")
)

// Persister keeps object state across restarts.
type Persister interface {
	// Put writes the object.
	Put(obj *Object) error
	// ForEach calls fn for every persisted object.
	ForEach(fn func(obj *Object) error) error
	// Close releases the persister.
	Close() error
}

// Store holds the address book. Reads return immutable snapshots and
// mutations replace a whole object under the write lock.
type Store struct {
	mu               sync.RWMutex
	objects          map[nspi.MId]*Object
	byDN             map[string]nspi.MId
	byGUID           map[uuid.UUID]nspi.MId
	containers       map[uint32]*Container
	hierarchy        []uint32
	templates        []*Template
	nextMId          nspi.MId
	hierarchyVersion uint32
	persister        Persister
	closed           bool
}

// Option configures a Store.
type Option func(*Store)

// WithPersister enables write-through persistence.
func WithPersister(p Persister) Option {
	return func(s *Store) {
		s.persister = p
	}
}

// NewStore creates a store holding only the Global Address List.
func NewStore(galDN string, opts ...Option) *Store {
	s := &Store{
		objects:          make(map[nspi.MId]*Object),
		byDN:             make(map[string]nspi.MId),
		byGUID:           make(map[uuid.UUID]nspi.MId),
		containers:       make(map[uint32]*Container),
		nextMId:          nspi.MinObjectMId,
		hierarchyVersion: 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	gal := NewObject(galDN, nspi.DTContainer)
	gal.SetString(nspi.PidTagDisplayName, "Global Address List")
	gal.MId = s.allocMId()
	s.index(gal)
	s.containers[nspi.GALContainerID] = &Container{
		ID:       nspi.GALContainerID,
		Flags:    nspi.ABRecip | nspi.ABUnmodifiable,
		IsMaster: true,
		Object:   gal,
	}
	s.hierarchy = append(s.hierarchy, nspi.GALContainerID)

	return s
}

func (s *Store) allocMId() nspi.MId {
	mid := s.nextMId
	s.nextMId++
	return mid
}

func (s *Store) index(obj *Object) {
	s.objects[obj.MId] = obj
	s.byDN[normalizeDN(obj.DN)] = obj.MId
	s.byGUID[obj.GUID] = obj.MId
}

// AddObject assigns an MId to obj and adds it to the Global Address List
// and to the listed containers. The store takes ownership of obj.
func (s *Store) AddObject(obj *Object, containerIDs ...uint32) (nspi.MId, error) {
	if obj == nil || obj.DN == "" {
		return 0, ErrInvalidObject
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}
	if _, exists := s.byDN[normalizeDN(obj.DN)]; exists {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateDN, obj.DN)
	}
	for _, id := range containerIDs {
		if _, ok := s.containers[id]; !ok {
			return 0, fmt.Errorf("%w: %d", ErrContainerNotFound, id)
		}
	}

	obj.MId = s.allocMId()
	applyBaseProps(obj)
	s.index(obj)

	if obj.IsAddressable() {
		gal := s.containers[nspi.GALContainerID]
		gal.members = append(gal.members, obj.MId)
	}
	for _, id := range containerIDs {
		c := s.containers[id]
		if id != nspi.GALContainerID && !c.hasMember(obj.MId) {
			c.members = append(c.members, obj.MId)
		}
	}

	return obj.MId, nil
}

// AddContainer adds an address list below parentID and returns its
// container ID. Adding a container changes the hierarchy version.
func (s *Store) AddContainer(obj *Object, parentID uint32, flags uint32) (uint32, error) {
	if obj == nil || obj.DN == "" {
		return 0, ErrInvalidObject
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}
	parent, ok := s.containers[parentID]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrContainerNotFound, parentID)
	}
	if _, exists := s.byDN[normalizeDN(obj.DN)]; exists {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateDN, obj.DN)
	}

	obj.DisplayType = nspi.DTContainer
	obj.MId = s.allocMId()
	applyBaseProps(obj)
	s.index(obj)

	depth := parent.Depth + 1
	if parentID == nspi.GALContainerID {
		depth = 1
	}
	if flags&nspi.ABRecip == 0 {
		flags |= nspi.ABRecip
	}
	if parentID != nspi.GALContainerID {
		parent.Flags |= nspi.ABSubcontainers
	}

	id := uint32(obj.MId)
	s.containers[id] = &Container{
		ID:       id,
		ParentID: parentID,
		Depth:    depth,
		Flags:    flags,
		Object:   obj,
	}
	s.insertHierarchy(id, parentID)
	s.hierarchyVersion++

	return id, nil
}

// insertHierarchy places id after the last descendant of its parent so the
// hierarchy stays in depth-first order.
func (s *Store) insertHierarchy(id, parentID uint32) {
	if parentID == nspi.GALContainerID {
		s.hierarchy = append(s.hierarchy, id)
		return
	}
	pos := len(s.hierarchy)
	for i, cid := range s.hierarchy {
		if cid == parentID {
			pos = i + 1
			for pos < len(s.hierarchy) && s.isDescendant(s.hierarchy[pos], parentID) {
				pos++
			}
			break
		}
	}
	s.hierarchy = append(s.hierarchy, 0)
	copy(s.hierarchy[pos+1:], s.hierarchy[pos:])
	s.hierarchy[pos] = id
}

func (s *Store) isDescendant(id, ancestor uint32) bool {
	for id != nspi.GALContainerID {
		c, ok := s.containers[id]
		if !ok {
			return false
		}
		if c.ParentID == ancestor {
			return true
		}
		id = c.ParentID
	}
	return false
}

// AddTemplate registers a template. Its object is indexed so it can be
// found by DN but it does not join any address list.
func (s *Store) AddTemplate(t *Template) error {
	if t == nil || t.Object == nil || t.Object.DN == "" {
		return ErrInvalidObject
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byDN[normalizeDN(t.Object.DN)]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateDN, t.Object.DN)
	}

	t.Object.DisplayType = nspi.DTAddressTemplate
	t.Object.MId = s.allocMId()
	applyBaseProps(t.Object)
	if t.AddressType != "" {
		t.Object.SetString(nspi.PidTagAddressType, t.AddressType)
	}
	s.index(t.Object)
	s.templates = append(s.templates, t)
	return nil
}

// applyBaseProps fills the properties every object carries.
func applyBaseProps(obj *Object) {
	obj.Set(nspi.PropertyValue{Tag: nspi.PidTagDisplayType, Value: int32(obj.DisplayType)})
	obj.Set(nspi.PropertyValue{Tag: nspi.PidTagObjectType, Value: int32(obj.DisplayType.ObjectType())})
	obj.SetString(nspi.PidTagAddressBookObjectDistinguishedName, obj.DN)
	if _, ok := obj.Get(nspi.PidTagEmailAddress); !ok {
		obj.SetString(nspi.PidTagEmailAddress, obj.DN)
	}
	if _, ok := obj.Get(nspi.PidTagAddressType); !ok && obj.IsAddressable() {
		obj.SetString(nspi.PidTagAddressType, "EX")
	}
}

// Object returns the object with the given MId.
func (s *Store) Object(mid nspi.MId) (*Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[mid]
	return obj, ok
}

// ObjectByDN returns the object with the given DN, compared case-insensitively.
func (s *Store) ObjectByDN(dn string) (*Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mid, ok := s.byDN[normalizeDN(dn)]
	if !ok {
		return nil, false
	}
	return s.objects[mid], true
}

// MIdByDN returns the MId for dn, or 0 when no object has that DN.
func (s *Store) MIdByDN(dn string) nspi.MId {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byDN[normalizeDN(dn)]
}

// Container returns a copy of the container with the given ID.
func (s *Store) Container(id uint32) (*Container, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.containers[id]
	if !ok {
		return nil, false
	}
	return c.snapshot(), true
}

// Contents returns a snapshot of the objects in container id.
func (s *Store) Contents(id uint32) ([]*Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.containers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrContainerNotFound, id)
	}
	out := make([]*Object, 0, len(c.members))
	for _, mid := range c.members {
		if obj, ok := s.objects[mid]; ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

// InContainer reports whether mid is a member of container id.
func (s *Store) InContainer(id uint32, mid nspi.MId) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.containers[id]
	return ok && c.hasMember(mid)
}

// Hierarchy returns copies of the containers in depth-first order, Global
// Address List first.
func (s *Store) Hierarchy() []*Container {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Container, 0, len(s.hierarchy))
	for _, id := range s.hierarchy {
		out = append(out, s.containers[id].snapshot())
	}
	return out
}

// HierarchyVersion returns a number that changes whenever the container
// hierarchy changes.
func (s *Store) HierarchyVersion() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hierarchyVersion
}

// Templates returns every template for the given locale.
func (s *Store) Templates(locale uint32) []*Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Template
	for _, t := range s.templates {
		if t.Locale == locale {
			out = append(out, t)
		}
	}
	return out
}

// TemplateFor returns the template for a display type and locale.
func (s *Store) TemplateFor(dt nspi.DisplayType, locale uint32) (*Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.templates {
		if t.Type == dt && t.Locale == locale {
			return t, true
		}
	}
	return nil, false
}

// TemplateByDN returns the template whose object has the given DN.
func (s *Store) TemplateByDN(dn string) (*Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := normalizeDN(dn)
	for _, t := range s.templates {
		if normalizeDN(t.Object.DN) == key {
			return t, true
		}
	}
	return nil, false
}

// Modify applies fn to a copy of the object and publishes the copy when fn
// succeeds. A failing fn leaves the store untouched.
func (s *Store) Modify(mid nspi.MId, fn func(obj *Object) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	cur, ok := s.objects[mid]
	if !ok {
		return fmt.Errorf("%w: 0x%X", ErrObjectNotFound, uint32(mid))
	}

	next := cur.Clone()
	if err := fn(next); err != nil {
		return err
	}
	next.MId, next.DN, next.GUID = cur.MId, cur.DN, cur.GUID

	if s.persister != nil {
		if err := s.persister.Put(next); err != nil {
			return fmt.Errorf("directory: persist 0x%X: %w", uint32(mid), err)
		}
	}

	s.objects[mid] = next
	for _, c := range s.containers {
		if c.Object != nil && c.Object.MId == mid {
			c.Object = next
		}
	}
	return nil
}

// Restore overlays persisted property state onto objects with a matching
// GUID. Persisted objects unknown to the store are skipped.
func (s *Store) Restore() (int, error) {
	if s.persister == nil {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	restored := 0
	err := s.persister.ForEach(func(p *Object) error {
		mid, ok := s.byGUID[p.GUID]
		if !ok {
			return nil
		}
		cur := s.objects[mid]
		next := cur.Clone()
		next.props = make(map[uint16]nspi.PropertyValue, len(p.props))
		for id, v := range p.props {
			next.props[id] = v.Clone()
		}
		applyBaseProps(next)
		s.objects[mid] = next
		for _, c := range s.containers {
			if c.Object != nil && c.Object.MId == mid {
				c.Object = next
			}
		}
		restored++
		return nil
	})
	return restored, err
}

// Len returns the number of objects, templates and containers included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// MIds returns every object MId in ascending order.
func (s *Store) MIds() []nspi.MId {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]nspi.MId, 0, len(s.objects))
	for mid := range s.objects {
		out = append(out, mid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Close closes the persister.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.persister != nil {
		return s.persister.Close()
	}
	return nil
}
