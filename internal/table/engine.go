package table

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/KilimcininKorOglu/nspid/internal/directory"
	"github.com/KilimcininKorOglu/nspid/internal/filter"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// Engine errors.
var (
	ErrContainerNotFound = errors.New("table: container not found")
	ErrUnsupportedSort   = errors.New("table: unsupported sort type")
	ErrPositionNotFound  = errors.New("table: current record not found")
	ErrRecordNotFound    = errors.New("table: record not found")
	ErrInvalidTarget     = errors.New("table: seek target does not match sort type")
	ErrZeroCount         = errors.New("table: row count is zero")
	ErrTableTooBig       = errors.New("table: too many matching rows")
	ErrTooComplex        = errors.New("table: restriction too complex")
)

// DefaultLinkTag is the object-valued property GetMatches expands when no
// other is named.
var DefaultLinkTag = nspi.PidTagAddressBookMember

// Config holds engine limits.
type Config struct {
	// PhoneticSort enables SortTypePhoneticDisplayName.
	PhoneticSort bool
	// MaxRestrictionDepth bounds restriction nesting. Zero disables the
	// check.
	MaxRestrictionDepth int
	// MaxExplicitTable caps the number of rows GetMatches may return.
	// Zero disables the cap.
	MaxExplicitTable int
}

// DefaultConfig returns the default engine limits.
func DefaultConfig() Config {
	return Config{
		PhoneticSort:        true,
		MaxRestrictionDepth: 8,
		MaxExplicitTable:    10000,
	}
}

// Engine runs table operations against a directory store.
type Engine struct {
	store     *directory.Store
	config    Config
	evaluator *filter.Evaluator
}

// NewEngine creates a table engine over store.
func NewEngine(store *directory.Store, config Config) *Engine {
	return &Engine{
		store:     store,
		config:    config,
		evaluator: filter.NewEvaluator(),
	}
}

// Config returns the engine limits.
func (e *Engine) Config() Config {
	return e.config
}

// SupportsSort reports whether sortType can order a container table.
func (e *Engine) SupportsSort(sortType nspi.SortType) bool {
	switch sortType {
	case nspi.SortTypeDisplayName:
		return true
	case nspi.SortTypePhoneticDisplayName:
		return e.config.PhoneticSort
	}
	return false
}

// Open builds the sorted view of the container named by stat.
func (e *Engine) Open(stat nspi.STAT) (*View, error) {
	if !e.SupportsSort(stat.SortType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSort, stat.SortType)
	}
	objects, err := e.store.Contents(stat.ContainerID)
	if err != nil {
		if errors.Is(err, directory.ErrContainerNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrContainerNotFound, stat.ContainerID)
		}
		return nil, err
	}
	return newView(stat.ContainerID, stat.SortType, stat.SortLocale, objects), nil
}

// UpdateStat moves the cursor by stat.Delta rows, clamped to the table,
// and returns the updated STAT with the distance actually moved.
func (e *Engine) UpdateStat(stat nspi.STAT) (nspi.STAT, int32, error) {
	view, err := e.Open(stat)
	if err != nil {
		return stat, 0, err
	}
	pos, ok := view.Position(stat.CurrentRec, stat.NumPos)
	if !ok {
		return stat, 0, fmt.Errorf("%w: 0x%X", ErrPositionNotFound, uint32(stat.CurrentRec))
	}

	next := clamp(pos+int(stat.Delta), 0, view.Len())
	return settle(stat, view, next), int32(next - pos), nil
}

// settle positions stat at row i of view.
func settle(stat nspi.STAT, view *View, i int) nspi.STAT {
	stat.CurrentRec = view.MIdAt(i)
	stat.NumPos = uint32(i)
	stat.TotalRecs = uint32(view.Len())
	stat.Delta = 0
	return stat
}

// QueryRows returns up to count MIds starting at the cursor after applying
// stat.Delta, and advances the cursor past them. A non-nil explicit table
// is read in its own order instead of the container.
func (e *Engine) QueryRows(stat nspi.STAT, explicit []nspi.MId, count uint32) (nspi.STAT, []nspi.MId, error) {
	if explicit != nil {
		return queryExplicit(stat, explicit, count)
	}
	if count == 0 {
		return stat, nil, ErrZeroCount
	}

	view, err := e.Open(stat)
	if err != nil {
		return stat, nil, err
	}
	pos, ok := view.Position(stat.CurrentRec, stat.NumPos)
	if !ok {
		return stat, nil, fmt.Errorf("%w: 0x%X", ErrPositionNotFound, uint32(stat.CurrentRec))
	}

	start := clamp(pos+int(stat.Delta), 0, view.Len())
	mids := view.Slice(start, start+int(count))
	return settle(stat, view, start+len(mids)), mids, nil
}

func queryExplicit(stat nspi.STAT, explicit []nspi.MId, count uint32) (nspi.STAT, []nspi.MId, error) {
	pos, ok := explicitPosition(explicit, stat.CurrentRec, stat.NumPos)
	if !ok {
		return stat, nil, fmt.Errorf("%w: 0x%X", ErrPositionNotFound, uint32(stat.CurrentRec))
	}

	start := clamp(pos+int(stat.Delta), 0, len(explicit))
	end := clamp(start+int(count), 0, len(explicit))
	mids := nspi.CloneMIds(explicit[start:end])

	stat.CurrentRec = nspi.MIDEndOfTable
	if end < len(explicit) {
		stat.CurrentRec = explicit[end]
	}
	stat.NumPos = uint32(end)
	stat.TotalRecs = uint32(len(explicit))
	stat.Delta = 0
	return stat, mids, nil
}

// explicitPosition locates the cursor in an explicit table.
func explicitPosition(explicit []nspi.MId, mid nspi.MId, numPos uint32) (int, bool) {
	switch mid {
	case nspi.MIDBeginningOfTable:
		return 0, true
	case nspi.MIDEndOfTable:
		return len(explicit), true
	case nspi.MIDCurrent:
		return clamp(int(numPos), 0, len(explicit)), true
	}
	for i, m := range explicit {
		if m == mid {
			return i, true
		}
	}
	return 0, false
}

// CheckSeekTarget verifies that tag is the sort property of sortType.
func (e *Engine) CheckSeekTarget(sortType nspi.SortType, tag nspi.PropTag) error {
	if !e.SupportsSort(sortType) {
		return fmt.Errorf("%w: %s", ErrUnsupportedSort, sortType)
	}
	if tag.ID() != SortTag(sortType).ID() {
		return fmt.Errorf("%w: %s for %s", ErrInvalidTarget, tag, sortType)
	}
	switch tag.Type() {
	case nspi.PtypString, nspi.PtypString8:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidTarget, tag.Type())
}

// SeekEntries positions the cursor at the first row whose sort property
// collates at or after target, and returns the MIds from there to the end.
// With an explicit table the search runs over that table's rows in the
// table's order.
func (e *Engine) SeekEntries(stat nspi.STAT, targetTag nspi.PropTag, target string, explicit []nspi.MId) (nspi.STAT, []nspi.MId, error) {
	if err := e.CheckSeekTarget(stat.SortType, targetTag); err != nil {
		return stat, nil, err
	}

	view, err := e.Open(stat)
	if err != nil {
		return stat, nil, err
	}
	key := view.Key(target)

	if explicit != nil {
		for i, mid := range explicit {
			j, ok := view.Index(mid)
			if !ok {
				continue
			}
			if bytes.Compare(view.rows[j].key, key) >= 0 {
				stat.CurrentRec = mid
				stat.NumPos = uint32(i)
				stat.TotalRecs = uint32(len(explicit))
				stat.Delta = 0
				return stat, nspi.CloneMIds(explicit[i:]), nil
			}
		}
		return stat, nil, fmt.Errorf("%w: no row at or after %q", ErrPositionNotFound, target)
	}

	i, ok := view.Seek(key)
	if !ok {
		return stat, nil, fmt.Errorf("%w: no row at or after %q", ErrPositionNotFound, target)
	}
	return settle(stat, view, i), view.Slice(i, view.Len()), nil
}

// MatchRequest describes a GetMatches call.
type MatchRequest struct {
	// Restriction filters the container. When nil the table is derived
	// from the object at the cursor.
	Restriction *filter.Restriction
	// Requested is the most rows the caller accepts.
	Requested uint32
	// LinkTag names the object-valued property expanded for the
	// DisplayName_RO and DisplayName_W sort types. Zero selects
	// DefaultLinkTag.
	LinkTag nspi.PropTag
}

// GetMatches builds an explicit table. On success the cursor is reset to
// the beginning of the new table.
func (e *Engine) GetMatches(stat nspi.STAT, req MatchRequest) (nspi.STAT, []nspi.MId, error) {
	var (
		mids []nspi.MId
		err  error
	)
	if req.Restriction == nil {
		mids, err = e.objectTable(stat, req.LinkTag)
	} else {
		mids, err = e.restrict(stat, req.Restriction)
	}
	if err != nil {
		return stat, nil, err
	}

	limit := req.Requested
	if maxRows := e.config.MaxExplicitTable; maxRows > 0 && limit > uint32(maxRows) {
		limit = uint32(maxRows)
	}
	if uint32(len(mids)) > limit {
		return stat, nil, fmt.Errorf("%w: %d rows, %d requested", ErrTableTooBig, len(mids), req.Requested)
	}

	stat.CurrentRec = nspi.MIDBeginningOfTable
	stat.NumPos = 0
	stat.TotalRecs = uint32(len(mids))
	stat.Delta = 0
	return stat, mids, nil
}

// objectTable returns the table implied by the object at the cursor.
func (e *Engine) objectTable(stat nspi.STAT, linkTag nspi.PropTag) ([]nspi.MId, error) {
	obj, ok := e.store.Object(stat.CurrentRec)
	if !stat.CurrentRec.IsObject() || !ok {
		return nil, fmt.Errorf("%w: 0x%X", ErrRecordNotFound, uint32(stat.CurrentRec))
	}

	switch stat.SortType {
	case nspi.SortTypeDisplayNameRO, nspi.SortTypeDisplayNameW:
		if linkTag == 0 {
			linkTag = DefaultLinkTag
		}
		mids := []nspi.MId{}
		for _, dn := range obj.Strings(linkTag) {
			if mid := e.store.MIdByDN(dn); mid != 0 {
				mids = append(mids, mid)
			}
		}
		return mids, nil
	default:
		return []nspi.MId{obj.MId}, nil
	}
}

// restrict evaluates r over the container in view order.
func (e *Engine) restrict(stat nspi.STAT, r *filter.Restriction) ([]nspi.MId, error) {
	if !stat.SortType.IsTableSort() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSort, stat.SortType)
	}
	if err := filter.Validate(r, e.config.MaxRestrictionDepth); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTooComplex, err)
	}
	view, err := e.Open(stat)
	if err != nil {
		return nil, err
	}

	mids := []nspi.MId{}
	for i := 0; i < view.Len(); i++ {
		obj := view.Object(i)
		if e.evaluator.Evaluate(r, obj) {
			mids = append(mids, obj.MId)
		}
	}
	return mids, nil
}

// ResortRestriction orders mids by the current sort type. MIds that are not
// rows of the container are dropped. The cursor keeps its record when that
// record survives, otherwise it moves to the first row.
func (e *Engine) ResortRestriction(stat nspi.STAT, mids []nspi.MId) (nspi.STAT, []nspi.MId, error) {
	view, err := e.Open(stat)
	if err != nil {
		return stat, nil, err
	}

	positions := make([]int, 0, len(mids))
	seen := make(map[nspi.MId]bool, len(mids))
	for _, mid := range mids {
		if seen[mid] {
			continue
		}
		seen[mid] = true
		if i, ok := view.Index(mid); ok {
			positions = append(positions, i)
		}
	}
	sort.Ints(positions)

	out := make([]nspi.MId, len(positions))
	cur := -1
	for i, p := range positions {
		out[i] = view.MIdAt(p)
		if out[i] == stat.CurrentRec {
			cur = i
		}
	}

	switch {
	case cur >= 0:
		stat.NumPos = uint32(cur)
	case len(out) > 0:
		stat.CurrentRec = out[0]
		stat.NumPos = 0
	default:
		stat.CurrentRec = nspi.MIDEndOfTable
		stat.NumPos = 0
	}
	stat.TotalRecs = uint32(len(out))
	stat.Delta = 0
	return stat, out, nil
}

// CompareMIds orders two rows of the container: negative when mid1 comes
// first, zero when equal, positive otherwise.
func (e *Engine) CompareMIds(stat nspi.STAT, mid1, mid2 nspi.MId) (int32, error) {
	objects, err := e.store.Contents(stat.ContainerID)
	if err != nil {
		if errors.Is(err, directory.ErrContainerNotFound) {
			return 0, fmt.Errorf("%w: %d", ErrContainerNotFound, stat.ContainerID)
		}
		return 0, err
	}

	sortType := stat.SortType
	if !e.SupportsSort(sortType) {
		sortType = nspi.SortTypeDisplayName
	}
	view := newView(stat.ContainerID, sortType, stat.SortLocale, objects)

	i, ok := view.Index(mid1)
	if !ok {
		return 0, fmt.Errorf("%w: 0x%X", ErrRecordNotFound, uint32(mid1))
	}
	j, ok := view.Index(mid2)
	if !ok {
		return 0, fmt.Errorf("%w: 0x%X", ErrRecordNotFound, uint32(mid2))
	}
	return int32(i - j), nil
}
