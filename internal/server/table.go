package server

import (
	"github.com/KilimcininKorOglu/nspid/internal/filter"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
	"github.com/KilimcininKorOglu/nspid/internal/props"
	"github.com/KilimcininKorOglu/nspid/internal/table"
)

// UpdateStatRequest holds the parameters of UpdateStat.
type UpdateStatRequest struct {
	Reserved uint32    `json:"reserved"`
	Stat     nspi.STAT `json:"stat"`
	// WantDelta asks for the distance actually moved.
	WantDelta bool `json:"wantDelta"`
}

// UpdateStatResult holds the outcome of UpdateStat. Stat equals the input
// on failure.
type UpdateStatResult struct {
	Result
	Stat  nspi.STAT `json:"stat"`
	Delta *int32    `json:"delta,omitempty"`
}

// UpdateStat moves the cursor by Stat.Delta rows.
func (s *Server) UpdateStat(sess *Session, req UpdateStatRequest) UpdateStatResult {
	res := UpdateStatResult{Stat: req.Stat}
	stat, delta, err := s.engine.UpdateStat(req.Stat)
	res.Code = tableCode(err)
	if err == nil {
		res.Stat = stat
		if req.WantDelta {
			res.Delta = &delta
		}
	}
	s.trace("UpdateStat", res.Code, req.Stat, "delta", req.Stat.Delta)
	return res
}

// QueryRowsRequest holds the parameters of QueryRows. A non-nil
// ExplicitTable is read instead of the container.
type QueryRowsRequest struct {
	Flags         uint32            `json:"flags"`
	Stat          nspi.STAT         `json:"stat"`
	ExplicitTable []nspi.MId        `json:"explicitTable,omitempty"`
	Count         uint32            `json:"count"`
	PropTags      nspi.PropTagArray `json:"propTags,omitempty"`
}

// RowsResult holds the outcome of the cursor operations that return rows.
type RowsResult struct {
	Result
	Stat nspi.STAT           `json:"stat"`
	Rows nspi.PropertyRowSet `json:"rows,omitempty"`
}

// QueryRows returns up to Count rows from the cursor and advances it.
func (s *Server) QueryRows(sess *Session, req QueryRowsRequest) RowsResult {
	res := RowsResult{Stat: req.Stat}
	if !s.rowCodePage(req.Stat.CodePage) {
		res.Code = nspi.InvalidCodepage
		s.trace("QueryRows", res.Code, req.Stat)
		return res
	}

	stat, mids, err := s.engine.QueryRows(req.Stat, req.ExplicitTable, req.Count)
	res.Code = tableCode(err)
	if err == nil {
		tags := req.PropTags
		if tags == nil {
			tags = props.DefaultColumns
		}
		res.Stat = stat
		res.Rows = s.builder.Rows(mids, tags, rowOptions(req.Flags, req.Stat))
	}
	s.trace("QueryRows", res.Code, req.Stat, "count", req.Count, "rows", len(res.Rows))
	return res
}

// SeekEntriesRequest holds the parameters of SeekEntries. Target carries
// the display name or phonetic display name to seek to.
type SeekEntriesRequest struct {
	Reserved      uint32             `json:"reserved"`
	Stat          nspi.STAT          `json:"stat"`
	Target        nspi.PropertyValue `json:"target"`
	ExplicitTable []nspi.MId         `json:"explicitTable,omitempty"`
	PropTags      nspi.PropTagArray  `json:"propTags,omitempty"`
}

// SeekEntries positions the cursor at the first row at or after Target.
// Rows from there are returned when PropTags is given.
func (s *Server) SeekEntries(sess *Session, req SeekEntriesRequest) RowsResult {
	res := RowsResult{Stat: req.Stat}
	if !s.rowCodePage(req.Stat.CodePage) {
		res.Code = nspi.InvalidCodepage
		s.trace("SeekEntries", res.Code, req.Stat)
		return res
	}

	target, err := s.converter.ToStored(req.Target, req.Stat.CodePage)
	if err != nil {
		res.Code = nspi.GeneralFailure
		s.trace("SeekEntries", res.Code, req.Stat, "error", err)
		return res
	}
	str, _ := target.Value.(string)

	stat, mids, err := s.engine.SeekEntries(req.Stat, req.Target.Tag, str, req.ExplicitTable)
	res.Code = tableCode(err)
	if err == nil {
		res.Stat = stat
		if req.PropTags != nil {
			res.Rows = s.builder.Rows(mids, req.PropTags, rowOptions(0, req.Stat))
		}
	}
	s.trace("SeekEntries", res.Code, req.Stat, "target", str)
	return res
}

// GetMatchesRequest holds the parameters of GetMatches. Reserved must be
// nil. Reserved2 names the link property expanded for the DisplayName_RO
// and DisplayName_W sort types; zero selects PidTagAddressBookMember.
// PropName is accepted and ignored.
type GetMatchesRequest struct {
	Reserved1   uint32              `json:"reserved1"`
	Stat        nspi.STAT           `json:"stat"`
	Reserved    nspi.PropTagArray   `json:"reserved,omitempty"`
	Reserved2   nspi.PropTag        `json:"reserved2"`
	Restriction *filter.Restriction `json:"-"`
	PropName    *string             `json:"propName,omitempty"`
	Requested   uint32              `json:"requested"`
	PropTags    nspi.PropTagArray   `json:"propTags,omitempty"`
}

// MatchesResult holds the outcome of GetMatches.
type MatchesResult struct {
	Result
	Stat nspi.STAT           `json:"stat"`
	MIds []nspi.MId          `json:"mids,omitempty"`
	Rows nspi.PropertyRowSet `json:"rows,omitempty"`
}

// GetMatches builds an explicit table from a restriction over the
// container, or from the object at the cursor when no restriction is given.
func (s *Server) GetMatches(sess *Session, req GetMatchesRequest) MatchesResult {
	res := MatchesResult{Stat: req.Stat}
	switch {
	case req.Reserved != nil:
		res.Code = nspi.TooComplex
	case !s.rowCodePage(req.Stat.CodePage):
		res.Code = nspi.InvalidCodepage
	}
	if res.Code != nspi.Success {
		s.trace("GetMatches", res.Code, req.Stat)
		return res
	}

	restriction, err := s.storedRestriction(req.Restriction, req.Stat.CodePage)
	if err != nil {
		res.Code = nspi.TooComplex
		s.trace("GetMatches", res.Code, req.Stat, "error", err)
		return res
	}

	stat, mids, err := s.engine.GetMatches(req.Stat, table.MatchRequest{
		Restriction: restriction,
		Requested:   req.Requested,
		LinkTag:     req.Reserved2,
	})
	res.Code = tableCode(err)
	if err == nil {
		res.Stat = stat
		res.MIds = mids
		if req.PropTags != nil {
			res.Rows = s.builder.Rows(mids, req.PropTags, rowOptions(0, req.Stat))
		}
	}
	s.trace("GetMatches", res.Code, req.Stat, "requested", req.Requested, "matches", len(res.MIds))
	return res
}

// storedRestriction returns a copy of r whose string operands are decoded
// to their stored form.
func (s *Server) storedRestriction(r *filter.Restriction, cp uint32) (*filter.Restriction, error) {
	if r == nil {
		return nil, nil
	}
	out := &filter.Restriction{
		Type:       r.Type,
		FuzzyLevel: r.FuzzyLevel,
		Relop:      r.Relop,
		PropTag:    r.PropTag,
	}
	if r.Value != nil {
		v, err := s.converter.ToStored(*r.Value, cp)
		if err != nil {
			return nil, err
		}
		out.Value = &v
	}
	if r.Child != nil {
		child, err := s.storedRestriction(r.Child, cp)
		if err != nil {
			return nil, err
		}
		out.Child = child
	}
	for _, c := range r.Children {
		child, err := s.storedRestriction(c, cp)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, child)
	}
	return out, nil
}

// ResortRestrictionRequest holds the parameters of ResortRestriction.
type ResortRestrictionRequest struct {
	Reserved uint32     `json:"reserved"`
	Stat     nspi.STAT  `json:"stat"`
	MIds     []nspi.MId `json:"mids"`
}

// ResortResult holds the outcome of ResortRestriction.
type ResortResult struct {
	Result
	Stat nspi.STAT  `json:"stat"`
	MIds []nspi.MId `json:"mids,omitempty"`
}

// ResortRestriction sorts a list of MIds in the order of the container.
func (s *Server) ResortRestriction(sess *Session, req ResortRestrictionRequest) ResortResult {
	res := ResortResult{Stat: req.Stat}
	stat, mids, err := s.engine.ResortRestriction(req.Stat, req.MIds)
	res.Code = tableCode(err)
	if err == nil {
		res.Stat = stat
		res.MIds = mids
	}
	s.trace("ResortRestriction", res.Code, req.Stat, "mids", len(req.MIds))
	return res
}

// CompareMIdsRequest holds the parameters of CompareMIds.
type CompareMIdsRequest struct {
	Reserved uint32    `json:"reserved"`
	Stat     nspi.STAT `json:"stat"`
	MId1     nspi.MId  `json:"mid1"`
	MId2     nspi.MId  `json:"mid2"`
}

// CompareResult holds the outcome of CompareMIds.
type CompareResult struct {
	Result
	Comparison int32 `json:"comparison"`
}

// CompareMIds orders two rows of the container.
func (s *Server) CompareMIds(sess *Session, req CompareMIdsRequest) CompareResult {
	var res CompareResult
	cmp, err := s.engine.CompareMIds(req.Stat, req.MId1, req.MId2)
	res.Code = tableCode(err)
	if err == nil {
		res.Comparison = cmp
	}
	s.trace("CompareMIds", res.Code, req.Stat, "mid1", uint32(req.MId1), "mid2", uint32(req.MId2))
	return res
}
