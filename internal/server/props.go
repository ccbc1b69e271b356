package server

import (
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
	"github.com/KilimcininKorOglu/nspid/internal/props"
)

// GetPropsRequest holds the parameters of GetProps. A nil PropTags
// selects every property of the object.
type GetPropsRequest struct {
	Flags    uint32            `json:"flags"`
	Stat     nspi.STAT         `json:"stat"`
	PropTags nspi.PropTagArray `json:"propTags,omitempty"`
}

// RowResult holds the outcome of the operations that return one row.
type RowResult struct {
	Result
	Row nspi.PropertyRow `json:"row,omitempty"`
}

// GetProps returns properties of the object at Stat.CurrentRec. When the
// container or the object cannot be located every slot is valueless and
// the code is ErrorsReturned.
func (s *Server) GetProps(sess *Session, req GetPropsRequest) RowResult {
	var res RowResult
	if !s.rowCodePage(req.Stat.CodePage) {
		res.Code = nspi.InvalidCodepage
		s.trace("GetProps", res.Code, req.Stat)
		return res
	}

	obj, found := s.store.Object(req.Stat.CurrentRec)
	if _, ok := s.store.Container(req.Stat.ContainerID); !ok || !req.Stat.CurrentRec.IsObject() {
		found = false
	}

	tags := req.PropTags
	switch {
	case tags != nil:
	case found:
		tags = props.Unspecified(s.builder.PropList(obj, req.Flags))
	default:
		tags = props.DefaultColumns
	}
	if !found {
		obj = nil
	}

	res.Row = s.builder.Row(obj, tags, rowOptions(req.Flags, req.Stat))
	res.Code = nspi.Success
	if res.Row.HasErrors() {
		res.Code = nspi.ErrorsReturned
	}
	s.trace("GetProps", res.Code, req.Stat, "tags", len(tags))
	return res
}

// GetPropListRequest holds the parameters of GetPropList.
type GetPropListRequest struct {
	Flags    uint32   `json:"flags"`
	MId      nspi.MId `json:"mid"`
	CodePage uint32   `json:"codePage"`
}

// PropTagsResult holds the outcome of GetPropList and QueryColumns.
type PropTagsResult struct {
	Result
	PropTags nspi.PropTagArray `json:"propTags,omitempty"`
}

// GetPropList lists the properties that have a value on an object. MId 0
// names the default global address book object and lists every known
// property.
func (s *Server) GetPropList(sess *Session, req GetPropListRequest) PropTagsResult {
	var res PropTagsResult
	switch {
	case !s.eightBitCodePage(req.CodePage):
		res.Code = nspi.InvalidCodepage
	case req.MId == 0:
		res.Code = nspi.Success
		res.PropTags = knownColumns(false)
	default:
		obj, ok := s.store.Object(req.MId)
		if !ok {
			res.Code = nspi.NotFound
			break
		}
		res.Code = nspi.Success
		res.PropTags = s.builder.PropList(obj, req.Flags)
	}
	s.logger.Debug("nspi operation", "op", "GetPropList", "code", res.Code.String(), "mid", uint32(req.MId))
	return res
}

// QueryColumns lists every property the server knows. String types are
// reported as 8-bit unless FlagUnicodeProptypes is set.
func (s *Server) QueryColumns(sess *Session, flags uint32) PropTagsResult {
	res := PropTagsResult{
		Result:   Result{Code: nspi.Success},
		PropTags: knownColumns(flags&nspi.FlagUnicodeProptypes != 0),
	}
	s.logger.Debug("nspi operation", "op", "QueryColumns", "code", res.Code.String(), "columns", len(res.PropTags))
	return res
}

func knownColumns(unicode bool) nspi.PropTagArray {
	known := nspi.KnownTags()
	out := make(nspi.PropTagArray, len(known))
	for i, tag := range known {
		if unicode {
			out[i] = tag
			continue
		}
		out[i] = props.ReportedType(tag)
	}
	return out
}

// DNToMIdRequest holds the parameters of DNToMId.
type DNToMIdRequest struct {
	Reserved uint32   `json:"reserved"`
	Names    []string `json:"names"`
}

// MIdsResult holds the outcome of DNToMId.
type MIdsResult struct {
	Result
	MIds []nspi.MId `json:"mids"`
}

// DNToMId maps distinguished names to MIds. Unknown names map to 0.
func (s *Server) DNToMId(sess *Session, req DNToMIdRequest) MIdsResult {
	res := MIdsResult{
		Result: Result{Code: nspi.Success},
		MIds:   make([]nspi.MId, len(req.Names)),
	}
	for i, dn := range req.Names {
		res.MIds[i] = s.store.MIdByDN(dn)
	}
	s.logger.Debug("nspi operation", "op", "DNToMId", "code", res.Code.String(), "names", len(req.Names))
	return res
}
