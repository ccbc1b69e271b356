package server

import (
	"github.com/KilimcininKorOglu/nspid/internal/anr"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
	"github.com/KilimcininKorOglu/nspid/internal/props"
)

// ResolveNamesRequest holds the parameters of ResolveNames. Names are
// 8-bit strings in the STAT code page; a nil element is a null string.
type ResolveNamesRequest struct {
	Reserved uint32            `json:"reserved"`
	Stat     nspi.STAT         `json:"stat"`
	PropTags nspi.PropTagArray `json:"propTags,omitempty"`
	Names    [][]byte          `json:"names"`
}

// ResolveNamesWRequest holds the parameters of ResolveNamesW. A nil
// element is a null string.
type ResolveNamesWRequest struct {
	Reserved uint32            `json:"reserved"`
	Stat     nspi.STAT         `json:"stat"`
	PropTags nspi.PropTagArray `json:"propTags,omitempty"`
	Names    []*string         `json:"names"`
}

// ResolveNamesResult holds the outcome of ResolveNames and ResolveNamesW.
// MIds is aligned with the input names; Rows holds one row per resolved
// name in input order.
type ResolveNamesResult struct {
	Result
	MIds []nspi.MId          `json:"mids"`
	Rows nspi.PropertyRowSet `json:"rows"`
}

// ResolveNames resolves 8-bit names decoded with the STAT code page.
// CP_WINUNICODE and unsupported code pages yield InvalidCodepage.
func (s *Server) ResolveNames(sess *Session, req ResolveNamesRequest) ResolveNamesResult {
	if !s.eightBitCodePage(req.Stat.CodePage) {
		s.trace("ResolveNames", nspi.InvalidCodepage, req.Stat)
		return ResolveNamesResult{Result: Result{Code: nspi.InvalidCodepage}}
	}

	names := make([]string, len(req.Names))
	for i, b := range req.Names {
		if b == nil {
			continue
		}
		name, err := s.converter.DecodeString(b, req.Stat.CodePage)
		if err != nil {
			s.trace("ResolveNames", nspi.InvalidCodepage, req.Stat, "error", err)
			return ResolveNamesResult{Result: Result{Code: nspi.InvalidCodepage}}
		}
		names[i] = name
	}

	res := s.resolve(req.Stat, req.PropTags, names, false)
	s.trace("ResolveNames", res.Code, req.Stat, "names", len(names))
	return res
}

// ResolveNamesW resolves Unicode names. String columns requested without
// a type are returned as Unicode.
func (s *Server) ResolveNamesW(sess *Session, req ResolveNamesWRequest) ResolveNamesResult {
	if !s.rowCodePage(req.Stat.CodePage) {
		s.trace("ResolveNamesW", nspi.InvalidCodepage, req.Stat)
		return ResolveNamesResult{Result: Result{Code: nspi.InvalidCodepage}}
	}

	names := make([]string, len(req.Names))
	for i, p := range req.Names {
		if p != nil {
			names[i] = *p
		}
	}

	res := s.resolve(req.Stat, req.PropTags, names, true)
	s.trace("ResolveNamesW", res.Code, req.Stat, "names", len(names))
	return res
}

func (s *Server) resolve(stat nspi.STAT, tags nspi.PropTagArray, names []string, unicode bool) ResolveNamesResult {
	matches, err := s.resolver.Resolve(stat.ContainerID, names)
	if err != nil {
		return ResolveNamesResult{Result: Result{Code: resolverCode(err)}}
	}

	if tags == nil {
		tags = props.DefaultColumns
	}
	opts := props.Options{CodePage: stat.CodePage, ContainerID: stat.ContainerID, UnicodeStrings: unicode}

	res := ResolveNamesResult{
		Result: Result{Code: nspi.Success},
		MIds:   make([]nspi.MId, len(matches)),
		Rows:   nspi.PropertyRowSet{},
	}
	for i, m := range matches {
		res.MIds[i] = m.Outcome
		if m.Resolved() {
			res.Rows = append(res.Rows, s.builder.RowForMId(m.MId, tags, opts))
		}
	}
	return res
}

// ResolveOne resolves a single Unicode name in a container. It serves
// callers outside a session, such as the command line.
func (s *Server) ResolveOne(containerID uint32, name string) (anr.Match, error) {
	return s.resolver.ResolveOne(containerID, name)
}
