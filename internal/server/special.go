package server

import (
	"github.com/KilimcininKorOglu/nspid/internal/directory"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
	"github.com/KilimcininKorOglu/nspid/internal/props"
)

// hierarchyColumns are the columns of the hierarchy table.
var hierarchyColumns = nspi.PropTagArray{
	nspi.PidTagEntryID,
	nspi.PidTagContainerFlags,
	nspi.PidTagDepth,
	nspi.PidTagAddressBookContainerID,
	nspi.PidTagDisplayName,
	nspi.PidTagAddressBookIsMaster,
	nspi.PidTagAddressBookParentEntryID,
}

// creationColumns are the columns of the address creation table.
var creationColumns = nspi.PropTagArray{
	nspi.PidTagEntryID,
	nspi.PidTagDisplayName,
	nspi.PidTagAddressType,
	nspi.PidTagDisplayType,
	nspi.PidTagSelectable,
	nspi.PidTagInstanceKey,
}

// GetSpecialTableRequest holds the parameters of GetSpecialTable. Version
// is the hierarchy version the caller already holds, if any.
type GetSpecialTableRequest struct {
	Flags   uint32    `json:"flags"`
	Stat    nspi.STAT `json:"stat"`
	Version *uint32   `json:"version,omitempty"`
}

// SpecialTableResult holds the outcome of GetSpecialTable.
type SpecialTableResult struct {
	Result
	Version uint32              `json:"version"`
	Rows    nspi.PropertyRowSet `json:"rows,omitempty"`
}

// GetSpecialTable returns the container hierarchy, or the address creation
// templates for Stat.TemplateLocale when FlagAddressCreationTemplates is
// set. A caller already holding the current hierarchy version gets no
// rows.
func (s *Server) GetSpecialTable(sess *Session, req GetSpecialTableRequest) SpecialTableResult {
	var res SpecialTableResult
	unicode := req.Flags&nspi.FlagUnicodeStrings != 0
	if !s.registry.Supports(req.Stat.CodePage) || (!unicode && req.Stat.CodePage == nspi.CodePageWinUnicode) {
		res.Code = nspi.InvalidCodepage
		s.trace("GetSpecialTable", res.Code, req.Stat)
		return res
	}

	strType := nspi.PtypString8
	if unicode {
		strType = nspi.PtypString
	}
	opts := props.Options{CodePage: req.Stat.CodePage}

	res.Code = nspi.Success
	if req.Flags&nspi.FlagAddressCreationTemplates != 0 {
		res.Rows = s.creationTable(req.Stat.TemplateLocale, strType, opts)
		s.trace("GetSpecialTable", res.Code, req.Stat, "templates", len(res.Rows))
		return res
	}

	res.Version = s.store.HierarchyVersion()
	if req.Version != nil && *req.Version == res.Version {
		res.Rows = nspi.PropertyRowSet{}
	} else {
		res.Rows = s.hierarchyTable(strType, opts)
	}
	s.trace("GetSpecialTable", res.Code, req.Stat, "version", res.Version, "rows", len(res.Rows))
	return res
}

func (s *Server) hierarchyTable(strType nspi.PropType, opts props.Options) nspi.PropertyRowSet {
	tags := withStringType(hierarchyColumns, strType)
	rows := nspi.PropertyRowSet{}
	for _, c := range s.store.Hierarchy() {
		if c.Object == nil {
			continue
		}
		var row nspi.PropertyRow
		for _, v := range s.builder.Row(c.Object, tags, opts) {
			if v.IsError() && v.Tag.ID() == nspi.PidTagAddressBookParentEntryID.ID() {
				continue
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *Server) creationTable(locale uint32, strType nspi.PropType, opts props.Options) nspi.PropertyRowSet {
	tags := withStringType(creationColumns, strType)
	rows := nspi.PropertyRowSet{}
	for _, t := range s.store.Templates(locale) {
		if t.Creation {
			rows = append(rows, s.builder.Row(t.Object, tags, opts))
		}
	}
	return rows
}

// withStringType returns tags with string columns set to strType.
func withStringType(tags nspi.PropTagArray, strType nspi.PropType) nspi.PropTagArray {
	out := make(nspi.PropTagArray, len(tags))
	for i, tag := range tags {
		out[i] = tag
		if typ := tag.Type(); typ == nspi.PtypString || typ == nspi.PtypString8 {
			out[i] = tag.WithType(strType)
		}
	}
	return out
}

// GetTemplateInfoRequest holds the parameters of GetTemplateInfo. A
// non-empty DN selects the template directly; Type and LocaleID are then
// ignored.
type GetTemplateInfoRequest struct {
	Flags    uint32           `json:"flags"`
	Type     nspi.DisplayType `json:"type"`
	DN       *string          `json:"dn,omitempty"`
	CodePage uint32           `json:"codePage"`
	LocaleID uint32           `json:"localeId"`
}

// GetTemplateInfo returns the parts of a template selected by the TI_*
// flags.
func (s *Server) GetTemplateInfo(sess *Session, req GetTemplateInfoRequest) RowResult {
	var res RowResult
	res.Code = s.templateInfo(req, &res.Row)
	if !res.OK() {
		res.Row = nil
	}
	s.logger.Debug("nspi operation",
		"op", "GetTemplateInfo",
		"code", res.Code.String(),
		"type", req.Type.String(),
		"locale", req.LocaleID,
	)
	return res
}

func (s *Server) templateInfo(req GetTemplateInfoRequest, row *nspi.PropertyRow) nspi.ErrorCode {
	if !s.eightBitCodePage(req.CodePage) {
		return nspi.InvalidCodepage
	}

	var (
		t  *directory.Template
		ok bool
	)
	if req.DN != nil && *req.DN != "" {
		t, ok = s.store.TemplateByDN(*req.DN)
	} else {
		t, ok = s.store.TemplateFor(req.Type, req.LocaleID)
	}
	if !ok {
		return nspi.InvalidLocale
	}

	text := func(tag nspi.PropTag, str string) nspi.PropertyValue {
		if str == "" {
			return nspi.ErrorValue(tag.WithType(nspi.PtypString8), nspi.NotFound)
		}
		return s.converter.Convert(nspi.PropertyValue{Tag: tag, Value: str}, nspi.PtypString8, req.CodePage)
	}
	blob := func(tag nspi.PropTag, b []byte) nspi.PropertyValue {
		if len(b) == 0 {
			return nspi.ErrorValue(tag, nspi.NotFound)
		}
		return nspi.PropertyValue{Tag: tag, Value: append([]byte(nil), b...)}
	}

	out := nspi.PropertyRow{}
	if req.Flags&nspi.TITemplate != 0 {
		out = append(out, blob(nspi.PidTagTemplateData, t.TemplateData))
	}
	if req.Flags&nspi.TIScript != 0 {
		out = append(out, blob(nspi.PidTagScriptData, t.ScriptData))
	}
	if req.Flags&nspi.TIEmt != 0 {
		out = append(out, text(nspi.PidTagAddressType, t.AddressType))
	}
	if req.Flags&nspi.TIHelpFileName != 0 {
		out = append(out, text(nspi.PidTagAddressBookHelpFileName, t.HelpFileName))
	}
	if req.Flags&nspi.TIHelpFileContents != 0 {
		out = append(out, blob(nspi.PidTagAddressBookHelpFileContents, t.HelpFileContents))
	}

	*row = out
	if out.HasErrors() {
		return nspi.ErrorsReturned
	}
	return nspi.Success
}
