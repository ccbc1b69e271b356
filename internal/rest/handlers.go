package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/KilimcininKorOglu/nspid/internal/filter"
	"github.com/KilimcininKorOglu/nspid/internal/logging"
	"github.com/KilimcininKorOglu/nspid/internal/server"
)

// SessionHeader carries the handle returned by bind.
const SessionHeader = "X-NSPI-Session"

// maxBodySize bounds request bodies.
const maxBodySize = 4 << 20

// operation runs one NSPI operation from a request body.
type operation struct {
	// public operations run without a session.
	public bool
	run    func(h *Handlers, sess *server.Session, r *http.Request) (interface{}, error)
}

// operations maps the {operation} path segment to its handler.
var operations = map[string]operation{
	"bind":              {public: true, run: (*Handlers).bind},
	"unbind":            {run: (*Handlers).unbind},
	"resolveNames":      {run: (*Handlers).resolveNames},
	"resolveNamesW":     {run: (*Handlers).resolveNamesW},
	"updateStat":        {run: (*Handlers).updateStat},
	"queryRows":         {run: (*Handlers).queryRows},
	"seekEntries":       {run: (*Handlers).seekEntries},
	"getMatches":        {run: (*Handlers).getMatches},
	"resortRestriction": {run: (*Handlers).resortRestriction},
	"compareMIds":       {run: (*Handlers).compareMIds},
	"getProps":          {run: (*Handlers).getProps},
	"getPropList":       {run: (*Handlers).getPropList},
	"queryColumns":      {run: (*Handlers).queryColumns},
	"dnToMId":           {run: (*Handlers).dnToMId},
	"modProps":          {run: (*Handlers).modProps},
	"modLinkAtt":        {run: (*Handlers).modLinkAtt},
	"getSpecialTable":   {run: (*Handlers).getSpecialTable},
	"getTemplateInfo":   {run: (*Handlers).getTemplateInfo},
}

// Handlers contains the HTTP handlers.
type Handlers struct {
	nspi         *server.Server
	logger       logging.Logger
	startTime    time.Time
	requestCount int64
	activeConns  int64
}

// NewHandlers creates handlers over an NSPI server.
func NewHandlers(srv *server.Server, logger logging.Logger) *Handlers {
	return &Handlers{
		nspi:      srv,
		logger:    logger,
		startTime: time.Now(),
	}
}

// IncrementConnections increments the in-flight request count.
func (h *Handlers) IncrementConnections() {
	atomic.AddInt64(&h.activeConns, 1)
}

// DecrementConnections decrements the in-flight request count.
func (h *Handlers) DecrementConnections() {
	atomic.AddInt64(&h.activeConns, -1)
}

// HandleHealth handles GET /nspi/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	store := h.nspi.Store()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:           "ok",
		ServerGUID:       h.nspi.GUID().String(),
		Objects:          store.Len(),
		Sessions:         h.nspi.SessionCount(),
		HierarchyVersion: store.HierarchyVersion(),
		Requests:         atomic.LoadInt64(&h.requestCount),
		ActiveRequests:   atomic.LoadInt64(&h.activeConns),
		StartTime:        h.startTime,
		Uptime:           time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HandleOperation handles POST /nspi/v1/{operation}.
func (h *Handlers) HandleOperation(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&h.requestCount, 1)

	name := Param(r, "operation")
	op, ok := operations[name]
	if !ok {
		h.fail(w, fmt.Errorf("%w: %s", ErrUnknownOperation, name))
		return
	}

	var sess *server.Session
	if !op.public {
		handle := r.Header.Get(SessionHeader)
		if handle == "" {
			h.fail(w, ErrNoSession)
			return
		}
		if sess, ok = h.nspi.Session(handle); !ok {
			h.fail(w, ErrUnknownSession)
			return
		}
		setSession(w, handle)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	res, err := op.run(h, sess, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) fail(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err.Error())
}

// decode reads the JSON body into dst. An empty body leaves dst zero.
func decode(r *http.Request, dst interface{}) error {
	if r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func (h *Handlers) bind(_ *server.Session, r *http.Request) (interface{}, error) {
	var req server.BindRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.nspi.Bind(req), nil
}

func (h *Handlers) unbind(sess *server.Session, r *http.Request) (interface{}, error) {
	var req UnbindRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.nspi.Unbind(sess.Handle), nil
}

func (h *Handlers) resolveNames(sess *server.Session, r *http.Request) (interface{}, error) {
	var req server.ResolveNamesRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.nspi.ResolveNames(sess, req), nil
}

func (h *Handlers) resolveNamesW(sess *server.Session, r *http.Request) (interface{}, error) {
	var req server.ResolveNamesWRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.nspi.ResolveNamesW(sess, req), nil
}

func (h *Handlers) updateStat(sess *server.Session, r *http.Request) (interface{}, error) {
	var req server.UpdateStatRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.nspi.UpdateStat(sess, req), nil
}

func (h *Handlers) queryRows(sess *server.Session, r *http.Request) (interface{}, error) {
	var req server.QueryRowsRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.nspi.QueryRows(sess, req), nil
}

func (h *Handlers) seekEntries(sess *server.Session, r *http.Request) (interface{}, error) {
	var req SeekEntriesRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	target, err := decodeValue(req.Target)
	if err != nil {
		return nil, err
	}
	return h.nspi.SeekEntries(sess, server.SeekEntriesRequest{
		Reserved:      req.Reserved,
		Stat:          req.Stat,
		Target:        target,
		ExplicitTable: req.ExplicitTable,
		PropTags:      req.PropTags,
	}), nil
}

func (h *Handlers) getMatches(sess *server.Session, r *http.Request) (interface{}, error) {
	var req GetMatchesRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	var restriction *filter.Restriction
	if req.Filter != "" {
		var err error
		if restriction, err = filter.Parse(req.Filter); err != nil {
			return nil, err
		}
	}
	return h.nspi.GetMatches(sess, server.GetMatchesRequest{
		Reserved1:   req.Reserved1,
		Stat:        req.Stat,
		Reserved:    req.Reserved,
		Reserved2:   req.Reserved2,
		Restriction: restriction,
		PropName:    req.PropName,
		Requested:   req.Requested,
		PropTags:    req.PropTags,
	}), nil
}

func (h *Handlers) resortRestriction(sess *server.Session, r *http.Request) (interface{}, error) {
	var req server.ResortRestrictionRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.nspi.ResortRestriction(sess, req), nil
}

func (h *Handlers) compareMIds(sess *server.Session, r *http.Request) (interface{}, error) {
	var req server.CompareMIdsRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.nspi.CompareMIds(sess, req), nil
}

func (h *Handlers) getProps(sess *server.Session, r *http.Request) (interface{}, error) {
	var req server.GetPropsRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.nspi.GetProps(sess, req), nil
}

func (h *Handlers) getPropList(sess *server.Session, r *http.Request) (interface{}, error) {
	var req server.GetPropListRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.nspi.GetPropList(sess, req), nil
}

func (h *Handlers) queryColumns(sess *server.Session, r *http.Request) (interface{}, error) {
	var req QueryColumnsRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.nspi.QueryColumns(sess, req.Flags), nil
}

func (h *Handlers) dnToMId(sess *server.Session, r *http.Request) (interface{}, error) {
	var req server.DNToMIdRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.nspi.DNToMId(sess, req), nil
}

func (h *Handlers) modProps(sess *server.Session, r *http.Request) (interface{}, error) {
	var req ModPropsRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	row, err := decodeRow(req.Row)
	if err != nil {
		return nil, err
	}
	return h.nspi.ModProps(sess, server.ModPropsRequest{
		Reserved: req.Reserved,
		Stat:     req.Stat,
		PropTags: req.PropTags,
		Row:      row,
	}), nil
}

func (h *Handlers) modLinkAtt(sess *server.Session, r *http.Request) (interface{}, error) {
	var req server.ModLinkAttRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.nspi.ModLinkAtt(sess, req), nil
}

func (h *Handlers) getSpecialTable(sess *server.Session, r *http.Request) (interface{}, error) {
	var req server.GetSpecialTableRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.nspi.GetSpecialTable(sess, req), nil
}

func (h *Handlers) getTemplateInfo(sess *server.Session, r *http.Request) (interface{}, error) {
	var req server.GetTemplateInfoRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return h.nspi.GetTemplateInfo(sess, req), nil
}
