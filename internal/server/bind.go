package server

import (
	"github.com/google/uuid"

	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// BindRequest holds the parameters of Bind.
type BindRequest struct {
	Flags uint32    `json:"flags"`
	Stat  nspi.STAT `json:"stat"`
	// WantServerGUID asks for the server GUID in the result.
	WantServerGUID bool `json:"wantServerGuid"`
}

// BindResult holds the outcome of Bind.
type BindResult struct {
	Result
	Session    *Session   `json:"-"`
	Handle     string     `json:"handle,omitempty"`
	ServerGUID *uuid.UUID `json:"serverGuid,omitempty"`
}

// Bind opens a session. Only the fAnonymousLogin flag is meaningful. The
// STAT must carry a code page the server can produce 8-bit strings in.
func (s *Server) Bind(req BindRequest) BindResult {
	anonymous := req.Flags&nspi.FlagAnonymousLogin != 0

	var res BindResult
	switch {
	case !s.eightBitCodePage(req.Stat.CodePage):
		res.Code = nspi.InvalidCodepage
	case anonymous && !s.config.AllowAnonymous:
		res.Code = nspi.LogonFailed
	default:
		sess := s.sessions.add(req.Flags, anonymous, req.Stat.CodePage)
		res.Code = nspi.Success
		res.Session = sess
		res.Handle = sess.Handle
		if req.WantServerGUID {
			guid := s.config.GUID
			res.ServerGUID = &guid
		}
	}

	s.trace("Bind", res.Code, req.Stat, "anonymous", anonymous)
	return res
}

// Unbind closes the session bound under handle. It returns UnbindSuccess,
// or UnbindFailure for a handle that is not bound.
func (s *Server) Unbind(handle string) Result {
	res := Result{Code: nspi.UnbindSuccess}
	if !s.sessions.remove(handle) {
		res.Code = nspi.UnbindFailure
	}
	s.logger.Debug("nspi operation", "op", "Unbind", "code", res.Code.String())
	return res
}
