package server

import (
	"errors"

	"github.com/KilimcininKorOglu/nspid/internal/anr"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
	"github.com/KilimcininKorOglu/nspid/internal/table"
)

// Result carries the code every operation returns.
type Result struct {
	Code nspi.ErrorCode `json:"code"`
}

// OK reports whether the operation produced output.
func (r Result) OK() bool {
	return r.Code.Succeeded()
}

// tableCode maps table engine errors to result codes.
func tableCode(err error) nspi.ErrorCode {
	switch {
	case err == nil:
		return nspi.Success
	case errors.Is(err, table.ErrContainerNotFound):
		return nspi.InvalidBookmark
	case errors.Is(err, table.ErrPositionNotFound):
		return nspi.NotFound
	case errors.Is(err, table.ErrTableTooBig):
		return nspi.TableTooBig
	case errors.Is(err, table.ErrTooComplex):
		return nspi.TooComplex
	default:
		return nspi.GeneralFailure
	}
}

// resolverCode maps resolver errors to result codes.
func resolverCode(err error) nspi.ErrorCode {
	switch {
	case err == nil:
		return nspi.Success
	case errors.Is(err, anr.ErrContainerNotFound):
		return nspi.InvalidBookmark
	default:
		return nspi.GeneralFailure
	}
}
