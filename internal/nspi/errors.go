package nspi

import "fmt"

// ErrorCode is the result code of an address book operation.
type ErrorCode uint32

// Result codes.
const (
	Success          ErrorCode = 0x00000000
	UnbindSuccess    ErrorCode = 0x00000001
	UnbindFailure    ErrorCode = 0x00000002
	ErrorsReturned   ErrorCode = 0x00040380
	GeneralFailure   ErrorCode = 0x80004005
	NotSupported     ErrorCode = 0x80040102
	InvalidObject    ErrorCode = 0x80040108
	OutOfResources   ErrorCode = 0x8004010E
	NotFound         ErrorCode = 0x8004010F
	LogonFailed      ErrorCode = 0x80040111
	TooComplex       ErrorCode = 0x80040117
	InvalidCodepage  ErrorCode = 0x8004011E
	InvalidLocale    ErrorCode = 0x8004011F
	TableTooBig      ErrorCode = 0x80040403
	InvalidBookmark  ErrorCode = 0x80040405
	AccessDenied     ErrorCode = 0x80070005
	NotEnoughMemory  ErrorCode = 0x8007000E
	InvalidParameter ErrorCode = 0x80070057
)

var errorCodeNames = map[ErrorCode]string{
	Success:          "Success",
	UnbindSuccess:    "UnbindSuccess",
	UnbindFailure:    "UnbindFailure",
	ErrorsReturned:   "ErrorsReturned",
	GeneralFailure:   "GeneralFailure",
	NotSupported:     "NotSupported",
	InvalidObject:    "InvalidObject",
	OutOfResources:   "OutOfResources",
	NotFound:         "NotFound",
	LogonFailed:      "LogonFailed",
	TooComplex:       "TooComplex",
	InvalidCodepage:  "InvalidCodepage",
	InvalidLocale:    "InvalidLocale",
	TableTooBig:      "TableTooBig",
	InvalidBookmark:  "InvalidBookmark",
	AccessDenied:     "AccessDenied",
	NotEnoughMemory:  "NotEnoughMemory",
	InvalidParameter: "InvalidParameter",
}

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(0x%08X)", uint32(c))
}

// Error implements the error interface.
func (c ErrorCode) Error() string {
	return fmt.Sprintf("nspi: %s (0x%08X)", c.String(), uint32(c))
}

// Succeeded reports whether the code carries output.
func (c ErrorCode) Succeeded() bool {
	return c == Success || c == ErrorsReturned
}

// IsDefined reports whether the code belongs to the enumerated result set.
func (c ErrorCode) IsDefined() bool {
	_, ok := errorCodeNames[c]
	return ok
}
