// Package codepage converts property values between their stored form and
// the form a caller asked for, including 8-bit string encoding.
package codepage

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// ErrUnsupported is returned for a code page the registry does not serve.
var ErrUnsupported = errors.New("codepage: unsupported code page")

// builtin maps Windows code page identifiers to encodings. CP_TELETEX is
// served with ISO 8859-1 and CP_WINUNICODE with UTF-8 for 8-bit output.
var builtin = map[uint32]encoding.Encoding{
	437:                     charmap.CodePage437,
	850:                     charmap.CodePage850,
	852:                     charmap.CodePage852,
	855:                     charmap.CodePage855,
	858:                     charmap.CodePage858,
	860:                     charmap.CodePage860,
	862:                     charmap.CodePage862,
	863:                     charmap.CodePage863,
	865:                     charmap.CodePage865,
	866:                     charmap.CodePage866,
	874:                     charmap.Windows874,
	932:                     japanese.ShiftJIS,
	936:                     simplifiedchinese.GBK,
	949:                     korean.EUCKR,
	950:                     traditionalchinese.Big5,
	1250:                    charmap.Windows1250,
	1251:                    charmap.Windows1251,
	1252:                    charmap.Windows1252,
	1253:                    charmap.Windows1253,
	1254:                    charmap.Windows1254,
	1255:                    charmap.Windows1255,
	1256:                    charmap.Windows1256,
	1257:                    charmap.Windows1257,
	1258:                    charmap.Windows1258,
	nspi.CodePageWinUnicode: unicode.UTF8,
	10000:                   charmap.Macintosh,
	20866:                   charmap.KOI8R,
	21866:                   charmap.KOI8U,
	nspi.CodePageTeletex:    charmap.ISO8859_1,
	28591:                   charmap.ISO8859_1,
	28592:                   charmap.ISO8859_2,
	28593:                   charmap.ISO8859_3,
	28594:                   charmap.ISO8859_4,
	28595:                   charmap.ISO8859_5,
	28596:                   charmap.ISO8859_6,
	28597:                   charmap.ISO8859_7,
	28598:                   charmap.ISO8859_8,
	28599:                   charmap.ISO8859_9,
	28603:                   charmap.ISO8859_13,
	28605:                   charmap.ISO8859_15,
	50220:                   japanese.ISO2022JP,
	51932:                   japanese.EUCJP,
	52936:                   simplifiedchinese.HZGB2312,
	54936:                   simplifiedchinese.GB18030,
	65001:                   unicode.UTF8,
}

// Registry resolves code page identifiers to encodings.
type Registry struct {
	encodings map[uint32]encoding.Encoding
}

// NewRegistry returns a registry limited to the supported code pages. An
// empty list enables every built-in code page. CP_WINUNICODE is always
// served.
func NewRegistry(supported []uint32) (*Registry, error) {
	r := &Registry{encodings: map[uint32]encoding.Encoding{
		nspi.CodePageWinUnicode: builtin[nspi.CodePageWinUnicode],
	}}
	if len(supported) == 0 {
		for cp, enc := range builtin {
			r.encodings[cp] = enc
		}
		return r, nil
	}
	for _, cp := range supported {
		enc, ok := builtin[cp]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnsupported, cp)
		}
		r.encodings[cp] = enc
	}
	return r, nil
}

// DefaultRegistry returns a registry serving every built-in code page.
func DefaultRegistry() *Registry {
	r, _ := NewRegistry(nil)
	return r
}

// Supports reports whether cp is served.
func (r *Registry) Supports(cp uint32) bool {
	_, ok := r.encodings[cp]
	return ok
}

// CodePages returns the served code pages in ascending order.
func (r *Registry) CodePages() []uint32 {
	out := make([]uint32, 0, len(r.encodings))
	for cp := range r.encodings {
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsBuiltin reports whether cp is known at all, served or not.
func IsBuiltin(cp uint32) bool {
	_, ok := builtin[cp]
	return ok
}

// Encode converts s to the 8-bit form of cp. Characters with no mapping are
// replaced by the encoding's substitute byte.
func (r *Registry) Encode(s string, cp uint32) ([]byte, error) {
	enc, ok := r.encodings[cp]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupported, cp)
	}
	return encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes([]byte(s))
}

// Decode converts 8-bit text in cp to a Go string.
func (r *Registry) Decode(b []byte, cp uint32) (string, error) {
	enc, ok := r.encodings[cp]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnsupported, cp)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
