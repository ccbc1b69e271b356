package table

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// lcidTags maps Windows locale IDs to language tags.
var lcidTags = map[uint32]language.Tag{
	0x0404: language.TraditionalChinese,
	0x0405: language.Czech,
	0x0406: language.Danish,
	0x0407: language.German,
	0x0408: language.Greek,
	0x0409: language.AmericanEnglish,
	0x040A: language.Spanish,
	0x040B: language.Finnish,
	0x040C: language.French,
	0x040E: language.Hungarian,
	0x0410: language.Italian,
	0x0411: language.Japanese,
	0x0412: language.Korean,
	0x0413: language.Dutch,
	0x0414: language.Norwegian,
	0x0415: language.Polish,
	0x0416: language.BrazilianPortuguese,
	0x0419: language.Russian,
	0x041D: language.Swedish,
	0x041F: language.Turkish,
	0x0804: language.SimplifiedChinese,
	0x0809: language.BritishEnglish,
	0x0816: language.EuropeanPortuguese,
	0x0C0A: language.EuropeanSpanish,
}

// LocaleTag returns the language of a locale ID. Unknown IDs fall back to
// en-US.
func LocaleTag(lcid uint32) language.Tag {
	if tag, ok := lcidTags[lcid]; ok {
		return tag
	}
	return lcidTags[nspi.DefaultLocale]
}

// IsKnownLocale reports whether lcid has a collation of its own.
func IsKnownLocale(lcid uint32) bool {
	_, ok := lcidTags[lcid]
	return ok
}

// newCollator returns a case-insensitive collator for lcid. Collators are
// not safe for concurrent use, so every view gets its own.
func newCollator(lcid uint32) *collate.Collator {
	return collate.New(LocaleTag(lcid), collate.IgnoreCase)
}
