package anr

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/KilimcininKorOglu/nspid/internal/directory"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// candidate is the case-folded naming data of one object.
type candidate struct {
	mid     nspi.MId
	account string
	smtp    []string
	values  []string
	words   []string
}

func newCandidate(obj *directory.Object, fold cases.Caser) candidate {
	c := candidate{mid: obj.MId}

	for _, tag := range Properties {
		v := fold.String(strings.TrimSpace(obj.String(tag)))
		if v == "" {
			continue
		}
		c.values = append(c.values, v)
		c.words = append(c.words, splitWords(v)...)
		switch tag {
		case nspi.PidTagAccount:
			c.account = v
		case nspi.PidTagSMTPAddress:
			c.smtp = append(c.smtp, v)
		}
	}

	for _, proxy := range obj.Strings(nspi.PidTagAddressBookProxyAddresses) {
		p := fold.String(proxy)
		if strings.HasPrefix(p, smtpPrefix) {
			c.smtp = append(c.smtp, p[len(smtpPrefix):])
		}
	}
	return c
}

// splitWords breaks a value at white space and at the separators of
// addresses so "bob.jones@contoso.com" yields "bob", "jones" and
// "contoso.com" as well.
func splitWords(v string) []string {
	words := strings.Fields(v)
	for _, w := range strings.FieldsFunc(v, func(r rune) bool {
		return r == '.' || r == '@' || r == '-' || r == '_' || r == ' '
	}) {
		words = append(words, w)
	}
	return words
}

func (c candidate) exact(name string) bool {
	for _, v := range c.values {
		if v == name {
			return true
		}
	}
	return false
}

// prefix reports whether every token starts a word or a value.
func (c candidate) prefix(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !c.hasPrefix(tok) {
			return false
		}
	}
	return true
}

func (c candidate) hasPrefix(tok string) bool {
	for _, v := range c.values {
		if strings.HasPrefix(v, tok) {
			return true
		}
	}
	for _, w := range c.words {
		if strings.HasPrefix(w, tok) {
			return true
		}
	}
	return false
}

func (c candidate) hasSMTP(addr string) bool {
	for _, s := range c.smtp {
		if s == addr {
			return true
		}
	}
	return false
}
