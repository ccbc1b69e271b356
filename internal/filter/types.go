package filter

import (
	"regexp"

	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// RestrictionType identifies the kind of restriction node. Values follow
// the wire encoding.
type RestrictionType uint32

const (
	// RestrictionAnd matches when every child matches.
	RestrictionAnd RestrictionType = 0x00
	// RestrictionOr matches when any child matches.
	RestrictionOr RestrictionType = 0x01
	// RestrictionNot inverts its child.
	RestrictionNot RestrictionType = 0x02
	// RestrictionContent performs a fuzzy string or binary match.
	RestrictionContent RestrictionType = 0x03
	// RestrictionProperty compares a property with a value.
	RestrictionProperty RestrictionType = 0x04
	// RestrictionExist tests for the presence of a property.
	RestrictionExist RestrictionType = 0x08
)

// String returns the string representation of the RestrictionType.
func (rt RestrictionType) String() string {
	switch rt {
	case RestrictionAnd:
		return "AND"
	case RestrictionOr:
		return "OR"
	case RestrictionNot:
		return "NOT"
	case RestrictionContent:
		return "CONTENT"
	case RestrictionProperty:
		return "PROPERTY"
	case RestrictionExist:
		return "EXIST"
	default:
		return "UNKNOWN"
	}
}

// Fuzzy levels of a content restriction. The low 16 bits select the match
// position and the high bits modify the comparison.
const (
	FLFullString     uint32 = 0x00000000
	FLSubstring      uint32 = 0x00000001
	FLPrefix         uint32 = 0x00000002
	FLIgnoreCase     uint32 = 0x00010000
	FLIgnoreNonSpace uint32 = 0x00020000
	FLLoose          uint32 = 0x00040000
)

// Relop is the comparison of a property restriction.
type Relop uint32

// Relational operators.
const (
	RelopLT Relop = 0x00
	RelopLE Relop = 0x01
	RelopGT Relop = 0x02
	RelopGE Relop = 0x03
	RelopEQ Relop = 0x04
	RelopNE Relop = 0x05
	RelopRE Relop = 0x06
)

// String returns the operator symbol.
func (r Relop) String() string {
	switch r {
	case RelopLT:
		return "<"
	case RelopLE:
		return "<="
	case RelopGT:
		return ">"
	case RelopGE:
		return ">="
	case RelopEQ:
		return "=="
	case RelopNE:
		return "!="
	case RelopRE:
		return "like"
	default:
		return "?"
	}
}

// Restriction is a node of a restriction tree.
type Restriction struct {
	Type RestrictionType

	// Children holds the operands of AND and OR.
	Children []*Restriction
	// Child holds the operand of NOT.
	Child *Restriction

	// FuzzyLevel applies to Content restrictions.
	FuzzyLevel uint32
	// Relop applies to Property restrictions.
	Relop Relop

	// PropTag names the property tested by Content, Property and Exist.
	PropTag nspi.PropTag
	// Value is the operand of Content and Property. Strings are held in
	// their stored form.
	Value *nspi.PropertyValue

	pattern *regexp.Regexp
}

// NewAnd creates an AND restriction with the given children.
func NewAnd(children ...*Restriction) *Restriction {
	return &Restriction{Type: RestrictionAnd, Children: children}
}

// NewOr creates an OR restriction with the given children.
func NewOr(children ...*Restriction) *Restriction {
	return &Restriction{Type: RestrictionOr, Children: children}
}

// NewNot creates a NOT restriction.
func NewNot(child *Restriction) *Restriction {
	return &Restriction{Type: RestrictionNot, Child: child}
}

// NewContent creates a content restriction on tag.
func NewContent(tag nspi.PropTag, fuzzyLevel uint32, value interface{}) *Restriction {
	return &Restriction{
		Type:       RestrictionContent,
		FuzzyLevel: fuzzyLevel,
		PropTag:    tag,
		Value:      &nspi.PropertyValue{Tag: tag, Value: value},
	}
}

// NewProperty creates a property comparison on tag.
func NewProperty(tag nspi.PropTag, relop Relop, value interface{}) *Restriction {
	return &Restriction{
		Type:    RestrictionProperty,
		Relop:   relop,
		PropTag: tag,
		Value:   &nspi.PropertyValue{Tag: tag, Value: value},
	}
}

// NewExist creates an existence test for tag.
func NewExist(tag nspi.PropTag) *Restriction {
	return &Restriction{Type: RestrictionExist, PropTag: tag}
}

// Depth returns the nesting depth of the tree. A leaf has depth 1.
func (r *Restriction) Depth() int {
	if r == nil {
		return 0
	}
	deepest := 0
	switch r.Type {
	case RestrictionAnd, RestrictionOr:
		for _, c := range r.Children {
			if d := c.Depth(); d > deepest {
				deepest = d
			}
		}
	case RestrictionNot:
		deepest = r.Child.Depth()
	}
	return deepest + 1
}

// Entry is the view of an object the evaluator needs.
type Entry interface {
	Get(tag nspi.PropTag) (nspi.PropertyValue, bool)
}
