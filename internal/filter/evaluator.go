package filter

import (
	"errors"
	"fmt"
	"regexp"
)

// Validation errors.
var (
	ErrTooComplex         = errors.New("filter: restriction too complex")
	ErrInvalidRestriction = errors.New("filter: invalid restriction")
)

// Validate checks that r is well formed, supported, and no deeper than
// maxDepth. A maxDepth of zero disables the depth check. Validate compiles
// the patterns of like comparisons.
func Validate(r *Restriction, maxDepth int) error {
	if r == nil {
		return ErrInvalidRestriction
	}
	if maxDepth > 0 && r.Depth() > maxDepth {
		return fmt.Errorf("%w: depth %d exceeds %d", ErrTooComplex, r.Depth(), maxDepth)
	}
	return validateNode(r)
}

func validateNode(r *Restriction) error {
	switch r.Type {
	case RestrictionAnd, RestrictionOr:
		for _, c := range r.Children {
			if c == nil {
				return fmt.Errorf("%w: nil child of %s", ErrInvalidRestriction, r.Type)
			}
			if err := validateNode(c); err != nil {
				return err
			}
		}
	case RestrictionNot:
		if r.Child == nil {
			return fmt.Errorf("%w: NOT without child", ErrInvalidRestriction)
		}
		return validateNode(r.Child)
	case RestrictionContent:
		if r.Value == nil {
			return fmt.Errorf("%w: content restriction without value", ErrInvalidRestriction)
		}
		if _, ok := contentBytes(r.Value.Value); !ok {
			return fmt.Errorf("%w: content match on %T", ErrTooComplex, r.Value.Value)
		}
	case RestrictionProperty:
		if r.Value == nil {
			return fmt.Errorf("%w: property restriction without value", ErrInvalidRestriction)
		}
		if r.Relop > RelopRE {
			return fmt.Errorf("%w: relop %d", ErrInvalidRestriction, r.Relop)
		}
		if r.Relop == RelopRE {
			s, ok := r.Value.Value.(string)
			if !ok {
				return fmt.Errorf("%w: like on %T", ErrTooComplex, r.Value.Value)
			}
			re, err := regexp.Compile("(?i)" + s)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrTooComplex, err)
			}
			r.pattern = re
		}
	case RestrictionExist:
	default:
		return fmt.Errorf("%w: unsupported restriction type 0x%02X", ErrTooComplex, uint32(r.Type))
	}
	return nil
}

// Evaluator evaluates restrictions against entries.
type Evaluator struct{}

// NewEvaluator creates a new restriction evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate tests whether an entry matches a restriction.
// Returns true if the entry matches the restriction, false otherwise.
func (e *Evaluator) Evaluate(r *Restriction, entry Entry) bool {
	if r == nil || entry == nil {
		return false
	}

	switch r.Type {
	case RestrictionAnd:
		return e.evaluateAnd(r, entry)
	case RestrictionOr:
		return e.evaluateOr(r, entry)
	case RestrictionNot:
		return r.Child != nil && !e.Evaluate(r.Child, entry)
	case RestrictionContent:
		return e.evaluateContent(r, entry)
	case RestrictionProperty:
		return e.evaluateProperty(r, entry)
	case RestrictionExist:
		_, ok := entry.Get(r.PropTag)
		return ok
	default:
		return false
	}
}

// evaluateAnd returns true only if all children match. An empty AND
// matches everything.
func (e *Evaluator) evaluateAnd(r *Restriction, entry Entry) bool {
	for _, child := range r.Children {
		if !e.Evaluate(child, entry) {
			return false
		}
	}
	return true
}

// evaluateOr returns true if any child matches.
func (e *Evaluator) evaluateOr(r *Restriction, entry Entry) bool {
	for _, child := range r.Children {
		if e.Evaluate(child, entry) {
			return true
		}
	}
	return false
}

func (e *Evaluator) evaluateContent(r *Restriction, entry Entry) bool {
	if r.Value == nil {
		return false
	}
	pattern, ok := contentBytes(r.Value.Value)
	if !ok {
		return false
	}
	v, ok := entry.Get(r.PropTag)
	if !ok {
		return false
	}
	for _, s := range scalars(v.Value) {
		if b, ok := contentBytes(s); ok && matchContent(b, pattern, r.FuzzyLevel) {
			return true
		}
	}
	return false
}

func (e *Evaluator) evaluateProperty(r *Restriction, entry Entry) bool {
	if r.Value == nil {
		return false
	}
	v, ok := entry.Get(r.PropTag)
	if !ok {
		return false
	}

	if r.Relop == RelopRE {
		re := r.pattern
		if re == nil {
			s, ok := r.Value.Value.(string)
			if !ok {
				return false
			}
			var err error
			if re, err = regexp.Compile("(?i)" + s); err != nil {
				return false
			}
		}
		for _, s := range scalars(v.Value) {
			if str, ok := s.(string); ok && re.MatchString(str) {
				return true
			}
		}
		return false
	}

	for _, s := range scalars(v.Value) {
		cmp, ok := compareValues(s, r.Value.Value)
		if ok && relopHolds(r.Relop, cmp) {
			return true
		}
	}
	return false
}

func relopHolds(op Relop, cmp int) bool {
	switch op {
	case RelopLT:
		return cmp < 0
	case RelopLE:
		return cmp <= 0
	case RelopGT:
		return cmp > 0
	case RelopGE:
		return cmp >= 0
	case RelopEQ:
		return cmp == 0
	case RelopNE:
		return cmp != 0
	default:
		return false
	}
}
