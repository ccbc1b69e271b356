package acl

import "strings"

// matchesDisplayType checks if the rule applies to objects of the context's
// display type.
func matchesDisplayType(rule *ACL, ctx *AccessContext) bool {
	return rule.AnyDisplayType || rule.DisplayType == ctx.DisplayType
}

// matchesSubject checks if the rule applies to the session kind.
func matchesSubject(rule *ACL, ctx *AccessContext) bool {
	switch strings.ToLower(rule.Subject) {
	case SubjectAnonymous:
		return ctx.Anonymous
	case SubjectAuthenticated:
		return !ctx.Anonymous
	case SubjectAny, "":
		return true
	default:
		return false
	}
}
