package acl

import (
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// Right represents a modification right.
// Rights are bit flags that can be combined using bitwise OR.
type Right int

const (
	// Modify allows replacing property values (ModProps).
	Modify Right = 1 << iota

	// AddLink allows adding values to a linked property.
	AddLink

	// RemoveLink allows removing values from a linked property.
	RemoveLink

	// All combines all rights.
	All = Modify | AddLink | RemoveLink
)

// String returns a human-readable representation of the right.
func (r Right) String() string {
	switch r {
	case Modify:
		return "modify"
	case AddLink:
		return "addlink"
	case RemoveLink:
		return "removelink"
	case All:
		return "all"
	default:
		return "unknown"
	}
}

// Has checks if the right includes the specified right.
func (r Right) Has(other Right) bool {
	return r&other != 0
}

// Subjects a rule can apply to.
const (
	SubjectAny           = "*"
	SubjectAnonymous     = "anonymous"
	SubjectAuthenticated = "authenticated"
)

// ACL represents a single access control rule.
type ACL struct {
	// DisplayType is the object class the rule applies to.
	DisplayType nspi.DisplayType

	// AnyDisplayType makes the rule apply regardless of DisplayType.
	AnyDisplayType bool

	// Subject is one of SubjectAny, SubjectAnonymous or SubjectAuthenticated.
	Subject string

	// Rights defines what operations are allowed or denied.
	Rights Right

	// Properties limits the rule to the listed property IDs.
	// An empty slice means all properties.
	Properties []nspi.PropTag

	// Deny indicates this is a deny rule (true) or allow rule (false).
	Deny bool
}

// NewACL creates an allow rule for one display type.
func NewACL(dt nspi.DisplayType, rights Right) *ACL {
	return &ACL{
		DisplayType: dt,
		Subject:     SubjectAny,
		Rights:      rights,
	}
}

// WithSubject sets the subject and returns the ACL for chaining.
func (a *ACL) WithSubject(subject string) *ACL {
	a.Subject = subject
	return a
}

// WithProperties sets the properties and returns the ACL for chaining.
func (a *ACL) WithProperties(tags ...nspi.PropTag) *ACL {
	a.Properties = tags
	return a
}

// WithDeny sets the deny flag and returns the ACL for chaining.
func (a *ACL) WithDeny(deny bool) *ACL {
	a.Deny = deny
	return a
}

// AppliesToProperty reports whether the rule covers tag, compared by
// property ID.
func (a *ACL) AppliesToProperty(tag nspi.PropTag) bool {
	if len(a.Properties) == 0 {
		return true
	}
	return nspi.PropTagArray(a.Properties).Contains(tag)
}

// Config holds the ACL configuration including default policy and rules.
type Config struct {
	// DefaultPolicy is applied when no rules match.
	// Can be "allow" or "deny". Default is "deny".
	DefaultPolicy string

	// Rules is the ordered list of ACL rules.
	// Rules are evaluated in order; first match wins.
	Rules []*ACL
}

// NewConfig creates a new ACL configuration with default deny policy.
func NewConfig() *Config {
	return &Config{
		DefaultPolicy: "deny",
		Rules:         make([]*ACL, 0),
	}
}

// AddRule appends a rule to the configuration.
func (c *Config) AddRule(rule *ACL) {
	c.Rules = append(c.Rules, rule)
}

// IsDefaultAllow returns true if the default policy is "allow".
func (c *Config) IsDefaultAllow() bool {
	return c.DefaultPolicy == "allow"
}

// AccessContext provides context for an access control check.
type AccessContext struct {
	// DisplayType is the display type of the object being changed.
	DisplayType nspi.DisplayType

	// Property is the property being changed.
	Property nspi.PropTag

	// Operation is the kind of change.
	Operation Right

	// Anonymous is set for sessions bound with fAnonymousLogin.
	Anonymous bool
}

// NewAccessContext creates a new access context for an authenticated session.
func NewAccessContext(dt nspi.DisplayType, tag nspi.PropTag, op Right) *AccessContext {
	return &AccessContext{
		DisplayType: dt,
		Property:    tag,
		Operation:   op,
	}
}

// WithAnonymous marks the context anonymous and returns it for chaining.
func (c *AccessContext) WithAnonymous(anonymous bool) *AccessContext {
	c.Anonymous = anonymous
	return c
}
