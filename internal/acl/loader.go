package acl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KilimcininKorOglu/nspid/internal/config"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// Loader errors.
var (
	ErrInvalidPolicy      = errors.New("acl: invalid default policy")
	ErrInvalidRight       = errors.New("acl: invalid right")
	ErrInvalidDisplayType = errors.New("acl: invalid display type")
	ErrInvalidProperty    = errors.New("acl: invalid property")
	ErrInvalidSubject     = errors.New("acl: invalid subject")
	ErrMissingRights      = errors.New("acl: rights are required")
)

// FromConfig converts the acl section of the server configuration.
func FromConfig(cfg config.ACLConfig) (*Config, error) {
	policy := strings.ToLower(cfg.DefaultPolicy)
	if policy != "allow" && policy != "deny" && policy != "" {
		return nil, fmt.Errorf("%w: %s (must be allow or deny)", ErrInvalidPolicy, cfg.DefaultPolicy)
	}

	out := NewConfig()
	if policy != "" {
		out.DefaultPolicy = policy
	}

	for i, r := range cfg.Rules {
		rule, err := convertRule(r)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		out.AddRule(rule)
	}

	return out, nil
}

func convertRule(r config.ACLRuleConfig) (*ACL, error) {
	if len(r.Rights) == 0 {
		return nil, ErrMissingRights
	}
	rights, err := ParseRights(r.Rights)
	if err != nil {
		return nil, err
	}

	rule := &ACL{Rights: rights, Deny: r.Deny}

	if r.DisplayType == "*" {
		rule.AnyDisplayType = true
	} else {
		dt, ok := nspi.ParseDisplayType(strings.ToLower(r.DisplayType))
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDisplayType, r.DisplayType)
		}
		rule.DisplayType = dt
	}

	switch subject := strings.ToLower(r.Subject); subject {
	case "", SubjectAny:
		rule.Subject = SubjectAny
	case SubjectAnonymous, SubjectAuthenticated:
		rule.Subject = subject
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidSubject, r.Subject)
	}

	for _, name := range r.Properties {
		if name == "*" {
			rule.Properties = nil
			break
		}
		tag, ok := nspi.TagByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidProperty, name)
		}
		rule.Properties = append(rule.Properties, tag)
	}

	return rule, nil
}

// ParseRights converts string rights to Right flags.
func ParseRights(rights []string) (Right, error) {
	var result Right

	for _, r := range rights {
		switch strings.ToLower(strings.TrimSpace(r)) {
		case "modify":
			result |= Modify
		case "addlink":
			result |= AddLink
		case "removelink":
			result |= RemoveLink
		case "all":
			result |= All
		default:
			return 0, fmt.Errorf("%w: %s", ErrInvalidRight, r)
		}
	}

	return result, nil
}
