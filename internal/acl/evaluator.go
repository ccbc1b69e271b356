package acl

import (
	"sync"

	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// Evaluator evaluates ACL rules to determine access permissions.
type Evaluator struct {
	mu     sync.RWMutex
	config *Config
}

// NewEvaluator creates a new ACL evaluator with the given configuration.
func NewEvaluator(config *Config) *Evaluator {
	if config == nil {
		config = NewConfig()
	}
	return &Evaluator{config: config}
}

// CheckAccess determines if the operation is allowed based on ACL rules.
// Uses first-match-wins semantics: the first matching rule determines access.
// If no rules match, the default policy is applied.
func (e *Evaluator) CheckAccess(ctx *AccessContext) bool {
	e.mu.RLock()
	config := e.config
	e.mu.RUnlock()

	if ctx == nil {
		return config.IsDefaultAllow()
	}

	for _, rule := range config.Rules {
		if !matchesDisplayType(rule, ctx) {
			continue
		}
		if !matchesSubject(rule, ctx) {
			continue
		}
		if !rule.AppliesToProperty(ctx.Property) {
			continue
		}
		if !rule.Rights.Has(ctx.Operation) {
			continue
		}
		return !rule.Deny
	}

	return config.IsDefaultAllow()
}

// CanModify reports whether an authenticated session may replace tag on an
// object of display type dt.
func (e *Evaluator) CanModify(dt nspi.DisplayType, tag nspi.PropTag) bool {
	return e.CheckAccess(NewAccessContext(dt, tag, Modify))
}

// GetConfig returns the current configuration.
func (e *Evaluator) GetConfig() *Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config
}

// SetConfig replaces the configuration.
func (e *Evaluator) SetConfig(config *Config) {
	if config == nil {
		config = NewConfig()
	}
	e.mu.Lock()
	e.config = config
	e.mu.Unlock()
}
