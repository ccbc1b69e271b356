package anr

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/KilimcininKorOglu/nspid/internal/directory"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// ErrContainerNotFound is returned when the address list to search does
// not exist.
var ErrContainerNotFound = errors.New("anr: container not found")

// Properties are the naming properties ANR matches against.
var Properties = []nspi.PropTag{
	nspi.PidTagDisplayName,
	nspi.PidTagAccount,
	nspi.PidTagGivenName,
	nspi.PidTagSurname,
	nspi.PidTagSMTPAddress,
	nspi.PidTagOfficeLocation,
	nspi.PidTagAddressBookPhoneticDisplayName,
}

const (
	accountPrefix = "="
	smtpPrefix    = "smtp:"
)

// Match is the outcome for one input string.
type Match struct {
	// Outcome is MIDUnresolved, MIDAmbiguous or MIDResolved.
	Outcome nspi.MId
	// MId is the resolved object, or 0.
	MId nspi.MId
	// Candidates lists every object the string matched.
	Candidates []nspi.MId
}

// Resolved reports whether the string named exactly one object.
func (m Match) Resolved() bool {
	return m.Outcome == nspi.MIDResolved
}

// Resolver resolves names against a directory store.
type Resolver struct {
	store *directory.Store
}

// NewResolver creates a resolver over store.
func NewResolver(store *directory.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve classifies every name against the objects of containerID. The
// result is positionally aligned with names.
func (r *Resolver) Resolve(containerID uint32, names []string) ([]Match, error) {
	objects, err := r.store.Contents(containerID)
	if err != nil {
		if errors.Is(err, directory.ErrContainerNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrContainerNotFound, containerID)
		}
		return nil, err
	}

	candidates := make([]candidate, 0, len(objects))
	fold := cases.Fold()
	for _, obj := range objects {
		candidates = append(candidates, newCandidate(obj, fold))
	}

	matches := make([]Match, len(names))
	for i, name := range names {
		matches[i] = resolveOne(candidates, fold.String(strings.TrimSpace(name)))
	}
	return matches, nil
}

// ResolveOne resolves a single name.
func (r *Resolver) ResolveOne(containerID uint32, name string) (Match, error) {
	matches, err := r.Resolve(containerID, []string{name})
	if err != nil {
		return Match{}, err
	}
	return matches[0], nil
}

func resolveOne(candidates []candidate, name string) Match {
	if name == "" {
		return Match{Outcome: nspi.MIDUnresolved}
	}

	var hits []nspi.MId
	switch {
	case strings.HasPrefix(name, accountPrefix):
		hits = collect(candidates, func(c candidate) bool {
			return c.account != "" && c.account == strings.TrimSpace(name[len(accountPrefix):])
		})
	case strings.HasPrefix(name, smtpPrefix):
		addr := strings.TrimSpace(name[len(smtpPrefix):])
		hits = collect(candidates, func(c candidate) bool { return c.hasSMTP(addr) })
	default:
		hits = collect(candidates, func(c candidate) bool { return c.exact(name) })
		if len(hits) == 0 {
			tokens := strings.Fields(name)
			hits = collect(candidates, func(c candidate) bool { return c.prefix(tokens) })
		}
	}

	switch len(hits) {
	case 0:
		return Match{Outcome: nspi.MIDUnresolved}
	case 1:
		return Match{Outcome: nspi.MIDResolved, MId: hits[0], Candidates: hits}
	default:
		return Match{Outcome: nspi.MIDAmbiguous, Candidates: hits}
	}
}

func collect(candidates []candidate, pred func(candidate) bool) []nspi.MId {
	var out []nspi.MId
	for _, c := range candidates {
		if pred(c) {
			out = append(out, c.mid)
		}
	}
	return out
}
