// Package anr implements ambiguous name resolution.
//
// Each input string is matched against the naming properties of the
// objects in one address list and classified as unresolved, resolved to a
// single object, or ambiguous:
//
//	r := anr.NewResolver(store)
//	matches, err := r.Resolve(nspi.GALContainerID, []string{"alice", "bob"})
//
// An exact, case-insensitive match on any naming property wins over prefix
// matching. A string starting with "=" matches the account name exactly and
// one starting with "SMTP:" matches SMTP addresses exactly.
package anr
