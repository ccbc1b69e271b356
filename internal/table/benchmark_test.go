package table_test

import (
	"fmt"
	"testing"

	"github.com/KilimcininKorOglu/nspid/internal/directory"
	"github.com/KilimcininKorOglu/nspid/internal/filter"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
	"github.com/KilimcininKorOglu/nspid/internal/table"
)

// largeStore builds a Global Address List of n mail users.
func largeStore(b *testing.B, n int) *directory.Store {
	b.Helper()
	store := directory.NewStore("/o=Bench/cn=addrlists/cn=gal")
	for i := 0; i < n; i++ {
		obj := directory.NewObject(fmt.Sprintf("/o=Bench/cn=Recipients/cn=user%05d", i), nspi.DTMailUser)
		obj.SetString(nspi.PidTagDisplayName, fmt.Sprintf("User %05d", n-i))
		obj.SetString(nspi.PidTagAccount, fmt.Sprintf("user%05d", i))
		if _, err := store.AddObject(obj); err != nil {
			b.Fatal(err)
		}
	}
	return store
}

// BenchmarkOpen benchmarks sorting the Global Address List.
func BenchmarkOpen(b *testing.B) {
	engine := table.NewEngine(largeStore(b, 5000), table.DefaultConfig())
	stat := nspi.NewSTAT(nspi.CodePageWindows1252)
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := engine.Open(stat); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkQueryRows benchmarks reading a page from the middle of the table.
func BenchmarkQueryRows(b *testing.B) {
	engine := table.NewEngine(largeStore(b, 5000), table.DefaultConfig())
	stat := nspi.NewSTAT(nspi.CodePageWindows1252)
	stat.NumPos = 2500
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, _, err := engine.QueryRows(stat, nil, 50); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkGetMatches benchmarks a prefix restriction over the table.
func BenchmarkGetMatches(b *testing.B) {
	engine := table.NewEngine(largeStore(b, 5000), table.DefaultConfig())
	stat := nspi.NewSTAT(nspi.CodePageWindows1252)
	r := filter.NewContent(nspi.PidTagDisplayName, filter.FLPrefix|filter.FLIgnoreCase, "user 04")
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, _, err := engine.GetMatches(stat, table.MatchRequest{Restriction: r, Requested: 5000}); err != nil {
			b.Fatal(err)
		}
	}
}
