package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/KilimcininKorOglu/nspid/internal/directory"
	"github.com/KilimcininKorOglu/nspid/internal/directory/directorytest"
	"github.com/KilimcininKorOglu/nspid/internal/filter"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
	"github.com/KilimcininKorOglu/nspid/internal/table"
)

type fixture struct {
	store  *directory.Store
	engine *table.Engine

	alice, bobb, bobj, agent, carol, dave, eng nspi.MId
	sales                                      uint32
}

func newFixture(t *testing.T, cfg table.Config) *fixture {
	t.Helper()
	store := directorytest.NewStore(t)
	return &fixture{
		store:  store,
		engine: table.NewEngine(store, cfg),
		alice:  directorytest.MustMId(t, store, directorytest.AliceDN),
		bobb:   directorytest.MustMId(t, store, directorytest.BobBDN),
		bobj:   directorytest.MustMId(t, store, directorytest.BobJDN),
		agent:  directorytest.MustMId(t, store, directorytest.AgentDN),
		carol:  directorytest.MustMId(t, store, directorytest.CarolDN),
		dave:   directorytest.MustMId(t, store, directorytest.DaveDN),
		eng:    directorytest.MustMId(t, store, directorytest.EngDLDN),
		sales:  directorytest.MustContainer(t, store, directorytest.SalesDN),
	}
}

func (f *fixture) galOrder() []nspi.MId {
	return []nspi.MId{f.alice, f.bobb, f.bobj, f.agent, f.carol, f.dave, f.eng}
}

func TestOpenSortsByDisplayName(t *testing.T) {
	f := newFixture(t, table.DefaultConfig())

	view, err := f.engine.Open(nspi.NewSTAT(1252))
	require.NoError(t, err)
	assert.Equal(t, f.galOrder(), view.MIds())
	assert.Equal(t, 7, view.Len())

	_, err = f.engine.Open(nspi.STAT{ContainerID: 0xDEAD})
	assert.ErrorIs(t, err, table.ErrContainerNotFound)

	_, err = f.engine.Open(nspi.STAT{SortType: nspi.SortTypeDisplayNameRO})
	assert.ErrorIs(t, err, table.ErrUnsupportedSort)
}

func TestOpenPhonetic(t *testing.T) {
	f := newFixture(t, table.DefaultConfig())

	stat := nspi.NewSTAT(1252)
	stat.SortType = nspi.SortTypePhoneticDisplayName
	view, err := f.engine.Open(stat)
	require.NoError(t, err)
	mids := view.MIds()
	assert.Equal(t, []nspi.MId{f.alice, f.bobj}, mids[len(mids)-2:])

	off := newFixture(t, table.Config{})
	_, err = off.engine.Open(stat)
	assert.ErrorIs(t, err, table.ErrUnsupportedSort)
}

func TestOpenIsSnapshot(t *testing.T) {
	f := newFixture(t, table.DefaultConfig())

	view, err := f.engine.Open(nspi.NewSTAT(1252))
	require.NoError(t, err)

	require.NoError(t, f.store.Modify(f.alice, func(obj *directory.Object) error {
		obj.SetString(nspi.PidTagDisplayName, "Zed Smith")
		return nil
	}))

	assert.Equal(t, f.galOrder(), view.MIds())
	assert.Equal(t, "Alice Smith", view.Object(0).DisplayName())

	fresh, err := f.engine.Open(nspi.NewSTAT(1252))
	require.NoError(t, err)
	assert.Equal(t, f.alice, fresh.MIds()[6])
}

func TestCollationFollowsSortLocale(t *testing.T) {
	store := directory.NewStore("/o=Test/cn=gal")
	t.Cleanup(func() { store.Close() })
	for _, name := range []string{"Zorro", "Ärla"} {
		obj := directory.NewObject("/o=Test/cn="+name, nspi.DTMailUser)
		obj.SetString(nspi.PidTagDisplayName, name)
		_, err := store.AddObject(obj)
		require.NoError(t, err)
	}
	engine := table.NewEngine(store, table.DefaultConfig())

	first := func(lcid uint32) string {
		stat := nspi.NewSTAT(1252)
		stat.SortLocale = lcid
		view, err := engine.Open(stat)
		require.NoError(t, err)
		return view.Object(0).DisplayName()
	}

	assert.Equal(t, "Ärla", first(0x0409))
	assert.Equal(t, "Zorro", first(0x041D))
	assert.Equal(t, "Ärla", first(0x9999))
}

func TestLocaleTag(t *testing.T) {
	assert.Equal(t, language.AmericanEnglish, table.LocaleTag(0x0409))
	assert.Equal(t, language.Japanese, table.LocaleTag(0x0411))
	assert.Equal(t, language.AmericanEnglish, table.LocaleTag(0x1234))
	assert.True(t, table.IsKnownLocale(0x0407))
	assert.False(t, table.IsKnownLocale(0x1234))
}

func TestUpdateStat(t *testing.T) {
	f := newFixture(t, table.DefaultConfig())

	tests := []struct {
		name    string
		current nspi.MId
		delta   int32
		wantRec nspi.MId
		wantPos uint32
		moved   int32
	}{
		{"forward from beginning", nspi.MIDBeginningOfTable, 2, f.bobj, 2, 2},
		{"clamped at end", nspi.MIDBeginningOfTable, 100, nspi.MIDEndOfTable, 7, 7},
		{"back from end", nspi.MIDEndOfTable, -1, f.eng, 6, -1},
		{"clamped at beginning", f.bobj, -100, f.alice, 0, -2},
		{"no movement", f.carol, 0, f.carol, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stat := nspi.NewSTAT(1252)
			stat.CurrentRec = tt.current
			stat.Delta = tt.delta

			out, moved, err := f.engine.UpdateStat(stat)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRec, out.CurrentRec)
			assert.Equal(t, tt.wantPos, out.NumPos)
			assert.Equal(t, uint32(7), out.TotalRecs)
			assert.Equal(t, int32(0), out.Delta)
			assert.Equal(t, tt.moved, moved)
			assert.Equal(t, tt.current, stat.CurrentRec)
		})
	}
}

func TestUpdateStatErrors(t *testing.T) {
	f := newFixture(t, table.DefaultConfig())

	stat := nspi.NewSTAT(1252)
	stat.ContainerID = 0xDEAD
	out, _, err := f.engine.UpdateStat(stat)
	assert.ErrorIs(t, err, table.ErrContainerNotFound)
	assert.Equal(t, stat, out)

	stat = nspi.NewSTAT(1252)
	stat.CurrentRec = 0x7777
	out, _, err = f.engine.UpdateStat(stat)
	assert.ErrorIs(t, err, table.ErrPositionNotFound)
	assert.Equal(t, stat, out)

	stat.ContainerID = f.sales
	stat.CurrentRec = f.carol
	_, _, err = f.engine.UpdateStat(stat)
	assert.ErrorIs(t, err, table.ErrPositionNotFound)
}

func TestQueryRows(t *testing.T) {
	f := newFixture(t, table.DefaultConfig())

	t.Run("container", func(t *testing.T) {
		stat := nspi.NewSTAT(1252)
		out, mids, err := f.engine.QueryRows(stat, nil, 3)
		require.NoError(t, err)
		assert.Equal(t, []nspi.MId{f.alice, f.bobb, f.bobj}, mids)
		assert.Equal(t, f.agent, out.CurrentRec)
		assert.Equal(t, uint32(3), out.NumPos)

		out, mids, err = f.engine.QueryRows(out, nil, 10)
		require.NoError(t, err)
		assert.Equal(t, []nspi.MId{f.agent, f.carol, f.dave, f.eng}, mids)
		assert.Equal(t, nspi.MIDEndOfTable, out.CurrentRec)

		_, mids, err = f.engine.QueryRows(out, nil, 10)
		require.NoError(t, err)
		assert.Empty(t, mids)
	})

	t.Run("delta applied first", func(t *testing.T) {
		stat := nspi.NewSTAT(1252)
		stat.Delta = 5
		_, mids, err := f.engine.QueryRows(stat, nil, 5)
		require.NoError(t, err)
		assert.Equal(t, []nspi.MId{f.dave, f.eng}, mids)
	})

	t.Run("zero count without table", func(t *testing.T) {
		_, mids, err := f.engine.QueryRows(nspi.NewSTAT(1252), nil, 0)
		assert.ErrorIs(t, err, table.ErrZeroCount)
		assert.Nil(t, mids)
	})

	t.Run("unknown container", func(t *testing.T) {
		stat := nspi.NewSTAT(1252)
		stat.ContainerID = 0xDEAD
		_, mids, err := f.engine.QueryRows(stat, nil, 1)
		assert.ErrorIs(t, err, table.ErrContainerNotFound)
		assert.Nil(t, mids)
	})

	t.Run("explicit table", func(t *testing.T) {
		explicit := []nspi.MId{f.carol, f.alice, 0x7777}
		out, mids, err := f.engine.QueryRows(nspi.NewSTAT(1252), explicit, 2)
		require.NoError(t, err)
		assert.Equal(t, []nspi.MId{f.carol, f.alice}, mids)
		assert.Equal(t, nspi.MId(0x7777), out.CurrentRec)
		assert.Equal(t, uint32(2), out.NumPos)
		assert.Equal(t, uint32(3), out.TotalRecs)

		out, mids, err = f.engine.QueryRows(out, explicit, 2)
		require.NoError(t, err)
		assert.Equal(t, []nspi.MId{0x7777}, mids)
		assert.Equal(t, nspi.MIDEndOfTable, out.CurrentRec)
	})

	t.Run("explicit table delta", func(t *testing.T) {
		explicit := []nspi.MId{f.carol, f.alice, f.dave, f.eng}
		stat := nspi.NewSTAT(1252)
		stat.CurrentRec = f.alice
		stat.Delta = 1
		out, mids, err := f.engine.QueryRows(stat, explicit, 1)
		require.NoError(t, err)
		assert.Equal(t, []nspi.MId{f.dave}, mids)
		assert.Equal(t, f.eng, out.CurrentRec)
		assert.Equal(t, uint32(3), out.NumPos)
		assert.Equal(t, int32(0), out.Delta)

		stat = nspi.NewSTAT(1252)
		stat.Delta = -3
		_, mids, err = f.engine.QueryRows(stat, explicit, 1)
		require.NoError(t, err)
		assert.Equal(t, []nspi.MId{f.carol}, mids)
	})

	t.Run("explicit table missing record", func(t *testing.T) {
		stat := nspi.NewSTAT(1252)
		stat.CurrentRec = f.bobb
		out, mids, err := f.engine.QueryRows(stat, []nspi.MId{f.carol, f.alice}, 2)
		assert.ErrorIs(t, err, table.ErrPositionNotFound)
		assert.Nil(t, mids)
		assert.Equal(t, stat, out)
	})
}

func TestSeekEntries(t *testing.T) {
	f := newFixture(t, table.DefaultConfig())

	t.Run("display name", func(t *testing.T) {
		out, mids, err := f.engine.SeekEntries(nspi.NewSTAT(1252), nspi.PidTagDisplayName, "C", nil)
		require.NoError(t, err)
		assert.Equal(t, f.carol, out.CurrentRec)
		assert.Equal(t, uint32(4), out.NumPos)
		assert.Equal(t, []nspi.MId{f.carol, f.dave, f.eng}, mids)
	})

	t.Run("string8 target", func(t *testing.T) {
		out, _, err := f.engine.SeekEntries(nspi.NewSTAT(1252),
			nspi.PidTagDisplayName.WithType(nspi.PtypString8), "bob j", nil)
		require.NoError(t, err)
		assert.Equal(t, f.bobj, out.CurrentRec)
	})

	t.Run("past the end", func(t *testing.T) {
		stat := nspi.NewSTAT(1252)
		out, mids, err := f.engine.SeekEntries(stat, nspi.PidTagDisplayName, "zzz", nil)
		assert.ErrorIs(t, err, table.ErrPositionNotFound)
		assert.Nil(t, mids)
		assert.Equal(t, stat, out)
	})

	t.Run("explicit table", func(t *testing.T) {
		explicit := []nspi.MId{f.alice, f.carol, f.eng}
		out, mids, err := f.engine.SeekEntries(nspi.NewSTAT(1252), nspi.PidTagDisplayName, "d", explicit)
		require.NoError(t, err)
		assert.Equal(t, []nspi.MId{f.eng}, mids)
		assert.Equal(t, f.eng, out.CurrentRec)
		assert.Equal(t, uint32(2), out.NumPos)
		assert.Equal(t, uint32(3), out.TotalRecs)
	})

	t.Run("wrong target property", func(t *testing.T) {
		_, _, err := f.engine.SeekEntries(nspi.NewSTAT(1252), nspi.PidTagAccount, "a", nil)
		assert.ErrorIs(t, err, table.ErrInvalidTarget)

		stat := nspi.NewSTAT(1252)
		stat.SortType = nspi.SortTypePhoneticDisplayName
		_, _, err = f.engine.SeekEntries(stat, nspi.PidTagDisplayName, "a", nil)
		assert.ErrorIs(t, err, table.ErrInvalidTarget)

		_, _, err = f.engine.SeekEntries(stat, nspi.PidTagAddressBookPhoneticDisplayName, "b", nil)
		assert.NoError(t, err)

		_, _, err = f.engine.SeekEntries(nspi.NewSTAT(1252), nspi.PidTagDisplayName.WithType(nspi.PtypBinary), "a", nil)
		assert.ErrorIs(t, err, table.ErrInvalidTarget)
	})

	t.Run("unsupported sort type", func(t *testing.T) {
		stat := nspi.NewSTAT(1252)
		stat.SortType = nspi.SortTypeDisplayNameW
		_, _, err := f.engine.SeekEntries(stat, nspi.PidTagDisplayName, "a", nil)
		assert.ErrorIs(t, err, table.ErrUnsupportedSort)
	})
}

func TestGetMatchesRestriction(t *testing.T) {
	f := newFixture(t, table.DefaultConfig())
	bob := filter.NewContent(nspi.PidTagDisplayName, filter.FLPrefix|filter.FLIgnoreCase, "bob")

	t.Run("matches in table order", func(t *testing.T) {
		stat := nspi.NewSTAT(1252)
		stat.CurrentRec = f.carol
		out, mids, err := f.engine.GetMatches(stat, table.MatchRequest{Restriction: bob, Requested: 10})
		require.NoError(t, err)
		assert.Equal(t, []nspi.MId{f.bobb, f.bobj}, mids)
		assert.Equal(t, nspi.MIDBeginningOfTable, out.CurrentRec)
		assert.Equal(t, uint32(0), out.NumPos)
		assert.Equal(t, uint32(2), out.TotalRecs)
	})

	t.Run("no match is an empty table", func(t *testing.T) {
		none := filter.NewContent(nspi.PidTagDisplayName, filter.FLPrefix, "xyz")
		_, mids, err := f.engine.GetMatches(nspi.NewSTAT(1252), table.MatchRequest{Restriction: none})
		require.NoError(t, err)
		assert.Empty(t, mids)
		assert.NotNil(t, mids)
	})

	t.Run("requested zero", func(t *testing.T) {
		stat := nspi.NewSTAT(1252)
		out, mids, err := f.engine.GetMatches(stat, table.MatchRequest{Restriction: bob})
		assert.ErrorIs(t, err, table.ErrTableTooBig)
		assert.Nil(t, mids)
		assert.Equal(t, stat, out)
	})

	t.Run("requested too small", func(t *testing.T) {
		_, _, err := f.engine.GetMatches(nspi.NewSTAT(1252), table.MatchRequest{Restriction: bob, Requested: 1})
		assert.ErrorIs(t, err, table.ErrTableTooBig)
	})

	t.Run("container scope", func(t *testing.T) {
		stat := nspi.NewSTAT(1252)
		stat.ContainerID = f.sales
		_, mids, err := f.engine.GetMatches(stat, table.MatchRequest{Restriction: bob, Requested: 10})
		require.NoError(t, err)
		assert.Equal(t, []nspi.MId{f.bobj}, mids)

		stat.ContainerID = 0xDEAD
		_, _, err = f.engine.GetMatches(stat, table.MatchRequest{Restriction: bob, Requested: 10})
		assert.ErrorIs(t, err, table.ErrContainerNotFound)
	})

	t.Run("sort type", func(t *testing.T) {
		stat := nspi.NewSTAT(1252)
		stat.SortType = nspi.SortTypeDisplayNameRO
		_, _, err := f.engine.GetMatches(stat, table.MatchRequest{Restriction: bob, Requested: 10})
		assert.ErrorIs(t, err, table.ErrUnsupportedSort)
	})

	t.Run("too deep", func(t *testing.T) {
		deep := filter.NewNot(filter.NewNot(filter.NewNot(filter.NewNot(bob))))
		shallow := newFixture(t, table.Config{MaxRestrictionDepth: 3})
		_, _, err := shallow.engine.GetMatches(nspi.NewSTAT(1252), table.MatchRequest{Restriction: deep, Requested: 10})
		assert.ErrorIs(t, err, table.ErrTooComplex)
	})

	t.Run("unsupported restriction", func(t *testing.T) {
		r := &filter.Restriction{Type: 0x09}
		_, _, err := f.engine.GetMatches(nspi.NewSTAT(1252), table.MatchRequest{Restriction: r, Requested: 10})
		assert.ErrorIs(t, err, table.ErrTooComplex)
	})

	t.Run("capped by configuration", func(t *testing.T) {
		capped := newFixture(t, table.Config{MaxExplicitTable: 1})
		_, _, err := capped.engine.GetMatches(nspi.NewSTAT(1252), table.MatchRequest{Restriction: bob, Requested: 10})
		assert.ErrorIs(t, err, table.ErrTableTooBig)
	})
}

func TestGetMatchesObjectTable(t *testing.T) {
	f := newFixture(t, table.DefaultConfig())

	t.Run("current object", func(t *testing.T) {
		stat := nspi.NewSTAT(1252)
		stat.CurrentRec = f.alice
		_, mids, err := f.engine.GetMatches(stat, table.MatchRequest{Requested: 1})
		require.NoError(t, err)
		assert.Equal(t, []nspi.MId{f.alice}, mids)
	})

	t.Run("unlocated current object", func(t *testing.T) {
		stat := nspi.NewSTAT(1252)
		stat.CurrentRec = nspi.MIDCurrent
		_, _, err := f.engine.GetMatches(stat, table.MatchRequest{Requested: 1})
		assert.ErrorIs(t, err, table.ErrRecordNotFound)
	})

	t.Run("members", func(t *testing.T) {
		require.NoError(t, f.store.Modify(f.eng, func(obj *directory.Object) error {
			obj.Set(nspi.PropertyValue{
				Tag:   nspi.PidTagAddressBookMember,
				Value: []string{directorytest.DaveDN, directorytest.AliceDN, "/o=Contoso/cn=gone"},
			})
			return nil
		}))

		stat := nspi.NewSTAT(1252)
		stat.SortType = nspi.SortTypeDisplayNameRO
		stat.CurrentRec = f.eng
		_, mids, err := f.engine.GetMatches(stat, table.MatchRequest{Requested: 10})
		require.NoError(t, err)
		assert.Equal(t, []nspi.MId{f.dave, f.alice}, mids)

		_, mids, err = f.engine.GetMatches(stat, table.MatchRequest{Requested: 10, LinkTag: nspi.PidTagAddressBookPublicDelegates})
		require.NoError(t, err)
		assert.Empty(t, mids)
	})
}

func TestResortRestriction(t *testing.T) {
	f := newFixture(t, table.DefaultConfig())

	stat := nspi.NewSTAT(1252)
	stat.CurrentRec = f.dave
	out, mids, err := f.engine.ResortRestriction(stat, []nspi.MId{f.dave, f.alice, 0x7777, f.alice, f.bobj})
	require.NoError(t, err)
	assert.Equal(t, []nspi.MId{f.alice, f.bobj, f.dave}, mids)
	assert.Equal(t, f.dave, out.CurrentRec)
	assert.Equal(t, uint32(2), out.NumPos)
	assert.Equal(t, uint32(3), out.TotalRecs)

	stat.CurrentRec = f.carol
	out, _, err = f.engine.ResortRestriction(stat, []nspi.MId{f.dave, f.alice})
	require.NoError(t, err)
	assert.Equal(t, f.alice, out.CurrentRec)

	stat.ContainerID = f.sales
	_, mids, err = f.engine.ResortRestriction(stat, []nspi.MId{f.alice, f.dave, f.bobj})
	require.NoError(t, err)
	assert.Equal(t, []nspi.MId{f.alice, f.bobj}, mids)

	stat = nspi.NewSTAT(1252)
	stat.SortType = nspi.SortTypeDisplayNameW
	out, mids, err = f.engine.ResortRestriction(stat, []nspi.MId{f.alice})
	assert.ErrorIs(t, err, table.ErrUnsupportedSort)
	assert.Nil(t, mids)
	assert.Equal(t, stat, out)
}

func TestCompareMIds(t *testing.T) {
	f := newFixture(t, table.DefaultConfig())
	stat := nspi.NewSTAT(1252)

	cmp, err := f.engine.CompareMIds(stat, f.alice, f.dave)
	require.NoError(t, err)
	assert.Less(t, cmp, int32(0))

	cmp, err = f.engine.CompareMIds(stat, f.dave, f.alice)
	require.NoError(t, err)
	assert.Greater(t, cmp, int32(0))

	cmp, err = f.engine.CompareMIds(stat, f.carol, f.carol)
	require.NoError(t, err)
	assert.Equal(t, int32(0), cmp)

	for _, mid := range []nspi.MId{nspi.MIDBeginningOfTable, nspi.MIDCurrent, nspi.MIDEndOfTable, 0x0F} {
		_, err = f.engine.CompareMIds(stat, mid, f.alice)
		assert.ErrorIs(t, err, table.ErrRecordNotFound)
	}

	stat.ContainerID = f.sales
	_, err = f.engine.CompareMIds(stat, f.alice, f.carol)
	assert.ErrorIs(t, err, table.ErrRecordNotFound)

	stat.ContainerID = 0xDEAD
	_, err = f.engine.CompareMIds(stat, f.alice, f.dave)
	assert.ErrorIs(t, err, table.ErrContainerNotFound)
}
