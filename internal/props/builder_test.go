package props_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/nspid/internal/codepage"
	"github.com/KilimcininKorOglu/nspid/internal/directory"
	"github.com/KilimcininKorOglu/nspid/internal/directory/directorytest"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
	"github.com/KilimcininKorOglu/nspid/internal/props"
)

var serverUID = nspi.FlatUIDFromUUID(uuid.MustParse("0b9a5d2f-3f41-4a6e-9d3c-2a1f7e0c4b55"))

func newBuilder(t *testing.T) (*props.Builder, *directory.Store) {
	t.Helper()
	store := directorytest.NewStore(t)
	return props.NewBuilder(store, codepage.NewConverter(codepage.DefaultRegistry()), serverUID), store
}

func mustObject(t *testing.T, store *directory.Store, dn string) *directory.Object {
	t.Helper()
	obj, ok := store.ObjectByDN(dn)
	require.True(t, ok, dn)
	return obj
}

func TestRowConvertsStrings(t *testing.T) {
	b, store := newBuilder(t)
	alice := mustObject(t, store, directorytest.AliceDN)

	tags := nspi.PropTagArray{
		nspi.PidTagDisplayName,
		nspi.PidTagDisplayName.WithType(nspi.PtypString8),
		nspi.PidTagDisplayName.WithType(nspi.PtypUnspecified),
		nspi.PidTagDisplayName.WithType(nspi.PtypInteger32),
	}
	row := b.Row(alice, tags, props.Options{CodePage: 1252})
	require.Len(t, row, 4)

	assert.Equal(t, nspi.PidTagDisplayName, row[0].Tag)
	assert.Equal(t, "Alice Smith", row[0].Value)
	assert.Equal(t, nspi.PtypString8, row[1].Tag.Type())
	assert.Equal(t, []byte("Alice Smith"), row[1].Value)
	assert.Equal(t, nspi.PtypString8, row[2].Tag.Type())
	assert.True(t, row[3].IsError())
	assert.Equal(t, nspi.NotSupported, row[3].Value)
}

func TestRowUnicodeCodePage(t *testing.T) {
	b, store := newBuilder(t)
	alice := mustObject(t, store, directorytest.AliceDN)

	row := b.Row(alice, nspi.PropTagArray{nspi.PidTagDisplayName.WithType(nspi.PtypUnspecified)},
		props.Options{CodePage: nspi.CodePageWinUnicode})
	assert.Equal(t, nspi.PidTagDisplayName, row[0].Tag)
	assert.Equal(t, "Alice Smith", row[0].Value)
}

func TestRowValueless(t *testing.T) {
	b, store := newBuilder(t)
	carol := mustObject(t, store, directorytest.CarolDN)

	row := b.Row(carol, nspi.PropTagArray{nspi.PidTagAccount, nspi.PidTagTitle}, props.Options{CodePage: 1252})
	assert.False(t, row[0].IsError())
	assert.True(t, row[1].IsError())
	assert.Equal(t, uint32(0x3A17000A), uint32(row[1].Tag))
	assert.Equal(t, nspi.NotFound, row[1].Value)
	assert.True(t, row.HasErrors())

	missing := b.RowForMId(nspi.MIDCurrent, nspi.PropTagArray{nspi.PidTagDisplayName}, props.Options{})
	require.Len(t, missing, 1)
	assert.Equal(t, uint32(0x3001000A), uint32(missing[0].Tag))

	missing = b.RowForMId(0xFFFF, nspi.PropTagArray{nspi.PidTagDisplayName}, props.Options{})
	assert.True(t, missing.HasErrors())
}

func TestEntryIDs(t *testing.T) {
	b, store := newBuilder(t)
	alice := mustObject(t, store, directorytest.AliceDN)

	t.Run("permanent by default", func(t *testing.T) {
		row := b.Row(alice, nspi.PropTagArray{nspi.PidTagEntryID}, props.Options{})
		id, err := nspi.ParseEntryID(row[0].Value.([]byte))
		require.NoError(t, err)
		assert.False(t, id.IsEphemeral())
		assert.Equal(t, directorytest.AliceDN, id.DN)
		assert.Equal(t, nspi.NSPIProviderUID, id.ProviderUID)
	})

	t.Run("ephemeral with fEphID", func(t *testing.T) {
		row := b.Row(alice, nspi.PropTagArray{nspi.PidTagEntryID}, props.Options{Flags: nspi.FlagEphID})
		id, err := nspi.ParseEntryID(row[0].Value.([]byte))
		require.NoError(t, err)
		assert.True(t, id.IsEphemeral())
		assert.Equal(t, alice.MId, id.MId)
		assert.Equal(t, serverUID, id.ProviderUID)
	})

	t.Run("instance key", func(t *testing.T) {
		row := b.Row(alice, nspi.PropTagArray{nspi.PidTagInstanceKey}, props.Options{})
		key := row[0].Value.([]byte)
		require.Len(t, key, 4)
		assert.Equal(t, byte(alice.MId), key[0])
	})

	t.Run("search key", func(t *testing.T) {
		assert.Equal(t, append([]byte("EX:"+"/O=CONTOSO/OU=EXCHANGE ADMINISTRATIVE GROUP/CN=RECIPIENTS/CN=ALICE"), 0),
			props.SearchKey(alice))
	})
}

func TestContainerProperties(t *testing.T) {
	b, store := newBuilder(t)
	gal, ok := store.Container(nspi.GALContainerID)
	require.True(t, ok)
	salesEast := mustObject(t, store, "/o=Contoso/cn=addrlists/cn=sales-east")
	salesID := directorytest.MustContainer(t, store, directorytest.SalesDN)

	tags := nspi.PropTagArray{
		nspi.PidTagAddressBookContainerID,
		nspi.PidTagDepth,
		nspi.PidTagAddressBookIsMaster,
		nspi.PidTagAddressBookParentEntryID,
		nspi.PidTagContainerContents,
	}

	row := b.Row(gal.Object, tags, props.Options{ContainerID: 99})
	assert.Equal(t, int32(0), row[0].Value)
	assert.Equal(t, int32(0), row[1].Value)
	assert.Equal(t, true, row[2].Value)
	assert.True(t, row[3].IsError())
	assert.Equal(t, nspi.NotSupported, row[4].Value)

	row = b.Row(salesEast, tags, props.Options{})
	assert.Equal(t, int32(salesEast.MId), row[0].Value)
	assert.Equal(t, int32(2), row[1].Value)
	assert.Equal(t, false, row[2].Value)
	parent, err := nspi.ParseEntryID(row[3].Value.([]byte))
	require.NoError(t, err)
	assert.Equal(t, directorytest.SalesDN, parent.DN)
	assert.Equal(t, nspi.DTContainer, parent.DisplayType)

	alice := mustObject(t, store, directorytest.AliceDN)
	row = b.Row(alice, append(tags[:4:4], nspi.PidTagContainerFlags), props.Options{ContainerID: salesID})
	assert.Equal(t, int32(salesID), row[0].Value)
	for _, v := range row[1:] {
		assert.True(t, v.IsError(), "%s", v.Tag)
	}
}

func TestRows(t *testing.T) {
	b, store := newBuilder(t)
	alice := directorytest.MustMId(t, store, directorytest.AliceDN)

	rows := b.Rows([]nspi.MId{alice, 0x7777}, props.DefaultColumns, props.Options{CodePage: 1252})
	require.Len(t, rows, 2)
	require.Len(t, rows[0], len(props.DefaultColumns))

	name, ok := rows[0].Find(nspi.PidTagDisplayName)
	require.True(t, ok)
	assert.Equal(t, []byte("Alice Smith"), name.Value)
	office, ok := rows[0].Find(nspi.PidTagOfficeLocation)
	require.True(t, ok)
	assert.Equal(t, []byte("Building 1"), office.Value)
	phone, _ := rows[0].Find(nspi.PidTagPrimaryTelephoneNumber)
	assert.True(t, phone.IsError())

	for _, v := range rows[1] {
		assert.True(t, v.IsError())
	}
}

func TestPropList(t *testing.T) {
	b, store := newBuilder(t)
	alice := mustObject(t, store, directorytest.AliceDN)

	tags := b.PropList(alice, 0)
	assert.True(t, tags.Contains(nspi.PidTagEntryID))
	assert.True(t, tags.Contains(nspi.PidTagSurname))
	assert.False(t, tags.Contains(nspi.PidTagBusinessTelephoneNumber))
	for _, tag := range tags {
		assert.NotEqual(t, nspi.PtypString, tag.Type(), tag.String())
	}
	assert.Contains(t, tags, nspi.PidTagDisplayName.WithType(nspi.PtypString8))

	gal, _ := store.Container(nspi.GALContainerID)
	assert.True(t, b.PropList(gal.Object, 0).Contains(nspi.PidTagContainerContents))
	assert.False(t, b.PropList(gal.Object, nspi.FlagSkipObjects).Contains(nspi.PidTagContainerContents))
}

func TestReportedType(t *testing.T) {
	assert.Equal(t, nspi.PtypString8, props.ReportedType(nspi.PidTagDisplayName).Type())
	assert.Equal(t, nspi.PtypMultipleString8, props.ReportedType(nspi.PidTagAddressBookProxyAddresses).Type())
	assert.Equal(t, nspi.PidTagEntryID, props.ReportedType(nspi.PidTagEntryID))

	un := props.Unspecified(nspi.PropTagArray{nspi.PidTagDisplayName})
	assert.Equal(t, nspi.PtypUnspecified, un[0].Type())
}
