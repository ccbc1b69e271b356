package codepage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

func TestNewRegistry(t *testing.T) {
	t.Run("all builtin", func(t *testing.T) {
		r := DefaultRegistry()
		assert.True(t, r.Supports(1252))
		assert.True(t, r.Supports(932))
		assert.True(t, r.Supports(nspi.CodePageTeletex))
		assert.False(t, r.Supports(12345))
	})

	t.Run("restricted", func(t *testing.T) {
		r, err := NewRegistry([]uint32{1252, 1251})
		require.NoError(t, err)
		assert.True(t, r.Supports(1251))
		assert.False(t, r.Supports(932))
		assert.True(t, r.Supports(nspi.CodePageWinUnicode))
		assert.Equal(t, []uint32{nspi.CodePageWinUnicode, 1251, 1252}, r.CodePages())
	})

	t.Run("unknown code page", func(t *testing.T) {
		_, err := NewRegistry([]uint32{99999})
		assert.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestEncodeDecode(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name string
		cp   uint32
		in   string
		want []byte
	}{
		{"ascii in 1252", 1252, "Alice", []byte("Alice")},
		{"latin in 1252", 1252, "Müller", []byte{'M', 0xFC, 'l', 'l', 'e', 'r'}},
		{"cyrillic in 1251", 1251, "Иван", []byte{0xC8, 0xE2, 0xE0, 0xED}},
		{"teletex", nspi.CodePageTeletex, "é", []byte{0xE9}},
		{"shift jis", 932, "山田", []byte{0x8E, 0x52, 0x93, 0x63}},
		{"winunicode as utf-8", nspi.CodePageWinUnicode, "é", []byte{0xC3, 0xA9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Encode(tt.in, tt.cp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			back, err := r.Decode(got, tt.cp)
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestEncodeUnmappable(t *testing.T) {
	r := DefaultRegistry()
	got, err := r.Encode("a山", 1252)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, byte('a'), got[0])
}

func TestEncodeUnsupported(t *testing.T) {
	r := DefaultRegistry()
	_, err := r.Encode("x", 4242)
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = r.Decode([]byte("x"), 4242)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestConvert(t *testing.T) {
	c := NewConverter(DefaultRegistry())

	unicodeName := nspi.PropertyValue{Tag: nspi.PidTagDisplayName, Value: "Zoë"}
	eightBitDept := nspi.PropertyValue{Tag: nspi.PidTagDepartmentName.WithType(nspi.PtypString8), Value: "Sales"}
	members := nspi.PropertyValue{Tag: nspi.PidTagAddressBookMember, Value: []string{"/o=x/cn=a", "/o=x/cn=b"}}
	certs := nspi.PropertyValue{Tag: nspi.PidTagUserX509Certificate, Value: [][]byte{{1, 2}}}

	tests := []struct {
		name      string
		in        nspi.PropertyValue
		requested nspi.PropType
		cp        uint32
		wantTag   nspi.PropTag
		wantValue interface{}
	}{
		{"unicode to 8-bit", unicodeName, nspi.PtypString8, 1252, 0x3001001E, []byte{'Z', 'o', 0xEB}},
		{"unicode unchanged", unicodeName, nspi.PtypString, 1252, 0x3001001F, "Zoë"},
		{"8-bit to unicode", eightBitDept, nspi.PtypString, 1252, 0x3A18001F, "Sales"},
		{"8-bit unchanged", eightBitDept, nspi.PtypString8, 1252, 0x3A18001E, []byte("Sales")},
		{"winunicode with 8-bit request", unicodeName, nspi.PtypString8, nspi.CodePageWinUnicode, 0x3001001E, []byte("Zoë")},
		{"unspecified string becomes 8-bit", unicodeName, nspi.PtypUnspecified, 1252, 0x3001001E, []byte{'Z', 'o', 0xEB}},
		{"unspecified string under winunicode", unicodeName, nspi.PtypUnspecified, nspi.CodePageWinUnicode, 0x3001001F, "Zoë"},
		{"multi 8-bit", members, nspi.PtypMultipleString8, 1252, 0x8009101E, [][]byte{[]byte("/o=x/cn=a"), []byte("/o=x/cn=b")}},
		{"multi to unicode", members, nspi.PtypMultipleString, 1252, 0x8009101F, []string{"/o=x/cn=a", "/o=x/cn=b"}},
		{"binary unchanged", certs, nspi.PtypMultipleBinary, 1252, nspi.PidTagUserX509Certificate, [][]byte{{1, 2}}},
		{"mismatch", certs, nspi.PtypString8, 1252, 0x3A70000A, nspi.NotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Convert(tt.in, tt.requested, tt.cp)
			assert.Equal(t, tt.wantTag, got.Tag)
			assert.Equal(t, tt.wantValue, got.Value)
		})
	}
}

func TestConvertDoesNotAliasStoredValue(t *testing.T) {
	c := NewConverter(DefaultRegistry())
	stored := nspi.PropertyValue{Tag: nspi.PidTagUserX509Certificate, Value: [][]byte{{1}}}

	got := c.Convert(stored, nspi.PtypMultipleBinary, 1252)
	got.Value.([][]byte)[0][0] = 7

	assert.Equal(t, byte(1), stored.Value.([][]byte)[0][0])
}

func TestToStored(t *testing.T) {
	c := NewConverter(DefaultRegistry())

	v, err := c.ToStored(nspi.PropertyValue{Tag: 0x3A18001E, Value: []byte{'M', 0xFC}}, 1252)
	require.NoError(t, err)
	assert.Equal(t, "Mü", v.Value)
	assert.Equal(t, nspi.PropTag(0x3A18001E), v.Tag)

	v, err = c.ToStored(nspi.PropertyValue{Tag: nspi.PidTagAddressBookMember, Value: [][]byte{[]byte("a")}}, 1252)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, v.Value)

	_, err = c.ToStored(nspi.PropertyValue{Tag: nspi.PidTagAddressBookMember, Value: 42}, 1252)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}
