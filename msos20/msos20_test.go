package msos20_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/diag"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/msos20"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/usb"
)

func u16(v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return b[:]
}

func u32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func setHeader(winver uint32, total uint16) []byte {
	b := append(u16(10), u16(msos20.TypeSetHeader)...)
	b = append(b, u32(winver)...)
	return append(b, u16(total)...)
}

func configSubset(config, reserved uint8, total uint16) []byte {
	b := append(u16(8), u16(msos20.TypeConfigSubsetHeader)...)
	b = append(b, config, reserved)
	return append(b, u16(total)...)
}

func functionSubset(firstIface, reserved uint8, subset uint16) []byte {
	b := append(u16(8), u16(msos20.TypeFunctionSubsetHeader)...)
	b = append(b, firstIface, reserved)
	return append(b, u16(subset)...)
}

func compatibleID(id, sub string) []byte {
	b := append(u16(20), u16(msos20.TypeCompatibleID)...)
	var idb, subb [8]byte
	copy(idb[:], id)
	copy(subb[:], sub)
	b = append(b, idb[:]...)
	return append(b, subb[:]...)
}

// utf16le encodes ASCII text as UTF-16LE with a trailing null code unit.
func utf16le(s string) []byte {
	out := make([]byte, 0, (len(s)+1)*2)
	for i := 0; i < len(s); i++ {
		out = append(out, s[i], 0)
	}
	return append(out, 0, 0)
}

func registryProperty(dataType uint16, name, data []byte) []byte {
	wLength := uint16(8 + len(name) + 2 + len(data))
	b := append(u16(wLength), u16(msos20.TypeRegistryProperty)...)
	b = append(b, u16(dataType)...)
	b = append(b, u16(uint16(len(name)))...)
	b = append(b, name...)
	b = append(b, u16(uint16(len(data)))...)
	return append(b, data...)
}

// winusbSet builds a fully consistent descriptor set with one function
// carrying a WINUSB compatible ID and a DeviceInterfaceGUIDs property.
func winusbSet(t *testing.T) []byte {
	t.Helper()
	prop := registryProperty(msos20.RegMultiSz,
		utf16le("DeviceInterfaceGUIDs"),
		append(utf16le("{8FE6D4D7-49DD-41E7-9486-49AFC6BFE475}"), 0, 0))
	compat := compatibleID("WINUSB", "")
	fn := functionSubset(0, 0, uint16(8+len(compat)+len(prop)))
	cfg := configSubset(1, 0, uint16(8+8+len(compat)+len(prop)))
	total := uint16(10 + 8 + 8 + len(compat) + len(prop))

	var buf []byte
	buf = append(buf, setHeader(usb.WindowsVersion81, total)...)
	buf = append(buf, cfg...)
	buf = append(buf, fn...)
	buf = append(buf, compat...)
	buf = append(buf, prop...)
	require.Equal(t, int(total), len(buf))
	return buf
}

func TestParseWellFormedSet(t *testing.T) {
	buf := winusbSet(t)

	set, res := msos20.Parse(buf)
	require.NotNil(t, set)
	assert.Equal(t, diag.WellFormed, res.Verdict)
	assert.Zero(t, res.ErrorCount)
	assert.Zero(t, res.WarningCount)
	require.Len(t, set.Entries, 5)

	h, ok := set.Entries[0].(*msos20.SetHeader)
	require.True(t, ok)
	assert.Equal(t, 0, h.Offset)
	assert.Equal(t, uint32(usb.WindowsVersion81), h.DwWindowsVersion)
	assert.Equal(t, uint16(len(buf)), h.WTotalLength)

	cfg, ok := set.Entries[1].(*msos20.ConfigSubsetHeader)
	require.True(t, ok)
	assert.Equal(t, uint8(1), cfg.BConfigurationValue)

	fn, ok := set.Entries[2].(*msos20.FunctionSubsetHeader)
	require.True(t, ok)
	assert.Equal(t, uint8(0), fn.BFirstInterface)

	compat, ok := set.Entries[3].(*msos20.CompatibleID)
	require.True(t, ok)
	assert.Equal(t, "WINUSB", string(compat.ID[:6]))

	prop, ok := set.Entries[4].(*msos20.RegistryProperty)
	require.True(t, ok)
	assert.Equal(t, uint16(msos20.RegMultiSz), prop.WPropertyDataType)
	assert.Equal(t, "DeviceInterfaceGUIDs", prop.PropertyName)
	assert.Equal(t, "{8FE6D4D7-49DD-41E7-9486-49AFC6BFE475}", prop.PropertyData)
}

func TestParseSetHeaderWarnings(t *testing.T) {
	// Unusual Windows version and a total length that disagrees with the
	// buffer, all in one header.
	buf := setHeader(0x0A000000, 176)

	set, res := msos20.Parse(buf)
	require.Len(t, set.Entries, 1)
	assert.Equal(t, diag.ValidWithWarnings, res.Verdict)
	assert.Equal(t, 2, res.WarningCount)

	messages := []string{res.Diagnostics[0].Message, res.Diagnostics[1].Message}
	assert.Contains(t, messages[0], "total length mismatch")
	assert.Contains(t, messages[1], "unusual Windows version")
}

func TestParseSetHeaderNotAtBeginning(t *testing.T) {
	total := uint16(8 + 10)
	var buf []byte
	buf = append(buf, configSubset(1, 0, total)...)
	buf = append(buf, setHeader(usb.WindowsVersion81, total)...)

	_, res := msos20.Parse(buf)
	assert.Equal(t, diag.ValidWithWarnings, res.Verdict)
	require.Equal(t, 1, res.WarningCount)
	assert.Contains(t, res.Diagnostics[0].Message, "not at beginning")
	assert.Equal(t, 8, res.Diagnostics[0].Offset)
}

func TestParseTruncatedHeader(t *testing.T) {
	for _, n := range []int{1, 2, 3} {
		buf := make([]byte, n)
		set, res := msos20.Parse(buf)
		assert.Empty(t, set.Entries)
		require.Equal(t, 1, res.ErrorCount, "%d-byte buffer", n)
		assert.Equal(t, 0, res.Diagnostics[0].Offset)
		assert.Contains(t, res.Diagnostics[0].Message, "truncated descriptor")
	}
}

func TestParseFatalLengths(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want string
	}{
		{"zero length", []byte{0, 0, 0, 0}, "zero length descriptor"},
		{"below minimum", []byte{2, 0, 0, 0}, "invalid descriptor length"},
		{"beyond buffer", append(u16(32), u16(msos20.TypeSetHeader)...), "extends beyond buffer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, res := msos20.Parse(tt.buf)
			assert.Empty(t, set.Entries)
			require.Equal(t, 1, res.ErrorCount)
			assert.Contains(t, res.Diagnostics[0].Message, tt.want)
			assert.Equal(t, diag.Invalid, res.Verdict)
		})
	}
}

func TestParseUnknownTypeHaltsWalk(t *testing.T) {
	var unknown []byte
	unknown = append(unknown, u16(8)...)
	unknown = append(unknown, u16(0x0005)...)
	unknown = append(unknown, 0, 0, 0, 0)

	buf := append(unknown, compatibleID("WINUSB", "")...)

	set, res := msos20.Parse(buf)
	assert.Empty(t, set.Entries, "nothing after the unknown type is processed")
	require.Equal(t, 1, res.ErrorCount)
	assert.Contains(t, res.Diagnostics[0].Message, "unknown descriptor type 0x0005")
	assert.Equal(t, 0, res.Diagnostics[0].Offset)
}

func TestParseConsumedLengthsMatchStopOffset(t *testing.T) {
	// Two good entries followed by a truncation; the walk must stop at
	// exactly the sum of the consumed declared lengths.
	var buf []byte
	buf = append(buf, setHeader(usb.WindowsVersion81, 21)...)
	buf = append(buf, configSubset(1, 0, 11)...)
	buf = append(buf, 0xAA, 0xBB, 0xCC) // 3 stray bytes, not a full header

	set, res := msos20.Parse(buf)
	require.Len(t, set.Entries, 2)

	consumed := 0
	for _, e := range set.Entries {
		consumed += int(e.Meta().WLength)
	}
	last := res.Diagnostics[len(res.Diagnostics)-1]
	assert.Equal(t, diag.SeverityError, last.Severity)
	assert.Contains(t, last.Message, "truncated descriptor")
	assert.Equal(t, consumed, last.Offset)
}

func TestParseCompatibleIDWarnings(t *testing.T) {
	t.Run("not WINUSB", func(t *testing.T) {
		set, res := msos20.Parse(compatibleID("LIBUSB", ""))
		require.Len(t, set.Entries, 1)
		require.Equal(t, 1, res.WarningCount)
		assert.Contains(t, res.Diagnostics[0].Message, "not 'WINUSB'")
	})

	t.Run("missing null termination", func(t *testing.T) {
		set, res := msos20.Parse(compatibleID("WINUSBXX", ""))
		require.Len(t, set.Entries, 1)
		require.Equal(t, 1, res.WarningCount)
		assert.Contains(t, res.Diagnostics[0].Message, "null-terminated")
	})

	t.Run("too short", func(t *testing.T) {
		buf := compatibleID("WINUSB", "")[:12]
		binary.LittleEndian.PutUint16(buf, 12)
		set, res := msos20.Parse(buf)
		assert.Empty(t, set.Entries)
		require.Equal(t, 1, res.ErrorCount)
		assert.Contains(t, res.Diagnostics[0].Message, "too short")
	})
}

func TestParseSubsetBoundsErrors(t *testing.T) {
	t.Run("configuration subset beyond buffer", func(t *testing.T) {
		_, res := msos20.Parse(configSubset(1, 0, 100))
		require.Equal(t, 1, res.ErrorCount)
		assert.Contains(t, res.Diagnostics[0].Message, "configuration subset extends beyond buffer")
	})

	t.Run("function subset beyond buffer", func(t *testing.T) {
		_, res := msos20.Parse(functionSubset(0, 0, 100))
		require.Equal(t, 1, res.ErrorCount)
		assert.Contains(t, res.Diagnostics[0].Message, "function subset extends beyond buffer")
	})

	t.Run("function subset smaller than header", func(t *testing.T) {
		_, res := msos20.Parse(functionSubset(0, 0, 4))
		require.Equal(t, 1, res.ErrorCount)
		assert.Contains(t, res.Diagnostics[0].Message, "smaller than header length")
	})

	t.Run("reserved fields warn", func(t *testing.T) {
		buf := append(configSubset(1, 9, 16), functionSubset(0, 9, 8)...)
		_, res := msos20.Parse(buf)
		assert.Equal(t, 2, res.WarningCount)
		assert.Zero(t, res.ErrorCount)
	})
}

func TestParseIdempotent(t *testing.T) {
	buf := winusbSet(t)
	s1, r1 := msos20.Parse(buf)
	s2, r2 := msos20.Parse(buf)
	assert.Equal(t, s1, s2)
	assert.Equal(t, r1, r2)
}
