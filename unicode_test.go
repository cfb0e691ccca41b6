package arenaJSON

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeText renders a Go string as a byte buffer in the given encoding,
// for feeding the parser.
func encodeText(t *testing.T, s string, enc Encoding) []byte {
	t.Helper()
	switch enc {
	case EncodingUTF8:
		return []byte(s)
	case EncodingUTF16, EncodingUTF16Swap:
		units := Units[uint16](s)
		if enc == EncodingUTF16Swap {
			for i := range units {
				units[i] = swapUnit(units[i])
			}
		}
		return append([]byte(nil), unitsToBytes(units)...)
	default:
		units := Units[uint32](s)
		if enc == EncodingUTF32Swap {
			for i := range units {
				units[i] = swapUnit(units[i])
			}
		}
		return append([]byte(nil), unitsToBytes(units)...)
	}
}

var allEncodings = []Encoding{
	EncodingUTF8, EncodingUTF16, EncodingUTF16Swap, EncodingUTF32, EncodingUTF32Swap,
}

func TestDetectEncoding(t *testing.T) {
	text := `{"a":1}`
	for _, enc := range allEncodings {
		got, err := DetectEncoding(encodeText(t, text, enc))
		require.NoError(t, err)
		assert.Equal(t, enc, got, "wrong detection for %v", enc)
	}

	// Odd byte counts are always UTF-8.
	got, err := DetectEncoding([]byte(`{"a":1,"b":2}`))
	require.NoError(t, err)
	assert.Equal(t, EncodingUTF8, got)

	// A leading 32-bit zero unit is undecidable.
	_, err = DetectEncoding([]byte{0, 0, 0, 0})
	assert.Error(t, err)
}

func TestEncodingClosure(t *testing.T) {
	text := `{"a":"héllo 🎵","b":[1,2.5,-3e4],"c":{"d":null},"e":"tab\there"}`

	want := ""
	for _, enc := range allEncodings {
		data := encodeText(t, text, enc)

		doc8 := New[uint8]()
		require.NoError(t, doc8.ParseEncoding(data, enc, NonDestructiveNul), "utf8 document, input %v", enc)
		doc16 := New[uint16]()
		require.NoError(t, doc16.ParseEncoding(encodeText(t, text, enc), enc, ParseDefault))
		doc32 := New[uint32]()
		require.NoError(t, doc32.ParseEncoding(encodeText(t, text, enc), enc, ParseDefault))

		got8 := doc8.Root().EncodeToString(NoWhitespace)
		got16 := doc16.Root().EncodeToString(NoWhitespace)
		got32 := doc32.Root().EncodeToString(NoWhitespace)

		if want == "" {
			want = got8
		}
		assert.Equal(t, want, got8, "8-bit document diverged for input %v", enc)
		assert.Equal(t, want, got16, "16-bit document diverged for input %v", enc)
		assert.Equal(t, want, got32, "32-bit document diverged for input %v", enc)
	}
}

func TestEncodingAutoDetectParse(t *testing.T) {
	text := `{"k":"v","n":[1,2,3]}`
	for _, enc := range allEncodings {
		doc := New[uint8]()
		require.NoError(t, doc.Parse(encodeText(t, text, enc), ParseDefault), "input %v", enc)
		assert.Equal(t, "v", doc.Root().Dig("k").AsGoString())
		assert.Equal(t, 3.0, doc.Root().Dig("n", "2").AsNumber())
	}
}

func TestDecodeRuneErrors(t *testing.T) {
	// Truncated UTF-8 sequence.
	_, _, err := decodeRune([]uint8{0xE2, 0x82}, false)
	assert.Error(t, err)
	// Continuation byte in lead position.
	_, _, err = decodeRune([]uint8{0x82}, false)
	assert.Error(t, err)
	// Lone high surrogate.
	_, _, err = decodeRune([]uint16{0xD834}, false)
	assert.Error(t, err)
	// Mismatched pair.
	_, _, err = decodeRune([]uint16{0xD834, 0x0041}, false)
	assert.Error(t, err)
	// Out of range UTF-32.
	_, _, err = decodeRune([]uint32{0x110000}, false)
	assert.Error(t, err)
	// Surrogate half as UTF-32.
	_, _, err = decodeRune([]uint32{0xD800}, false)
	assert.Error(t, err)

	// A valid pair decodes to one code point.
	r, n, err := decodeRune([]uint16{0xD834, 0xDD1E}, false)
	require.NoError(t, err)
	assert.Equal(t, rune(0x1D11E), r)
	assert.Equal(t, 2, n)
}

func TestInvalidEncodingInString(t *testing.T) {
	doc := New[uint8]()
	err := doc.Parse([]byte{'[', '"', 0xFF, '"', ']'}, ParseDefault)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestUnitsRoundTrip(t *testing.T) {
	samples := []string{"", "ascii", "héllo wörld", "𝄞 music", "mixed 🎵 content"}
	for _, s := range samples {
		assert.Equal(t, s, UnitsToString(Units[uint8](s)))
		assert.Equal(t, s, UnitsToString(Units[uint16](s)))
		assert.Equal(t, s, UnitsToString(Units[uint32](s)))
	}
}

func TestSwapUnit(t *testing.T) {
	assert.Equal(t, uint16(0x3412), swapUnit(uint16(0x1234)))
	assert.Equal(t, uint32(0x78563412), swapUnit(uint32(0x12345678)))
	assert.Equal(t, uint8(0xAB), swapUnit(uint8(0xAB)))
}

func TestMeasureMatchesConvert(t *testing.T) {
	// Measuring then converting 16-bit input into 8-bit output must agree
	// on the output length.
	in16 := Units[uint16]("a𝄞é")
	pos := 0
	total := 0
	for pos < len(in16) {
		nin, nout, err := measureUnit[uint16, uint8](in16[pos:], false)
		require.NoError(t, err)
		pos += nin
		total += nout
	}
	out := make([]uint8, total)
	pos, n := 0, 0
	for pos < len(in16) {
		nin, nout, err := convertUnit[uint16, uint8](in16[pos:], out[n:], false)
		require.NoError(t, err)
		pos += nin
		n += nout
	}
	assert.Equal(t, total, n)
	assert.Equal(t, "a𝄞é", UnitsToString(out))
}
