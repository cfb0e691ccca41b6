package arenaJSON

// Classifier tables. Indexed by a single code unit truncated to a byte;
// units above 255 are never whitespace or digits and must be checked by the
// caller before indexing.
var (
	whitespaceTable [256]bool
	digitTable      [256]bool
)

// digitValues avoids an int->float conversion in the number evaluation loop.
var digitValues = [10]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

const hexChars = "0123456789abcdef"

// utf8Lengths gives the sequence length for a UTF-8 leading byte, looked up
// via byte>>2. Zero marks continuation and over-long lead bytes.
var utf8Lengths = [64]int{
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	2, 2, 2, 2, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 0, 0,
}

// encodingSizes maps an Encoding to its code unit size in bytes.
var encodingSizes = [5]int{1, 2, 2, 4, 4}

func init() {
	whitespaceTable['\t'] = true
	whitespaceTable['\n'] = true
	whitespaceTable['\r'] = true
	whitespaceTable[' '] = true

	for c := '0'; c <= '9'; c++ {
		digitTable[c] = true
	}
}

func isWhitespace[U CodeUnit](u U) bool {
	if uint32(u) >= 256 {
		return false
	}
	return whitespaceTable[byte(u)]
}

func isDigit[U CodeUnit](u U) bool {
	if uint32(u) >= 256 {
		return false
	}
	return digitTable[byte(u)]
}
