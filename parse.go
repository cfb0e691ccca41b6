package arenaJSON

import "unsafe"

// Parse flags.
const (
	ParseDefault = 0

	// NoStringTerminators leaves the input free of injected zero units;
	// consumers use the view lengths instead. Mutually exclusive with
	// ForceStringTerminators.
	NoStringTerminators = 1 << 0

	// NoInlineTranslation copies strings into the pool whenever any escape
	// or width/byte-order translation is needed instead of rewriting the
	// input in place.
	NoInlineTranslation = 1 << 1

	// ForceStringTerminators copies every string and number into the pool
	// and zero-terminates there, leaving the input untouched.
	ForceStringTerminators = 1 << 2

	// NonDestructive guarantees the input buffer is byte-identical after
	// the parse. Views may point into the input without terminators.
	NonDestructive = NoStringTerminators | NoInlineTranslation

	// NonDestructiveNul also leaves the input untouched, with every view
	// zero-terminated in the pool.
	NonDestructiveNul = ForceStringTerminators

	// TrailingCommas permits a comma just before '}' or ']'.
	TrailingCommas = 1 << 3

	// Comments treats '// ...', '/* ... */' and '# ...' as whitespace.
	Comments = 1 << 4
)

// Parse consumes a byte buffer of unknown encoding: the encoding is
// detected, the document is reset to an empty root object and the tree is
// rebuilt from the input. Depending on flags the parse is destructive —
// decoded strings and terminators may be written back into data.
func (d *Document[W]) Parse(data []byte, flags int) error {
	return d.ParseEncoding(data, EncodingUnknown, flags)
}

// ParseEncoding is Parse with the input encoding supplied by the caller.
func (d *Document[W]) ParseEncoding(data []byte, enc Encoding, flags int) error {
	if flags&NoStringTerminators != 0 && flags&ForceStringTerminators != 0 {
		return d.failParse(&ParseError{reason: ErrFlagConflict})
	}
	if enc < EncodingUnknown || enc > EncodingUTF32Swap {
		return d.failParse(&ParseError{reason: ErrInvalidEncoding})
	}

	d.Clear()

	if len(data) == 0 {
		return d.failParse(&ParseError{reason: ErrUnexpectedStart})
	}
	if enc == EncodingUnknown {
		var err error
		enc, err = DetectEncoding(data)
		if err != nil {
			return d.failParse(&ParseError{reason: ErrInvalidEncoding})
		}
	}
	if len(data)%encodingSizes[enc] != 0 {
		return d.failParse(&ParseError{reason: ErrInvalidEncoding})
	}

	switch enc {
	case EncodingUTF8:
		return runParse[W, uint8](d, bytesToUnits[uint8](data), false, flags)
	case EncodingUTF16:
		return runParse[W, uint16](d, bytesToUnits[uint16](data), false, flags)
	case EncodingUTF16Swap:
		return runParse[W, uint16](d, bytesToUnits[uint16](data), true, flags)
	case EncodingUTF32:
		return runParse[W, uint32](d, bytesToUnits[uint32](data), false, flags)
	default:
		return runParse[W, uint32](d, bytesToUnits[uint32](data), true, flags)
	}
}

func (d *Document[W]) failParse(err *ParseError) error {
	if d.handler != nil {
		d.handler(err.reason.Error(), err.Offset)
	}
	return err
}

// parser is one parse run, monomorphic over the document width W and the
// input width In. The byte-order swap stays a runtime flag.
type parser[W, In CodeUnit] struct {
	doc   *Document[W]
	in    []In
	pos   int
	swap  bool
	flags int

	// out is the input buffer reinterpreted at the document width, the
	// target of in-place rewrites. Nil when W is wider than In.
	out []W

	// term is a pending terminator slot in out for the most recent
	// in-place number, written once the following separator is consumed.
	term int
}

func runParse[W, In CodeUnit](d *Document[W], in []In, swap bool, flags int) error {
	p := parser[W, In]{doc: d, in: in, swap: swap, flags: flags, term: -1}
	if unitSize[W]() <= unitSize[In]() && len(in) > 0 {
		p.out = unsafe.Slice((*W)(unsafe.Pointer(&in[0])), len(in)*unitSize[In]()/unitSize[W]())
	}
	return p.parse()
}

func (p *parser[W, In]) read(i int) In {
	return readUnit(p.in[i], p.swap)
}

// wpos maps an input unit index to the equivalent index in out.
func (p *parser[W, In]) wpos(i int) int {
	return i * unitSize[In]() / unitSize[W]()
}

func (p *parser[W, In]) errorAt(reason error, pos int) error {
	e := parseError(reason, p.in, pos, pos*unitSize[In]())
	if p.doc.handler != nil {
		p.doc.handler(reason.Error(), e.Offset)
	}
	return e
}

func (p *parser[W, In]) parse() error {
	p.skipWhitespaceAndComments()
	if p.pos >= len(p.in) {
		return p.errorAt(ErrUnexpectedStart, p.pos)
	}

	root := p.doc.root
	switch p.read(p.pos) {
	case '{':
		p.pos++
		if err := p.parseObject(root); err != nil {
			return err
		}
	case '[':
		p.pos++
		root.kind = Array
		if err := p.parseArray(root); err != nil {
			return err
		}
	default:
		return p.errorAt(ErrUnexpectedStart, p.pos)
	}

	p.skipWhitespaceAndComments()
	if p.pos < len(p.in) && p.read(p.pos) != 0 {
		return p.errorAt(ErrUnexpectedTrailing, p.pos)
	}
	return nil
}

// skipWhitespaceAndComments loops until neither whitespace nor, with the
// Comments flag, a comment is in front.
func (p *parser[W, In]) skipWhitespaceAndComments() {
	for {
		for p.pos < len(p.in) && isWhitespace(p.read(p.pos)) {
			p.pos++
		}
		if p.flags&Comments == 0 || p.pos >= len(p.in) {
			return
		}
		switch p.read(p.pos) {
		case '#':
			p.pos++
			for p.pos < len(p.in) && p.read(p.pos) != '\n' {
				p.pos++
			}
		case '/':
			if p.pos+1 >= len(p.in) {
				return
			}
			switch p.read(p.pos + 1) {
			case '/':
				p.pos += 2
				for p.pos < len(p.in) && p.read(p.pos) != '\n' {
					p.pos++
				}
			case '*':
				p.pos += 2
				for p.pos < len(p.in) {
					if p.read(p.pos) == '*' && p.pos+1 < len(p.in) && p.read(p.pos+1) == '/' {
						p.pos += 2
						break
					}
					p.pos++
				}
			default:
				return
			}
		default:
			return
		}
	}
}

// closeOffScalar writes the deferred zero terminator of the last in-place
// number once its trailing separator has been consumed.
func (p *parser[W, In]) closeOffScalar() {
	if p.term < 0 {
		return
	}
	if p.flags&(NoStringTerminators|ForceStringTerminators) == 0 && p.term < len(p.out) && p.out[p.term] != 0 {
		p.out[p.term] = 0
	}
	p.term = -1
}

func (p *parser[W, In]) parseValue() (*Value[W], error) {
	if p.pos >= len(p.in) {
		return nil, p.errorAt(ErrUnexpectedToken, p.pos)
	}
	c := p.read(p.pos)
	switch {
	// A leading '.' is not a number, but routing it here trades the vague
	// "expected value" for the sharper "expected digit".
	case c == '-' || c == '.' || (c >= '0' && c <= '9'):
		v := p.doc.newValue(Number)
		if err := p.parseNumber(v); err != nil {
			return nil, err
		}
		return v, nil

	case c == 't':
		return p.literal("true", Bool, trueText[W]())
	case c == 'f':
		return p.literal("false", Bool, falseText[W]())
	case c == 'n':
		return p.literal("null", Null, nullText[W]())

	case c == '{':
		p.pos++
		v := p.doc.newValue(Object)
		return v, p.parseObject(v)
	case c == '[':
		p.pos++
		v := p.doc.newValue(Array)
		return v, p.parseArray(v)

	case c == '"':
		p.pos++
		text, err := p.parseString()
		if err != nil {
			return nil, err
		}
		v := p.doc.newValue(String)
		v.text = text
		return v, nil
	}
	return nil, p.errorAt(ErrUnexpectedToken, p.pos)
}

func (p *parser[W, In]) literal(word string, kind Kind, text []W) (*Value[W], error) {
	if p.pos+len(word) > len(p.in) {
		return nil, p.errorAt(ErrUnexpectedToken, p.pos)
	}
	for i := 0; i < len(word); i++ {
		if p.read(p.pos+i) != In(word[i]) {
			return nil, p.errorAt(ErrUnexpectedToken, p.pos)
		}
	}
	p.pos += len(word)
	v := p.doc.newValue(kind)
	v.text = text
	return v, nil
}

func (p *parser[W, In]) parseObject(v *Value[W]) error {
	p.skipWhitespaceAndComments()
	if p.pos < len(p.in) && p.read(p.pos) == '}' {
		p.pos++
		return nil
	}
	for {
		if p.pos >= len(p.in) || p.read(p.pos) != '"' {
			return p.errorAt(ErrExpectedName, p.pos)
		}
		p.pos++
		name, err := p.parseString()
		if err != nil {
			return err
		}

		p.skipWhitespaceAndComments()
		if p.pos >= len(p.in) || p.read(p.pos) != ':' {
			return p.errorAt(ErrExpectedColon, p.pos)
		}
		p.pos++
		p.skipWhitespaceAndComments()

		child, err := p.parseValue()
		if err != nil {
			return err
		}
		child.name = name
		v.addChild(child)

		p.skipWhitespaceAndComments()
		if p.pos < len(p.in) && p.read(p.pos) == ',' {
			p.pos++
			p.skipWhitespaceAndComments()
			p.closeOffScalar()
			if p.flags&TrailingCommas != 0 && p.pos < len(p.in) && p.read(p.pos) == '}' {
				p.pos++
				return nil
			}
		} else if p.pos < len(p.in) && p.read(p.pos) == '}' {
			p.pos++
			p.closeOffScalar()
			return nil
		} else {
			return p.errorAt(ErrExpectedSeparator, p.pos)
		}
	}
}

func (p *parser[W, In]) parseArray(v *Value[W]) error {
	p.skipWhitespaceAndComments()
	if p.pos < len(p.in) && p.read(p.pos) == ']' {
		p.pos++
		return nil
	}
	for {
		child, err := p.parseValue()
		if err != nil {
			return err
		}
		v.addChild(child)

		p.skipWhitespaceAndComments()
		if p.pos < len(p.in) && p.read(p.pos) == ',' {
			p.pos++
			p.skipWhitespaceAndComments()
			p.closeOffScalar()
			if p.flags&TrailingCommas != 0 && p.pos < len(p.in) && p.read(p.pos) == ']' {
				p.pos++
				return nil
			}
		} else if p.pos < len(p.in) && p.read(p.pos) == ']' {
			p.pos++
			p.closeOffScalar()
			return nil
		} else {
			return p.errorAt(ErrExpectedSeparator, p.pos)
		}
	}
}

// measureNumber validates the number grammar in front of the cursor and
// advances past it: optional minus, a zero or a nonzero-led digit run, an
// optional fraction with at least one digit, an optional exponent with at
// least one digit.
func (p *parser[W, In]) measureNumber() error {
	if p.pos < len(p.in) && p.read(p.pos) == '-' {
		p.pos++
	}
	if p.pos < len(p.in) && p.read(p.pos) == '0' {
		p.pos++
	} else {
		start := p.pos
		for p.pos < len(p.in) && isDigit(p.read(p.pos)) {
			p.pos++
		}
		if p.pos == start {
			return p.errorAt(ErrExpectedDigit, p.pos)
		}
	}
	if p.pos < len(p.in) && p.read(p.pos) == '.' {
		p.pos++
		start := p.pos
		for p.pos < len(p.in) && isDigit(p.read(p.pos)) {
			p.pos++
		}
		if p.pos == start {
			return p.errorAt(ErrExpectedDigit, p.pos)
		}
	}
	if p.pos < len(p.in) {
		if c := p.read(p.pos); c == 'e' || c == 'E' {
			p.pos++
			if p.pos < len(p.in) {
				if c := p.read(p.pos); c == '+' || c == '-' {
					p.pos++
				}
			}
			start := p.pos
			for p.pos < len(p.in) && isDigit(p.read(p.pos)) {
				p.pos++
			}
			if p.pos == start {
				return p.errorAt(ErrExpectedDigit, p.pos)
			}
		}
	}
	return nil
}

func (p *parser[W, In]) parseNumber(v *Value[W]) error {
	wSize, inSize := unitSize[W](), unitSize[In]()

	// Fastest case: widths match, no swap, terminators unwanted — the text
	// view points straight into the input.
	if wSize == inSize && !p.swap &&
		p.flags&(ForceStringTerminators|NoStringTerminators) == NoStringTerminators {
		start := p.wpos(p.pos)
		if err := p.measureNumber(); err != nil {
			return err
		}
		v.text = p.out[start:p.wpos(p.pos)]
		return nil
	}

	requireAlloc := wSize > inSize || p.flags&ForceStringTerminators != 0
	if p.flags&NoInlineTranslation != 0 && (wSize != inSize || p.swap) {
		requireAlloc = true
	}

	start := p.pos
	if err := p.measureNumber(); err != nil {
		return err
	}
	chars := p.pos - start

	var out []W
	if requireAlloc {
		var err error
		out, err = allocUnits[W](&p.doc.pool, chars+1)
		if err != nil {
			return p.errorAt(ErrOutOfMemory, start)
		}
		out[chars] = 0
	} else {
		wstart := p.wpos(start)
		out = p.out[wstart : wstart+chars]
	}

	// Number text is ASCII, so units map one to one across widths.
	for i, u := range p.in[start:p.pos] {
		out[i] = W(readUnit(u, p.swap))
	}
	v.text = out[:chars:chars]

	if !requireAlloc {
		p.term = p.wpos(start) + chars
	}
	return nil
}

// escapedRune reads a \uXXXX escape at index i, consuming a full surrogate
// pair when the first escape is a high surrogate. Returns the code point
// and the index past the escape.
func (p *parser[W, In]) escapedRune(i int) (rune, int, error) {
	c, next, err := p.hexEscape(i, ErrInvalidEscape)
	if err != nil {
		return 0, 0, err
	}
	if c < 0xD800 || c > 0xDFFF {
		return rune(c), next, nil
	}
	if c >= 0xDC00 {
		return 0, 0, p.errorAt(ErrInvalidSurrogate, i)
	}
	if next+6 > len(p.in) || p.read(next) != '\\' || p.read(next+1) != 'u' {
		return 0, 0, p.errorAt(ErrInvalidSurrogate, i)
	}
	low, next, err := p.hexEscape(next, ErrInvalidSurrogate)
	if err != nil {
		return 0, 0, err
	}
	if low < 0xDC00 || low > 0xDFFF {
		return 0, 0, p.errorAt(ErrInvalidSurrogate, i)
	}
	return rune((c-0xD800)<<10|(low-0xDC00)) + 0x10000, next, nil
}

// hexEscape reads one \uXXXX sequence at index i. Structural failures
// (missing backslash-u or truncation) report shortErr; bad hex digits are
// always ErrInvalidHex.
func (p *parser[W, In]) hexEscape(i int, shortErr error) (uint32, int, error) {
	if i+6 > len(p.in) || p.read(i) != '\\' || p.read(i+1) != 'u' {
		return 0, 0, p.errorAt(shortErr, i)
	}
	var c uint32
	for k := 0; k < 4; k++ {
		u := p.read(i + 2 + k)
		var v uint32
		switch {
		case u >= '0' && u <= '9':
			v = uint32(u - '0')
		case u >= 'a' && u <= 'f':
			v = uint32(u-'a') + 10
		case u >= 'A' && u <= 'F':
			v = uint32(u-'A') + 10
		default:
			return 0, 0, p.errorAt(ErrInvalidHex, i+2+k)
		}
		c = c<<4 | v
	}
	return c, i + 6, nil
}

// measureString scans the string body in front of the cursor without
// consuming it. It reports the exact output length in document units, and
// conclusively whether translation is needed: escapes, width change or byte
// swap all force it. The returned index is that of the closing quote.
func (p *parser[W, In]) measureString() (outLen int, translate bool, strEnd int, err error) {
	translate = p.swap || unitSize[W]() != unitSize[In]()
	i := p.pos
	for i < len(p.in) {
		c := p.read(i)
		switch {
		case c == '"':
			return outLen, translate, i, nil

		case c == '\\':
			translate = true
			if i+1 >= len(p.in) {
				return 0, false, 0, p.errorAt(ErrInvalidEscape, i+1)
			}
			switch p.read(i + 1) {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				i += 2
				outLen++
			case 'u':
				r, next, rerr := p.escapedRune(i)
				if rerr != nil {
					return 0, false, 0, rerr
				}
				i = next
				outLen += runeLen[W](r)
			default:
				return 0, false, 0, p.errorAt(ErrInvalidEscape, i+1)
			}

		case c == 0:
			return 0, false, 0, p.errorAt(ErrUnterminatedString, i)

		default:
			nin, nout, merr := measureUnit[In, W](p.in[i:], p.swap)
			if merr != nil {
				return 0, false, 0, p.errorAt(ErrInvalidEncoding, i)
			}
			i += nin
			outLen += nout
		}
	}
	return 0, false, 0, p.errorAt(ErrUnterminatedString, i)
}

// parseString consumes a string body (the opening quote is already eaten)
// and returns the decoded text view. Where the text lands follows the
// storage decision: inline view into the input, destructive in-place
// rewrite, or a pool copy — see the flag table in the package docs.
func (p *parser[W, In]) parseString() ([]W, error) {
	wSize, inSize := unitSize[W](), unitSize[In]()
	requireAlloc := wSize > inSize || p.flags&ForceStringTerminators != 0
	translate := true
	outLen := -1

	if requireAlloc || p.swap ||
		p.flags&(ForceStringTerminators|NoStringTerminators|NoInlineTranslation) != 0 {
		var strEnd int
		var err error
		outLen, translate, strEnd, err = p.measureString()
		if err != nil {
			return nil, err
		}
		if p.flags&NoStringTerminators != 0 && !translate {
			// No translation needed and no terminators wanted: the view
			// points straight into the untouched input.
			text := p.out[p.wpos(p.pos):p.wpos(strEnd)]
			p.pos = strEnd + 1
			return text, nil
		}
	}

	if p.flags&NoInlineTranslation != 0 && translate {
		requireAlloc = true
	}

	var out []W
	if requireAlloc {
		var err error
		out, err = allocUnits[W](&p.doc.pool, outLen+1)
		if err != nil {
			return nil, p.errorAt(ErrOutOfMemory, p.pos)
		}
	} else {
		out = p.out[p.wpos(p.pos):]
	}

	n := 0
	for p.pos < len(p.in) {
		c := p.read(p.pos)
		switch {
		case c == '"':
			// The slot after the text is within the rewritten span (or the
			// pool copy), so terminating here never clobbers input ahead.
			// In-place rewrites honor the terminator flags the same way
			// closeOffScalar does for numbers.
			if requireAlloc || p.flags&(NoStringTerminators|ForceStringTerminators) == 0 {
				out[n] = 0
			}
			p.pos++
			return out[:n:n], nil

		case c == '\\':
			if p.pos+1 >= len(p.in) {
				return nil, p.errorAt(ErrInvalidEscape, p.pos+1)
			}
			switch p.read(p.pos + 1) {
			case '"':
				out[n] = '"'
				n++
				p.pos += 2
			case '\\':
				out[n] = '\\'
				n++
				p.pos += 2
			case '/':
				out[n] = '/'
				n++
				p.pos += 2
			case 'b':
				out[n] = 0x08
				n++
				p.pos += 2
			case 'f':
				out[n] = 0x0C
				n++
				p.pos += 2
			case 'n':
				out[n] = 0x0A
				n++
				p.pos += 2
			case 'r':
				out[n] = 0x0D
				n++
				p.pos += 2
			case 't':
				out[n] = 0x09
				n++
				p.pos += 2
			case 'u':
				r, next, err := p.escapedRune(p.pos)
				if err != nil {
					return nil, err
				}
				p.pos = next
				n += encodeRune(out[n:], r)
			default:
				return nil, p.errorAt(ErrInvalidEscape, p.pos+1)
			}

		case c == 0:
			return nil, p.errorAt(ErrUnterminatedString, p.pos)

		default:
			nin, nout, err := convertUnit[In, W](p.in[p.pos:], out[n:], p.swap)
			if err != nil {
				return nil, p.errorAt(ErrInvalidEncoding, p.pos)
			}
			p.pos += nin
			n += nout
		}
	}
	return nil, p.errorAt(ErrUnterminatedString, p.pos)
}
