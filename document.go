package arenaJSON

import (
	"math"
	"strconv"
)

const startNodeBlockSize = 128

// ErrorHandler is called with the failure message and the byte offset into
// the parsed buffer before Parse returns its error. Pool exhaustion in the
// Allocate* factories also reaches it, with offset 0. It may panic to unwind
// instead of returning; the parser does not resume either way.
type ErrorHandler func(message string, offset int)

// Option configures a Document at construction.
type Option func(*config)

type config struct {
	pool    PoolConfig
	handler ErrorHandler
}

// WithPoolConfig overrides the pool sizes, alignment and byte budget.
func WithPoolConfig(cfg PoolConfig) Option {
	return func(c *config) { c.pool = cfg }
}

// WithErrorHandler installs a caller error handler for parse failures and
// factory allocation failures.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) { c.handler = h }
}

/*
Document owns a tree of values and the memory pool they are carved from.
The root is always an object or an array and starts out as an empty object.

A Document is parsed, mutated, printed and discarded (or Cleared and
reused) as a unit; there is no per-value free. It is not safe for
concurrent mutation.
*/
type Document[W CodeUnit] struct {
	pool    pool
	handler ErrorHandler

	// Node slab: values live in chunks so their pointers stay visible to
	// the garbage collector, unlike the byte pool that backs strings.
	nodeBlocks [][]Value[W]
	nodeCount  int // used entries in the last block

	root *Value[W]
}

// New constructs an empty document whose root is an empty object.
func New[W CodeUnit](opts ...Option) *Document[W] {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	d := &Document[W]{handler: c.handler}
	d.pool.init(c.pool)
	d.nodeBlocks = [][]Value[W]{make([]Value[W], startNodeBlockSize)}
	d.root = d.newValue(Object)
	return d
}

// Root returns the root container.
func (d *Document[W]) Root() *Value[W] { return d.root }

// Clear releases the dynamic pool blocks, rewinds the node slab and resets
// the root to an empty object. Values from earlier parses are invalidated.
func (d *Document[W]) Clear() {
	d.pool.clear()
	d.nodeBlocks = d.nodeBlocks[:1]
	d.nodeCount = 0
	d.root = d.newValue(Object)
}

// DynamicBlocks reports how many heap blocks the string pool currently
// holds beyond the static area.
func (d *Document[W]) DynamicBlocks() int { return d.pool.dynamicBlocks }

func (d *Document[W]) newValue(kind Kind) *Value[W] {
	block := d.nodeBlocks[len(d.nodeBlocks)-1]
	if d.nodeCount == len(block) {
		block = make([]Value[W], len(block)*2)
		d.nodeBlocks = append(d.nodeBlocks, block)
		d.nodeCount = 0
	}
	v := &block[d.nodeCount]
	d.nodeCount++
	*v = Value[W]{kind: kind}
	if kind == Null {
		v.text = nullText[W]()
	}
	return v
}

func (d *Document[W]) fail(err error) {
	if d.handler != nil {
		d.handler(err.Error(), 0)
	}
}

// AllocateString copies src into the pool, appending a zero terminator one
// past the returned view. Use it to give borrowed names and string values a
// lifetime tied to the document.
func (d *Document[W]) AllocateString(src []W) []W {
	buf, err := allocUnits[W](&d.pool, len(src)+1)
	if err != nil {
		d.fail(err)
		return nil
	}
	copy(buf, src)
	buf[len(src)] = 0
	return buf[:len(src):len(src)]
}

// AllocateNullValue returns a fresh null value for use with the mutators.
func (d *Document[W]) AllocateNullValue() *Value[W] {
	return d.newValue(Null)
}

// AllocateBoolValue returns a bool value whose text is the shared
// true/false literal.
func (d *Document[W]) AllocateBoolValue(val bool) *Value[W] {
	v := d.newValue(Bool)
	if val {
		v.text = trueText[W]()
	} else {
		v.text = falseText[W]()
	}
	return v
}

// AllocateStringValue returns a string value borrowing val. The caller
// keeps val alive as long as the document, or copies it through
// AllocateString first.
func (d *Document[W]) AllocateStringValue(val []W) *Value[W] {
	v := d.newValue(String)
	v.text = val
	return v
}

// AllocateNumberValue renders val into canonical number text in the pool.
// Non-finite values cannot be represented as JSON numbers; the returned
// value silently becomes a string reading "Inf", "-Inf" or "NaN" so the
// print path always emits legal JSON.
func (d *Document[W]) AllocateNumberValue(val float64) *Value[W] {
	var scratch [32]byte
	text, isNumber := appendNumber(scratch[:0], val)
	kind := Number
	if !isNumber {
		kind = String
	}
	v := d.newValue(kind)
	buf, err := allocUnits[W](&d.pool, len(text)+1)
	if err != nil {
		d.fail(err)
		return nil
	}
	for i, c := range text {
		buf[i] = W(c)
	}
	buf[len(text)] = 0
	v.text = buf[:len(text):len(text)]
	return v
}

// AllocateArray returns a fresh empty array.
func (d *Document[W]) AllocateArray() *Value[W] {
	return d.newValue(Array)
}

// AllocateObject returns a fresh empty object.
func (d *Document[W]) AllocateObject() *Value[W] {
	return d.newValue(Object)
}

// Units converts a Go string to this document's code unit width. The result
// is freshly heap-allocated, not pooled; see AllocateString for pooling.
func (d *Document[W]) Units(s string) []W {
	return Units[W](s)
}

// appendNumber renders a double as canonical JSON number text. The second
// result is false for non-finite values, which render as Inf/-Inf/NaN and
// must be treated as strings.
//
// Values below 1e-12 in magnitude collapse to "0". Magnitudes outside
// [1e-9, 1e12] use exponential notation with up to 12 significant digits;
// everything else is fixed notation with up to 12 fractional digits,
// trailing zeros stripped.
func appendNumber(dst []byte, val float64) ([]byte, bool) {
	if math.IsNaN(val) {
		return append(dst, "NaN"...), false
	}
	if math.IsInf(val, 1) {
		return append(dst, "Inf"...), false
	}
	if math.IsInf(val, -1) {
		return append(dst, "-Inf"...), false
	}

	abs := math.Abs(val)
	if abs < 1e-12 {
		return append(dst, '0'), true
	}
	if abs < 1e-9 || abs > 1e12 {
		return strconv.AppendFloat(dst, val, 'g', 12, 64), true
	}

	start := len(dst)
	dst = strconv.AppendFloat(dst, val, 'f', 12, 64)
	for len(dst) > start && dst[len(dst)-1] == '0' {
		dst = dst[:len(dst)-1]
	}
	if len(dst) > start && dst[len(dst)-1] == '.' {
		dst = dst[:len(dst)-1]
	}
	return dst, true
}

// Dig walks the tree by member names and, for arrays, decimal indexes. A
// miss at any step returns the shared null sentinel, so chained reads stay
// safe.
func (v *Value[W]) Dig(path ...string) *Value[W] {
	node := v
	for _, field := range path {
		switch node.kind {
		case Object:
			node = node.At(Units[W](field))
		case Array:
			index, err := strconv.Atoi(field)
			if err != nil || index < 0 || index >= node.childCount {
				return sentinelValue[W]()
			}
			node = node.AtIndex(index)
		default:
			return sentinelValue[W]()
		}
		if node == sentinelValue[W]() {
			return node
		}
	}
	return node
}

// AsInt reads the scalar as a rounded integer.
func (v *Value[W]) AsInt() int {
	return int(math.Round(v.AsNumber()))
}

// AsFloat is an alias of AsNumber matching the accessor family.
func (v *Value[W]) AsFloat() float64 { return v.AsNumber() }

// AsGoString renders the scalar text as a Go string.
func (v *Value[W]) AsGoString() string { return UnitsToString(v.text) }
