package arenaJSON

import "math"

// Kind tags a Value. Containers are Array and Object; everything else is a
// scalar whose Text holds the rendered form.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "unknown"
}

/*
Value is a node of the document tree. Scalars carry their rendered text as a
view into either the caller's buffer (destructive parse) or the document's
memory pool; the literals null/true/false share per-width constants.
Containers link their children in a doubly-linked list and keep a running
count.

A Value belongs to at most one container. Detached values (owner nil) stay
alive in their document's pool and may be reattached through the mutators.
*/
type Value[W CodeUnit] struct {
	kind Kind
	name []W
	text []W

	owner *Value[W]
	prev  *Value[W]
	next  *Value[W]

	firstChild *Value[W]
	lastChild  *Value[W]
	childCount int
}

// Shared immutable sentinels returned by missing lookups, one per width.
// They read as null values and are rejected by every mutator.
var (
	sentinel8  = &Value[uint8]{text: nullText8}
	sentinel16 = &Value[uint16]{text: nullText16}
	sentinel32 = &Value[uint32]{text: nullText32}
)

var (
	nullText8  = []uint8{'n', 'u', 'l', 'l'}
	trueText8  = []uint8{'t', 'r', 'u', 'e'}
	falseText8 = []uint8{'f', 'a', 'l', 's', 'e'}

	nullText16  = []uint16{'n', 'u', 'l', 'l'}
	trueText16  = []uint16{'t', 'r', 'u', 'e'}
	falseText16 = []uint16{'f', 'a', 'l', 's', 'e'}

	nullText32  = []uint32{'n', 'u', 'l', 'l'}
	trueText32  = []uint32{'t', 'r', 'u', 'e'}
	falseText32 = []uint32{'f', 'a', 'l', 's', 'e'}
)

func sentinelValue[W CodeUnit]() *Value[W] {
	switch unitSize[W]() {
	case 1:
		return any(sentinel8).(*Value[W])
	case 2:
		return any(sentinel16).(*Value[W])
	default:
		return any(sentinel32).(*Value[W])
	}
}

func nullText[W CodeUnit]() []W {
	switch unitSize[W]() {
	case 1:
		return any(nullText8).([]W)
	case 2:
		return any(nullText16).([]W)
	default:
		return any(nullText32).([]W)
	}
}

func trueText[W CodeUnit]() []W {
	switch unitSize[W]() {
	case 1:
		return any(trueText8).([]W)
	case 2:
		return any(trueText16).([]W)
	default:
		return any(trueText32).([]W)
	}
}

func falseText[W CodeUnit]() []W {
	switch unitSize[W]() {
	case 1:
		return any(falseText8).([]W)
	case 2:
		return any(falseText16).([]W)
	default:
		return any(falseText32).([]W)
	}
}

// compareUnits orders two counted strings by code-unit-wise less-than. No
// Unicode normalization takes place.
func compareUnits[W CodeUnit](a, b []W) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] < b[i] {
			return -1
		}
		if b[i] < a[i] {
			return 1
		}
	}
	switch {
	case len(a) == len(b):
		return 0
	case len(a) < len(b):
		return -1
	default:
		return 1
	}
}

func (v *Value[W]) Kind() Kind { return v.kind }

func (v *Value[W]) IsNull() bool   { return v.kind == Null }
func (v *Value[W]) IsBool() bool   { return v.kind == Bool }
func (v *Value[W]) IsNumber() bool { return v.kind == Number }
func (v *Value[W]) IsString() bool { return v.kind == String }
func (v *Value[W]) IsArray() bool  { return v.kind == Array }
func (v *Value[W]) IsObject() bool { return v.kind == Object }

// Name returns the member name view. Empty for array elements and the root.
func (v *Value[W]) Name() []W { return v.name }

// AsString returns the rendered text view of a scalar: the decoded string
// content, the number text, or the null/true/false literal. Parsed numbers
// keep their source text (so "-0.5e2" stays "-0.5e2"); AllocateNumberValue
// stores the canonical form. Containers return an empty view.
func (v *Value[W]) AsString() []W { return v.text }

// AsNumber evaluates the scalar text as a double. The text "true" reads as
// 1; other non-numeric text reads as far as it can and returns what it got.
func (v *Value[W]) AsNumber() float64 { return unitsToNumber(v.text) }

// AsBoolean is true for the literal true and for any text with a non-zero
// numeric reading.
func (v *Value[W]) AsBoolean() bool { return unitsToBoolean(v.text) }

// Owner returns the container this value belongs to, or nil for the root
// and detached values.
func (v *Value[W]) Owner() *Value[W] { return v.owner }

// NextSibling and PrevSibling walk the child list of the owning container.
func (v *Value[W]) NextSibling() *Value[W] { return v.next }
func (v *Value[W]) PrevSibling() *Value[W] { return v.prev }

// FirstChild returns the first child of a container, or nil.
func (v *Value[W]) FirstChild() *Value[W] { return v.firstChild }

// ChildCount returns the number of children of a container.
func (v *Value[W]) ChildCount() int { return v.childCount }

func (v *Value[W]) IsEmpty() bool { return v.childCount == 0 }

// At finds the first child of an object whose name matches, case-sensitive,
// in code units. Missing names and non-objects return the shared null
// sentinel.
func (v *Value[W]) At(name []W) *Value[W] {
	if v.kind == Object {
		for p := v.firstChild; p != nil; p = p.next {
			if compareUnits(name, p.name) == 0 {
				return p
			}
		}
	}
	return sentinelValue[W]()
}

// AtIndex addresses a child by signed index: non-negative from the front,
// negative from the back with -1 the last child. Out of range returns the
// shared null sentinel.
func (v *Value[W]) AtIndex(index int) *Value[W] {
	var p *Value[W]
	if index < 0 {
		p = v.lastChild
		for index++; index < 0 && p != nil; index++ {
			p = p.prev
		}
	} else {
		p = v.firstChild
		for ; index > 0 && p != nil; index-- {
			p = p.next
		}
	}
	if p == nil {
		return sentinelValue[W]()
	}
	return p
}

// addChild appends to the tail of the child list. The parser and the
// mutators share this primitive so the sibling invariants hold either way.
func (v *Value[W]) addChild(child *Value[W]) {
	child.owner = v
	child.prev = nil
	child.next = nil
	if v.firstChild == nil {
		v.firstChild = child
		v.lastChild = child
	} else {
		child.prev = v.lastChild
		v.lastChild.next = child
		v.lastChild = child
	}
	v.childCount++
}

// detach unlinks child from v without touching the pool.
func (v *Value[W]) detach(child *Value[W]) {
	if child.prev != nil {
		child.prev.next = child.next
	} else {
		v.firstChild = child.next
	}
	if child.next != nil {
		child.next.prev = child.prev
	} else {
		v.lastChild = child.prev
	}
	child.owner = nil
	child.prev = nil
	child.next = nil
	v.childCount--
}

// usable reports whether val may be attached: non-nil, not the shared
// sentinel, and not already owned.
func (v *Value[W]) usable(val *Value[W]) bool {
	return val != nil && val != sentinelValue[W]() && val.owner == nil
}

// ArrayAdd appends val to an array. Fails if v is not an array or val is
// nil, the sentinel, or already owned.
func (v *Value[W]) ArrayAdd(val *Value[W]) bool {
	if v.kind != Array || !v.usable(val) {
		return false
	}
	v.addChild(val)
	return true
}

// ArrayInsert places val at a clamped position. Negative indexes count from
// the end (-1 inserts before the current last, math.MinInt before the
// first); non-negative indexes insert after that many existing children
// (math.MaxInt appends).
func (v *Value[W]) ArrayInsert(val *Value[W], index int) bool {
	if v.kind != Array || !v.usable(val) {
		return false
	}
	pos := clampInsertPos(index, v.childCount)
	if pos == v.childCount {
		v.addChild(val)
		return true
	}
	at := v.firstChild
	for i := 0; i < pos; i++ {
		at = at.next
	}
	val.owner = v
	val.next = at
	val.prev = at.prev
	if at.prev != nil {
		at.prev.next = val
	} else {
		v.firstChild = val
	}
	at.prev = val
	v.childCount++
	return true
}

func clampInsertPos(index, count int) int {
	if index >= 0 {
		if index > count {
			return count
		}
		return index
	}
	// Negative: count from the end, saturating at the front.
	if index < -count {
		return 0
	}
	return count + index
}

// ArrayRemove detaches the child at a clamped signed index and returns it.
// The value's storage stays in the pool; it may be reattached. An empty or
// non-array container returns nil.
func (v *Value[W]) ArrayRemove(index int) *Value[W] {
	if v.kind != Array || v.childCount == 0 {
		return nil
	}
	var p *Value[W]
	if index < 0 {
		p = v.lastChild
		for index++; index < 0 && p.prev != nil; index++ {
			p = p.prev
		}
	} else {
		p = v.firstChild
		for ; index > 0 && p.next != nil; index-- {
			p = p.next
		}
	}
	v.detach(p)
	return p
}

// ArraySet replaces the child at exactly index with val. index ==
// ChildCount appends instead; anything else out of range fails. The
// replaced child is detached but stays in the pool.
func (v *Value[W]) ArraySet(index int, val *Value[W]) bool {
	if v.kind != Array || !v.usable(val) {
		return false
	}
	if index == v.childCount {
		v.addChild(val)
		return true
	}
	if index < 0 || index > v.childCount {
		return false
	}
	old := v.firstChild
	for i := 0; i < index; i++ {
		old = old.next
	}
	val.owner = v
	val.prev = old.prev
	val.next = old.next
	if old.prev != nil {
		old.prev.next = val
	} else {
		v.firstChild = val
	}
	if old.next != nil {
		old.next.prev = val
	} else {
		v.lastChild = val
	}
	old.owner = nil
	old.prev = nil
	old.next = nil
	return true
}

// ObjectSet binds val to name on an object. The name is borrowed, cut at
// the first zero unit. An existing child with the same name is replaced in
// its slot and returned; otherwise val is appended and the first result is
// nil. Empty names, nil/owned values and non-objects fail.
func (v *Value[W]) ObjectSet(name []W, val *Value[W]) (*Value[W], bool) {
	if v.kind != Object || !v.usable(val) {
		return nil, false
	}
	name = cutAtZero(name)
	if len(name) == 0 {
		return nil, false
	}
	val.name = name
	for p := v.firstChild; p != nil; p = p.next {
		if compareUnits(name, p.name) == 0 {
			val.owner = v
			val.prev = p.prev
			val.next = p.next
			if p.prev != nil {
				p.prev.next = val
			} else {
				v.firstChild = val
			}
			if p.next != nil {
				p.next.prev = val
			} else {
				v.lastChild = val
			}
			p.owner = nil
			p.prev = nil
			p.next = nil
			return p, true
		}
	}
	v.addChild(val)
	return nil, true
}

// ObjectRemove detaches and returns the first child matching name, or nil.
func (v *Value[W]) ObjectRemove(name []W) *Value[W] {
	if v.kind != Object {
		return nil
	}
	name = cutAtZero(name)
	if len(name) == 0 {
		return nil
	}
	for p := v.firstChild; p != nil; p = p.next {
		if compareUnits(name, p.name) == 0 {
			v.detach(p)
			return p
		}
	}
	return nil
}

// RemoveAll detaches every child, leaving an empty container.
func (v *Value[W]) RemoveAll() {
	p := v.firstChild
	for p != nil {
		next := p.next
		p.owner = nil
		p.prev = nil
		p.next = nil
		p = next
	}
	v.firstChild = nil
	v.lastChild = nil
	v.childCount = 0
}

func cutAtZero[W CodeUnit](name []W) []W {
	for i, u := range name {
		if u == 0 {
			return name[:i]
		}
	}
	return name
}

// unitsToNumber evaluates scalar text as a double, consuming as much of the
// text as parses. "true" evaluates to 1.
func unitsToNumber[W CodeUnit](s []W) float64 {
	if len(s) == 0 {
		return 0
	}
	if len(s) == 4 && s[0] == 't' && s[1] == 'r' && s[2] == 'u' && s[3] == 'e' {
		return 1
	}

	i := 0
	num, fact := 0.0, 1.0
	if s[0] == '-' {
		fact = -1
		i++
	}

	period := false
	for i < len(s) {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			num *= 10
			num += digitValues[c-'0']
			if period {
				fact /= 10
			}
			i++

		case c == '.':
			if period {
				return num * fact
			}
			period = true
			i++

		case c == 'e' || c == 'E':
			num *= fact
			i++
			if i >= len(s) {
				return num
			}
			neg := false
			if s[i] == '+' || s[i] == '-' {
				neg = s[i] == '-'
				i++
			}
			exp := 0.0
			for i < len(s) && s[i] >= '0' && s[i] <= '9' {
				exp *= 10
				exp += digitValues[s[i]-'0']
				i++
			}
			if neg {
				exp = -exp
			}
			return num * pow10(exp)

		default:
			return num * fact
		}
	}
	return num * fact
}

// unitsToBoolean follows the loose truthiness of scalar text: "true" is
// true, "false" is false, anything else is true when it reads non-zero.
func unitsToBoolean[W CodeUnit](s []W) bool {
	if len(s) == 0 {
		return false
	}
	if len(s) >= 4 && s[0] == 't' && s[1] == 'r' && s[2] == 'u' && s[3] == 'e' {
		return true
	}
	if len(s) >= 5 && s[0] == 'f' && s[1] == 'a' && s[2] == 'l' && s[3] == 's' && s[4] == 'e' {
		return false
	}
	return unitsToNumber(s) != 0
}

func pow10(exp float64) float64 {
	return math.Pow(10, exp)
}
