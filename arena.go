package arenaJSON

import "unsafe"

const (
	// DefaultStaticPoolSize is the size of the pool area embedded in every
	// document. No heap blocks are taken until it is exhausted. May be set
	// to zero to push all allocations to the heap.
	DefaultStaticPoolSize = 32 * 1024

	// DefaultDynamicPoolSize is the size of each heap block requested once
	// the static area runs out. Requests larger than this get a block of
	// their own.
	DefaultDynamicPoolSize = 32 * 1024
)

// PoolConfig tunes the two-tier arena of a document. Zero values select the
// defaults; Alignment must be a power of two.
type PoolConfig struct {
	StaticSize  int
	DynamicSize int
	Alignment   int

	// MaxBytes bounds the total bytes the pool will hand out. Zero means
	// unbounded. Allocations past the budget fail with ErrOutOfMemory.
	MaxBytes int
}

// poolBlock is one dynamic block, linked to the block allocated before it.
type poolBlock struct {
	prev *poolBlock
	buf  []byte
}

// pool is a bump allocator: a static area reused across Clear cycles plus a
// chain of dynamic blocks released together. There is no per-allocation
// free.
type pool struct {
	cfg    PoolConfig
	static []byte
	head   *poolBlock

	cur  []byte // block currently served from
	next int    // bump cursor within cur
	used int    // total bytes handed out, for the MaxBytes budget

	dynamicBlocks int
}

func (p *pool) init(cfg PoolConfig) {
	if cfg.StaticSize == 0 {
		cfg.StaticSize = DefaultStaticPoolSize
	}
	if cfg.StaticSize < 0 {
		cfg.StaticSize = 0
	}
	if cfg.DynamicSize == 0 {
		cfg.DynamicSize = DefaultDynamicPoolSize
	}
	if cfg.DynamicSize < 0 {
		cfg.DynamicSize = 0
	}
	if cfg.Alignment == 0 {
		cfg.Alignment = int(unsafe.Sizeof(uintptr(0)))
	}
	if cfg.Alignment < 1 || cfg.Alignment&(cfg.Alignment-1) != 0 {
		panic("arenaJSON: pool alignment must be a power of two")
	}
	p.cfg = cfg
	if cfg.StaticSize > 0 {
		p.static = make([]byte, cfg.StaticSize)
	}
	p.reset()
}

func (p *pool) reset() {
	p.head = nil
	p.cur = p.static
	p.next = 0
	p.used = 0
	p.dynamicBlocks = 0
}

func alignForward(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// alloc returns size uninitialized bytes aligned on the configured
// alignment, or ErrOutOfMemory when the byte budget is exceeded.
func (p *pool) alloc(size int) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	if p.cfg.MaxBytes > 0 && p.used+size > p.cfg.MaxBytes {
		return nil, ErrOutOfMemory
	}
	if size > len(p.cur)-p.next {
		p.grow(size)
	}
	b := p.cur[p.next : p.next+size : p.next+size]
	p.next = alignForward(p.next+size, p.cfg.Alignment)
	if p.next > len(p.cur) {
		p.next = len(p.cur)
	}
	p.used += size
	return b, nil
}

// grow links in a fresh dynamic block big enough for size.
func (p *pool) grow(size int) {
	blockSize := p.cfg.DynamicSize
	if blockSize < size {
		blockSize = size
	}
	blockSize += p.cfg.Alignment
	block := &poolBlock{prev: p.head, buf: make([]byte, blockSize)}
	p.head = block
	p.cur = block.buf
	p.next = 0
	p.dynamicBlocks++
}

// clear drops every dynamic block and rewinds the static area. Views handed
// out earlier become dangling and must not be used afterwards.
func (p *pool) clear() {
	for b := p.head; b != nil; b = b.prev {
		b.buf = nil
	}
	p.reset()
}

// allocUnits carves n code units of width W from the pool.
func allocUnits[W CodeUnit](p *pool, n int) ([]W, error) {
	if n == 0 {
		return nil, nil
	}
	raw, err := p.alloc(n * unitSize[W]())
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*W)(unsafe.Pointer(&raw[0])), n), nil
}
