package arenaJSON

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolManySmallAllocations(t *testing.T) {
	configs := []PoolConfig{
		{},
		{StaticSize: -1},
		{DynamicSize: -1},
		{StaticSize: -1, DynamicSize: -1},
		{StaticSize: 64, DynamicSize: 64},
		{Alignment: 1},
		{Alignment: 4},
	}

	for _, cfg := range configs {
		var p pool
		p.init(cfg)
		align := p.cfg.Alignment
		for i := 0; i < 10000; i++ {
			b, err := p.alloc(1 + i%13)
			require.NoError(t, err)
			require.NotEmpty(t, b)
			if align > 1 && align <= 8 {
				assert.Zero(t, uintptr(unsafe.Pointer(&b[0]))%uintptr(align),
					"allocation %d misaligned with config %+v", i, cfg)
			}
		}
		p.clear()
		assert.Zero(t, p.dynamicBlocks, "clear must drop every dynamic block")
	}
}

func TestPoolStaticAreaReuse(t *testing.T) {
	var p pool
	p.init(PoolConfig{StaticSize: 1024, DynamicSize: 1024})

	_, err := p.alloc(512)
	require.NoError(t, err)
	assert.Zero(t, p.dynamicBlocks, "static area should serve first")

	_, err = p.alloc(4096)
	require.NoError(t, err)
	assert.Equal(t, 1, p.dynamicBlocks, "oversized requests get their own block")

	p.clear()
	assert.Zero(t, p.dynamicBlocks)

	_, err = p.alloc(512)
	require.NoError(t, err)
	assert.Zero(t, p.dynamicBlocks, "static area must be reusable after clear")
}

func TestPoolBudget(t *testing.T) {
	var p pool
	p.init(PoolConfig{MaxBytes: 64})

	_, err := p.alloc(48)
	require.NoError(t, err)
	_, err = p.alloc(48)
	assert.True(t, errors.Is(err, ErrOutOfMemory))

	// A parse that must copy everything trips the same budget.
	doc := New[uint8](WithPoolConfig(PoolConfig{MaxBytes: 8}))
	err = doc.Parse([]byte(`{"key":"a rather long string value"}`), ForceStringTerminators)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
}

func TestPoolBadAlignment(t *testing.T) {
	assert.Panics(t, func() {
		var p pool
		p.init(PoolConfig{Alignment: 3})
	})
}

func TestDocumentClearReleases(t *testing.T) {
	doc := New[uint8](WithPoolConfig(PoolConfig{StaticSize: 64, DynamicSize: 64}))

	// Force pool copies so dynamic blocks pile up.
	big := `{"a":"xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx","b":"yyyyyyyyyyyyyyyyyyyyyyyyyyyyyyyy"}`
	require.NoError(t, doc.Parse([]byte(big), ForceStringTerminators))
	require.Greater(t, doc.DynamicBlocks(), 0)

	doc.Clear()
	assert.Zero(t, doc.DynamicBlocks())
	assert.True(t, doc.Root().IsObject())
	assert.True(t, doc.Root().IsEmpty())

	// Reusable afterwards.
	require.NoError(t, doc.Parse([]byte(`{"z":1}`), ParseDefault))
	assert.Equal(t, `{"z":1}`, compact(doc))
}

func TestAllocUnitsWidths(t *testing.T) {
	var p pool
	p.init(PoolConfig{})

	u16, err := allocUnits[uint16](&p, 5)
	require.NoError(t, err)
	require.Len(t, u16, 5)
	u16[4] = 0xBEEF

	u32, err := allocUnits[uint32](&p, 3)
	require.NoError(t, err)
	require.Len(t, u32, 3)
	u32[0] = 0x10FFFF

	assert.Equal(t, uint16(0xBEEF), u16[4], "allocations must not overlap")
}
