package porting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArenaAssignIsMonotonicPerKind(t *testing.T) {
	arena := NewArena()

	assert.Equal(t, int64(0), arena.Assign(KindCollection))
	assert.Equal(t, int64(1), arena.Assign(KindCollection))
	assert.Equal(t, int64(2), arena.Assign(KindCollection))

	// Each kind counts independently.
	assert.Equal(t, int64(0), arena.Assign(KindLocation))
	assert.Equal(t, int64(1), arena.Assign(KindLocation))
	assert.Equal(t, int64(0), arena.Assign(KindVisit))
}

func TestArenaRegisterAndResolve(t *testing.T) {
	arena := NewArena()
	arena.Register(KindCollection, 0, "row-a")
	arena.Register(KindCollection, 1, "row-b")
	arena.Register(KindLocation, 0, "row-c")

	id, ok := arena.Resolve(KindCollection, 1)
	assert.True(t, ok)
	assert.Equal(t, "row-b", id)

	id, ok = arena.Resolve(KindLocation, 0)
	assert.True(t, ok)
	assert.Equal(t, "row-c", id)

	// Unknown references resolve to nothing, not a panic.
	_, ok = arena.Resolve(KindLocation, 7)
	assert.False(t, ok)
	_, ok = arena.Resolve(KindNote, 0)
	assert.False(t, ok)
}
