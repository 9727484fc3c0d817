package ordered

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_FirstWriteWins(t *testing.T) {
	m := New[string, int]()

	assert.True(t, m.SetIfAbsent("b", 1))
	assert.True(t, m.SetIfAbsent("a", 2))
	assert.False(t, m.SetIfAbsent("b", 3))

	v, ok := m.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"b", "a"}, m.Keys())
	assert.Equal(t, []int{1, 2}, m.Values())
	assert.Equal(t, 2, m.Len())
	assert.True(t, m.Has("a"))
	assert.False(t, m.Has("c"))
}

func TestMap_Each(t *testing.T) {
	m := New[int64, string]()
	m.SetIfAbsent(3, "c")
	m.SetIfAbsent(1, "a")
	m.SetIfAbsent(2, "b")

	var seen []int64
	m.Each(func(k int64, _ string) bool {
		seen = append(seen, k)
		return k != 1
	})
	assert.Equal(t, []int64{3, 1}, seen)
}

func TestMap_NilSafeReads(t *testing.T) {
	var m *Map[string, int]
	assert.Equal(t, 0, m.Len())
	v, ok := m.Get("a")
	assert.False(t, ok)
	assert.Zero(t, v)
	assert.False(t, m.Has("a"))
	assert.Empty(t, m.Keys())
	m.Each(func(string, int) bool {
		t.Fatal("unexpected entry")
		return true
	})
}

func TestMap_KeysIsACopy(t *testing.T) {
	m := New[string, int]()
	m.SetIfAbsent("a", 1)

	keys := m.Keys()
	keys[0] = "z"

	assert.Equal(t, []string{"a"}, m.Keys())
}
