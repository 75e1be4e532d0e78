package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightedPick(t *testing.T) {
	// бросок 0.5 * 10 = 5: первый кандидат, чья сумма превысила 5, — индекс 2
	assert.Equal(t, 2, weightedPick(constSource(0.5), []float64{2, 0, 4, 4}))

	// нулевые и отрицательные веса не участвуют
	assert.Equal(t, 3, weightedPick(constSource(0), []float64{0, -1, 0, 3}))

	// все нули — равномерный выбор через IntN
	src := &seqSource{ints: []int{2}}
	assert.Equal(t, 2, weightedPick(src, []float64{0, 0, 0}))

	assert.Equal(t, -1, weightedPick(constSource(0.3), nil))
}

func TestWeightedPick_Distribution(t *testing.T) {
	src := NewSource(7)
	counts := make([]int, 3)
	for range 10000 {
		counts[weightedPick(src, []float64{70, 20, 10})]++
	}
	assert.InDelta(t, 7000, counts[0], 300)
	assert.InDelta(t, 2000, counts[1], 250)
	assert.InDelta(t, 1000, counts[2], 200)
}

func TestDayJitter(t *testing.T) {
	for counter := uint64(0); counter < 500; counter++ {
		j := dayJitter("2026-10-19", 16, counter)
		assert.GreaterOrEqual(t, j, 0.8)
		assert.Less(t, j, 1.2)
	}

	// воспроизводимо в пределах суток
	assert.Equal(t, dayJitter("2026-10-19", 11, 42), dayJitter("2026-10-19", 11, 42))

	differs := false
	for counter := uint64(0); counter < 20; counter++ {
		if dayJitter("2026-10-19", 11, counter) != dayJitter("2026-10-20", 11, counter) {
			differs = true
		}
	}
	assert.True(t, differs, "джиттер должен меняться от суток к суткам")
}

func TestVisibleWinThreshold(t *testing.T) {
	for _, day := range []string{"2026-01-01", "2026-10-19", "2027-12-31"} {
		for cycle := 0; cycle < 200; cycle++ {
			th := visibleWinThreshold(day, cycle)
			assert.GreaterOrEqual(t, th, 15)
			assert.LessOrEqual(t, th, 25)
		}
	}
	assert.Equal(t, visibleWinThreshold("2026-10-19", 3), visibleWinThreshold("2026-10-19", 3))
}

func TestRandInt(t *testing.T) {
	src := NewSource(1)
	for range 1000 {
		v := randInt(src, 20, 40)
		assert.GreaterOrEqual(t, v, 20)
		assert.LessOrEqual(t, v, 40)
	}
	assert.Equal(t, 5, randInt(src, 5, 5))
}

func TestRing(t *testing.T) {
	r := newRing[int](3)
	_, ok := r.Newest()
	assert.False(t, ok)

	for i := 1; i <= 5; i++ {
		r.Push(i)
	}
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{5, 4, 3}, r.Values())
	assert.Equal(t, 0, r.Index(5))
	assert.Equal(t, 2, r.Index(3))
	assert.Equal(t, -1, r.Index(1), "вытесненное значение")
	assert.True(t, r.ContainsLast(4, 2))
	assert.False(t, r.ContainsLast(3, 2))

	_, same := r.SameLast(2)
	assert.False(t, same)
	r.Push(5)
	v, same := r.SameLast(2)
	assert.True(t, same)
	assert.Equal(t, 5, v)
	_, same = r.SameLast(4)
	assert.False(t, same, "окно длиннее буфера")
}
