// Package generator — ring.go: кольцевой буфер фиксированной ёмкости
// для окон "последних N" событий.
package generator

// ring хранит последние cap значений. Push вытесняет самое старое за O(1).
type ring[T comparable] struct {
	buf  []T
	next int // позиция для следующей записи
	n    int
}

func newRing[T comparable](capacity int) *ring[T] {
	return &ring[T]{buf: make([]T, capacity)}
}

// Push добавляет значение как самое новое.
func (r *ring[T]) Push(v T) {
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
	if r.n < len(r.buf) {
		r.n++
	}
}

// Len — сколько значений сейчас в буфере.
func (r *ring[T]) Len() int { return r.n }

// At возвращает i-е значение с конца: 0 — самое новое.
func (r *ring[T]) At(i int) T {
	idx := (r.next - 1 - i + 2*len(r.buf)) % len(r.buf)
	return r.buf[idx]
}

// Newest возвращает самое новое значение, если оно есть.
func (r *ring[T]) Newest() (T, bool) {
	if r.n == 0 {
		var zero T
		return zero, false
	}
	return r.At(0), true
}

// Index возвращает позицию v с конца (0 — самое новое) или -1.
func (r *ring[T]) Index(v T) int {
	for i := 0; i < r.n; i++ {
		if r.At(i) == v {
			return i
		}
	}
	return -1
}

// ContainsLast проверяет, есть ли v среди k самых новых значений.
func (r *ring[T]) ContainsLast(v T, k int) bool {
	i := r.Index(v)
	return i >= 0 && i < k
}

// Contains проверяет, есть ли v в буфере.
func (r *ring[T]) Contains(v T) bool {
	return r.Index(v) >= 0
}

// SameLast сообщает, что k самых новых значений одинаковы, и возвращает это значение.
func (r *ring[T]) SameLast(k int) (T, bool) {
	var zero T
	if k <= 0 || r.n < k {
		return zero, false
	}
	first := r.At(0)
	for i := 1; i < k; i++ {
		if r.At(i) != first {
			return zero, false
		}
	}
	return first, true
}

// Values возвращает значения от самого нового к самому старому.
func (r *ring[T]) Values() []T {
	out := make([]T, r.n)
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}
