package slab

import (
	"errors"
	"iter"
	"math/bits"
)

// Token identifies an entry of the slab. Tokens are stable for the whole lifetime of
// an entry and are reused only after it was removed.
type Token uint32

var ErrCapacityExceeded = errors.New("slab: capacity exceeded")

// Slab is a fixed-capacity table of entries addressed by tokens. Tokens are allocated
// starting from the start value, the lowest free one always first, so tokens below the
// start can be reserved by the caller for its own purposes.
type Slab[T any] struct {
	start    Token
	entries  []T
	occupied []uint64
	len      int
}

func New[T any](start Token, capacity int) *Slab[T] {
	return &Slab[T]{
		start:    start,
		entries:  make([]T, capacity),
		occupied: make([]uint64, (capacity+63)/64),
	}
}

// Insert stores the entry returned by the constructor under the lowest free token. The
// constructor is called with the token allocated for it.
func (s *Slab[T]) Insert(constructor func(Token) T) (Token, error) {
	for word, bitmap := range s.occupied {
		if bitmap == ^uint64(0) {
			continue
		}

		index := word*64 + bits.TrailingZeros64(^bitmap)
		if index >= len(s.entries) {
			break
		}

		token := s.start + Token(index)
		s.entries[index] = constructor(token)
		s.occupied[word] |= 1 << (index % 64)
		s.len++

		return token, nil
	}

	return 0, ErrCapacityExceeded
}

// Remove frees the token, returning the entry stored under it. Removing a free token is
// a no-op.
func (s *Slab[T]) Remove(token Token) (entry T, ok bool) {
	index, ok := s.index(token)
	if !ok || !s.isOccupied(index) {
		return entry, false
	}

	entry = s.entries[index]
	var zero T
	s.entries[index] = zero
	s.occupied[index/64] &^= 1 << (index % 64)
	s.len--

	return entry, true
}

// Get returns the entry stored under the token. Getting a free token is a programming
// error and results in a panic.
func (s *Slab[T]) Get(token Token) T {
	index, ok := s.index(token)
	if !ok || !s.isOccupied(index) {
		panic("slab: get of a free token")
	}

	return s.entries[index]
}

// Contains reports whether the token is occupied.
func (s *Slab[T]) Contains(token Token) bool {
	index, ok := s.index(token)
	return ok && s.isOccupied(index)
}

func (s *Slab[T]) Len() int {
	return s.len
}

func (s *Slab[T]) Cap() int {
	return len(s.entries)
}

// All iterates over occupied tokens in ascending order. Removing the current token while
// iterating is allowed.
func (s *Slab[T]) All() iter.Seq2[Token, T] {
	return func(yield func(Token, T) bool) {
		for index := range s.entries {
			if !s.isOccupied(index) {
				continue
			}

			if !yield(s.start+Token(index), s.entries[index]) {
				return
			}
		}
	}
}

func (s *Slab[T]) index(token Token) (int, bool) {
	if token < s.start {
		return 0, false
	}

	index := int(token - s.start)
	return index, index < len(s.entries)
}

func (s *Slab[T]) isOccupied(index int) bool {
	return s.occupied[index/64]&(1<<(index%64)) != 0
}
