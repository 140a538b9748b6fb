package kv

import (
	"iter"

	"github.com/indigo-web/utils/strcomp"
)

type Pair struct {
	Key, Value string
}

// Storage is an ordered list of (string, string) pairs. It acts as a map but uses linear
// search instead, which proves to be more efficient on relatively low amount of entries,
// which is the case for HTTP headers. Duplicate keys are allowed and the insertion order
// is preserved. Key lookups are case-insensitive.
type Storage struct {
	pairs []Pair
}

func New() *Storage {
	return new(Storage)
}

// NewPrealloc returns an instance of Storage with pre-allocated underlying storage.
func NewPrealloc(n int) *Storage {
	return &Storage{
		pairs: make([]Pair, 0, n),
	}
}

// NewFromPairs returns a new instance holding the passed pairs in the same order.
func NewFromPairs(pairs ...Pair) *Storage {
	s := NewPrealloc(len(pairs))
	s.pairs = append(s.pairs, pairs...)

	return s
}

// Add adds a new pair of key and value.
func (s *Storage) Add(key, value string) *Storage {
	s.pairs = append(s.pairs, Pair{
		Key:   key,
		Value: value,
	})
	return s
}

// Value returns the first value, corresponding to the key. Otherwise, empty string is returned
func (s *Storage) Value(key string) string {
	return s.ValueOr(key, "")
}

// ValueOr returns either the first value corresponding to the key or custom value, defined
// via the second parameter.
func (s *Storage) ValueOr(key, or string) string {
	value, found := s.Get(key)
	if !found {
		return or
	}

	return value
}

// Get returns a value and a bool, indicating whether the value was found. If it wasn't, it'll
// be an empty string.
func (s *Storage) Get(key string) (value string, found bool) {
	for _, pair := range s.pairs {
		if strcomp.EqualFold(key, pair.Key) {
			return pair.Value, true
		}
	}

	return "", false
}

// Values returns an iterator over all the values of the key, in order of insertion.
func (s *Storage) Values(key string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, pair := range s.pairs {
			if strcomp.EqualFold(pair.Key, key) && !yield(pair.Value) {
				return
			}
		}
	}
}

// Pairs returns an iterator over the pairs.
func (s *Storage) Pairs() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, pair := range s.pairs {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Has indicates, whether there's an entry of the key.
func (s *Storage) Has(key string) bool {
	_, found := s.Get(key)
	return found
}

// Len returns a number of stored pairs.
func (s *Storage) Len() int {
	return len(s.pairs)
}

func (s *Storage) Empty() bool {
	return s.Len() == 0
}

// Clone creates a deep copy, which may be used later or stored somewhere safely. Keys and
// values are copied too, so the clone doesn't alias any connection buffer.
func (s *Storage) Clone() *Storage {
	c := NewPrealloc(len(s.pairs))
	for _, pair := range s.pairs {
		c.Add(clone(pair.Key), clone(pair.Value))
	}

	return c
}

// Expose exposes the underlying pairs slice.
func (s *Storage) Expose() []Pair {
	return s.pairs
}

// Clear all the entries. However, all the allocated space won't be freed.
func (s *Storage) Clear() *Storage {
	s.pairs = s.pairs[:0]
	return s
}

func clone(str string) string {
	return string(append([]byte(nil), str...))
}
