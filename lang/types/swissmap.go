package types

import "github.com/dolthub/swiss"

// swissStringMap adapts swiss.Map to the string-keyed name tables this
// package needs (struct registry, function registry), wrapping it behind a
// narrow Get/Put/Count surface rather than using it directly at call sites.
type swissStringMap[V any] struct {
	m *swiss.Map[string, V]
}

func newSwissStringMap[V any](size uint32) *swissStringMap[V] {
	return &swissStringMap[V]{m: swiss.NewMap[string, V](size)}
}

func (s *swissStringMap[V]) Get(key string) (V, bool) {
	return s.m.Get(key)
}

func (s *swissStringMap[V]) Put(key string, v V) {
	s.m.Put(key, v)
}

func (s *swissStringMap[V]) Count() int {
	return int(s.m.Count())
}
