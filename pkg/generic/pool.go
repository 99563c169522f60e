// Package generic holds small type-parameterized utilities with no game
// semantics of their own.
package generic

import "sync"

// Pool is a typed wrapper over sync.Pool. The snapshot feed uses it to reuse
// encode buffers across ticks.
type Pool[T any] struct {
	pool sync.Pool
}

// NewPool creates a pool that calls generate when empty.
func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	p.pool.Put(value)
}
