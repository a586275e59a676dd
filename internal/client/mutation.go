package client

import (
	"context"
	"sync"
)

// MutationState состояние последней мутации. Детали ошибки сведены к флагу.
type MutationState struct {
	IsLoading bool
	IsError   bool
}

// Mutation изменяющий вызов API с колбэком после успеха
type Mutation[In, Out any] struct {
	fn        func(ctx context.Context, in In) (Out, error)
	onSuccess func()

	mu      sync.Mutex
	running int
	isError bool
}

// NewMutation создает мутацию. onSuccess вызывается только после успешного fn.
func NewMutation[In, Out any](fn func(ctx context.Context, in In) (Out, error), onSuccess func()) *Mutation[In, Out] {
	return &Mutation[In, Out]{fn: fn, onSuccess: onSuccess}
}

// Mutate выполняет мутацию
func (m *Mutation[In, Out]) Mutate(ctx context.Context, in In) (Out, error) {
	m.mu.Lock()
	m.running++
	m.mu.Unlock()

	out, err := m.fn(ctx, in)

	m.mu.Lock()
	m.running--
	m.isError = err != nil
	m.mu.Unlock()

	if err == nil && m.onSuccess != nil {
		m.onSuccess()
	}

	return out, err
}

// State текущее состояние мутации
func (m *Mutation[In, Out]) State() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MutationState{IsLoading: m.running > 0, IsError: m.isError}
}
