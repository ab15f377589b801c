package orm

import (
	"context"
	"sync"
)

// Memo кеширует результат относительного аксессора. Первое разрешение идёт
// под мьютексом; ошибка не кешируется, следующий вызов повторит попытку.
type Memo[T any] struct {
	mu    sync.Mutex
	done  bool
	value T
}

func (m *Memo[T]) Get(ctx context.Context, resolve func(context.Context) (T, error)) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return m.value, nil
	}
	v, err := resolve(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	m.value, m.done = v, true
	return v, nil
}

// Resolved сообщает, закеширован ли результат.
func (m *Memo[T]) Resolved() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}
