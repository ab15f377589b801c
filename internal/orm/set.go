package orm

import (
	"context"
	"sync"
)

type loadState int

const (
	unloaded loadState = iota
	loading
	loaded
)

// Set: ленивая упорядоченная коллекция «многих» в связи один-ко-многим.
// Первая загрузка выполняется под мьютексом экземпляра: запрос к хранилищу
// идёт не более одного раза, после ошибки коллекция остаётся незагруженной.
type Set[E any] struct {
	kind   Kind[E]
	filter Filter

	mu    sync.Mutex
	state loadState
	items []E
}

// Load выполняет выборку, если она ещё не выполнялась.
func (s *Set[E]) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == loaded {
		return nil
	}
	s.state = loading
	items, err := s.kind.GetMany(ctx, s.filter)
	if err != nil {
		s.state = unloaded
		return err
	}
	s.items = items
	s.state = loaded
	return nil
}

// Loaded сообщает, выполнена ли загрузка.
func (s *Set[E]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == loaded
}

func (s *Set[E]) snapshot(ctx context.Context) ([]E, error) {
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items, nil
}

// Traverse загружает коллекцию при необходимости и вызывает visit для
// каждого элемента в порядке хранилища.
func (s *Set[E]) Traverse(ctx context.Context, visit func(E)) error {
	items, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		visit(it)
	}
	return nil
}

// Size: число элементов (загружает коллекцию при необходимости).
func (s *Set[E]) Size(ctx context.Context) (int, error) {
	items, err := s.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Items: копия элементов.
func (s *Set[E]) Items(ctx context.Context) ([]E, error) {
	items, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]E, len(items))
	copy(out, items)
	return out, nil
}

// Filter: условие выборки коллекции.
func (s *Set[E]) Filter() Filter { return s.filter }
