package devices

import (
	"errors"
	"sort"
	"sync"

	"github.com/samber/lo"

	"smartai-dashboard/internal/metrics"
)

// State состояние устройства
type State string

const (
	On  State = "ON"
	Off State = "OFF"
)

// ErrNotFound неизвестное устройство
var ErrNotFound = errors.New("device not found")

// DefaultDevices фиксированный набор симулируемых устройств
var DefaultDevices = []string{"light", "fan", "ac", "tv"}

// Store таблица переключателей, живет до перезапуска процесса
type Store struct {
	mu     sync.Mutex
	states map[string]State
}

// NewStore создает таблицу, все устройства выключены
func NewStore(ids ...string) *Store {
	if len(ids) == 0 {
		ids = DefaultDevices
	}
	states := make(map[string]State, len(ids))
	for _, id := range ids {
		states[id] = Off
	}
	return &Store{states: states}
}

// Toggle переключает устройство и возвращает новое состояние
func (s *Store) Toggle(id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.states[id]
	if !ok {
		return "", ErrNotFound
	}

	next := On
	if current == On {
		next = Off
	}
	s.states[id] = next

	metrics.DeviceToggles.WithLabelValues(id, string(next)).Inc()
	return next, nil
}

// States копия таблицы
func (s *Store) States() map[string]State {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]State, len(s.states))
	for id, st := range s.states {
		out[id] = st
	}
	return out
}

// IDs отсортированные идентификаторы
func (s *Store) IDs() []string {
	s.mu.Lock()
	ids := lo.Keys(s.states)
	s.mu.Unlock()

	sort.Strings(ids)
	return ids
}
