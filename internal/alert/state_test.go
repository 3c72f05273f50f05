package alert

import (
	"sync"
	"testing"
)

func TestStateInitial(t *testing.T) {
	s := NewState()
	if got := s.Get(); got != NoAlerts {
		t.Errorf("Get() = %q, want %q", got, NoAlerts)
	}
}

func TestStateLastWriterWins(t *testing.T) {
	s := NewState()

	s.Set(SourceDetection, "⚠️ Person detected on camera (1)")
	s.Set(SourceHealth, "✅ Normal")

	if got := s.Get(); got != "✅ Normal" {
		t.Errorf("Get() = %q, want %q", got, "✅ Normal")
	}
}

func TestStateConcurrentWriters(t *testing.T) {
	s := NewState()
	values := map[string]bool{"a": true, "b": true}

	var wg sync.WaitGroup
	for v := range values {
		wg.Add(1)
		go func(v string) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Set(SourceHealth, v)
				_ = s.Get()
			}
		}(v)
	}
	wg.Wait()

	// порядок писателей не определен, но значение всегда целое
	if got := s.Get(); !values[got] {
		t.Errorf("Get() = %q, want one of the written values", got)
	}
}
