package parallel

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Test that small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestWorkers(t *testing.T) {
	if cfg := Workers(1); cfg.Enabled {
		t.Errorf("Workers(1) should be sequential")
	}
	if cfg := Workers(0); cfg.NumWorkers != 1 {
		t.Errorf("Workers(0).NumWorkers = %d, want 1", cfg.NumWorkers)
	}

	seen := make([]int32, 4)
	For(4, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	}, Workers(4))
	for i, v := range seen {
		if v != 1 {
			t.Errorf("item %d ran %d times", i, v)
		}
	}
}

func TestRun_JoinsErrors(t *testing.T) {
	errOdd := errors.New("odd")
	err := Run(4, func(i int) error {
		if i%2 == 1 {
			return errOdd
		}
		return nil
	}, Workers(4))

	if !errors.Is(err, errOdd) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if err := Run(3, func(int) error { return nil }, Workers(2)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(j int) {
				atomic.AddInt64(&sum, int64(j))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		seq := Config{Enabled: false}
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(j int) {
				atomic.AddInt64(&sum, int64(j))
			}, seq)
		}
	})
}
