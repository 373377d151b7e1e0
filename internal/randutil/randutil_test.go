package randutil

import (
	"math/rand"
	"sync"
	"testing"
)

func TestNew_NilSeedsFromClock(t *testing.T) {
	l := New(nil)
	v := l.Float64()
	if v < 0 || v >= 1 {
		t.Errorf("Float64() = %f, want [0,1)", v)
	}
}

func TestLocked_PreservesSeededSequence(t *testing.T) {
	plain := rand.New(rand.NewSource(42))
	locked := New(rand.New(rand.NewSource(42)))

	for i := 0; i < 50; i++ {
		if want, got := plain.Float64(), locked.Float64(); want != got {
			t.Fatalf("draw %d: locked = %f, plain = %f", i, got, want)
		}
	}
}

func TestLocked_ConcurrentDraws(t *testing.T) {
	l := New(rand.New(rand.NewSource(7)))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if v := l.Float64(); v < 0 || v >= 1 {
					t.Errorf("Float64() = %f, want [0,1)", v)
				}
				if n := l.Intn(10); n < 0 || n >= 10 {
					t.Errorf("Intn(10) = %d, want [0,10)", n)
				}
			}
		}()
	}
	wg.Wait()
}
