package logging

import (
	"fmt"
	"sync"
	"testing"
)

func TestRunLogMostRecentFirst(t *testing.T) {
	rl := NewRunLog(10)
	rl.Add("info", "first")
	rl.Add("debug", "second")
	rl.Add("error", "third")

	got := rl.Recent(2)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Message != "third" || got[1].Message != "second" {
		t.Errorf("wrong order: %q, %q", got[0].Message, got[1].Message)
	}
	if got[0].Level != "error" {
		t.Errorf("level = %q, want error", got[0].Level)
	}
}

func TestRunLogOverflowDropsOldest(t *testing.T) {
	rl := NewRunLog(5)
	for i := 0; i < 8; i++ {
		rl.Add("info", "entry %d", i)
	}

	if rl.Len() != 5 {
		t.Fatalf("len = %d, want 5", rl.Len())
	}

	all := rl.All()
	if len(all) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(all))
	}
	// Newest is entry 7, oldest retained is entry 3
	if all[0].Message != "entry 7" {
		t.Errorf("newest = %q, want entry 7", all[0].Message)
	}
	if all[4].Message != "entry 3" {
		t.Errorf("oldest = %q, want entry 3", all[4].Message)
	}
}

func TestRunLogRecentMoreThanRetained(t *testing.T) {
	rl := NewRunLog(10)
	rl.Add("info", "only")

	got := rl.Recent(100)
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
}

func TestRunLogReset(t *testing.T) {
	rl := NewRunLog(10)
	rl.Add("info", "stale")
	rl.Reset()

	if rl.Len() != 0 {
		t.Errorf("len after reset = %d, want 0", rl.Len())
	}
	if got := rl.All(); len(got) != 0 {
		t.Errorf("entries survived reset: %v", got)
	}

	rl.Add("info", "fresh")
	if got := rl.All(); len(got) != 1 || got[0].Message != "fresh" {
		t.Errorf("unexpected entries after reset: %v", got)
	}
}

func TestRunLogDefaultCapacity(t *testing.T) {
	rl := NewRunLog(0)
	for i := 0; i < 250; i++ {
		rl.Add("debug", "line %d", i)
	}
	if rl.Len() != 200 {
		t.Errorf("len = %d, want default cap 200", rl.Len())
	}
}

func TestRunLogConcurrentAdd(t *testing.T) {
	rl := NewRunLog(50)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				rl.Add("debug", fmt.Sprintf("g%d-%d", g, i))
			}
		}(g)
	}
	wg.Wait()

	if rl.Len() != 50 {
		t.Errorf("len = %d, want 50", rl.Len())
	}
}
