package cache

import "testing"

func TestCostEviction(t *testing.T) {
	var evicted []string
	c := New[string, int](100, func(key string, _ int) {
		evicted = append(evicted, key)
	})

	c.Set("a", 1, 40)
	c.Set("b", 2, 40)
	c.Set("c", 3, 40) // 120 > 100: "a" goes

	if len(evicted) != 1 || evicted[0] != "a" {
		t.Fatalf("evicted = %v, want [a]", evicted)
	}
	if c.Cost() != 80 {
		t.Errorf("Cost = %d, want 80", c.Cost())
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestRecencyProtectsHotEntries(t *testing.T) {
	var evicted []string
	c := New[string, int](100, func(key string, _ int) {
		evicted = append(evicted, key)
	})

	c.Set("a", 1, 40)
	c.Set("b", 2, 40)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be resident")
	}

	c.Set("c", 3, 40)

	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("evicted = %v, want [b] (a was touched)", evicted)
	}
}

func TestOversizedEntryStays(t *testing.T) {
	var evicted []string
	c := New[string, int](10, func(key string, _ int) {
		evicted = append(evicted, key)
	})

	c.Set("small", 1, 5)
	c.Set("huge", 2, 50)

	if _, ok := c.Get("huge"); !ok {
		t.Error("the just-inserted entry must survive even when oversized")
	}
	if _, ok := c.Get("small"); ok {
		t.Error("small should have been evicted to make room")
	}
	if len(evicted) != 1 || evicted[0] != "small" {
		t.Errorf("evicted = %v, want [small]", evicted)
	}
}

func TestReplaceEvictsOldValue(t *testing.T) {
	var evictedValues []int
	c := New[string, int](100, func(_ string, v int) {
		evictedValues = append(evictedValues, v)
	})

	c.Set("k", 1, 10)
	c.Set("k", 2, 20)

	if len(evictedValues) != 1 || evictedValues[0] != 1 {
		t.Fatalf("evicted values = %v, want [1]", evictedValues)
	}
	if got, _ := c.Get("k"); got != 2 {
		t.Errorf("Get = %d, want 2", got)
	}
	if c.Cost() != 20 {
		t.Errorf("Cost = %d, want 20", c.Cost())
	}
}

func TestRemoveSkipsCallback(t *testing.T) {
	calls := 0
	c := New[string, int](0, func(string, int) { calls++ })

	c.Set("k", 7, 10)
	v, ok := c.Remove("k")
	if !ok || v != 7 {
		t.Fatalf("Remove = (%d, %v), want (7, true)", v, ok)
	}
	if calls != 0 {
		t.Errorf("Remove must not invoke the eviction callback, got %d calls", calls)
	}
	if c.Cost() != 0 || c.Len() != 0 {
		t.Errorf("cache not empty after Remove: len=%d cost=%d", c.Len(), c.Cost())
	}
}

func TestClearEvictsAll(t *testing.T) {
	calls := 0
	c := New[string, int](0, func(string, int) { calls++ })

	c.Set("a", 1, 1)
	c.Set("b", 2, 1)
	c.Clear()

	if calls != 2 {
		t.Errorf("Clear invoked callback %d times, want 2", calls)
	}
	if c.Len() != 0 || c.Cost() != 0 {
		t.Errorf("cache not empty after Clear: len=%d cost=%d", c.Len(), c.Cost())
	}
}
