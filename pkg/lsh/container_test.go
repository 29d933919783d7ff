package lsh

import "testing"

func exerciseContainer(t *testing.T, c IDContainer) {
	t.Helper()

	if !c.AddIfAbsent("a") {
		t.Fatalf("AddIfAbsent(a) on empty container should return true")
	}
	if c.AddIfAbsent("a") {
		t.Errorf("AddIfAbsent(a) twice should return false")
	}
	if !c.Contains("a") {
		t.Errorf("Contains(a) should be true after add")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	c.AddIfAbsent("b")
	c.AddIfAbsent("c")
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}

	seen := make(map[ID]bool)
	c.Each(func(id ID) { seen[id] = true })
	for _, want := range []ID{"a", "b", "c"} {
		if !seen[want] {
			t.Errorf("Each did not visit %s", want)
		}
	}

	if !c.Remove("b") {
		t.Errorf("Remove(b) should return true")
	}
	if c.Remove("b") {
		t.Errorf("Remove(b) twice should return false")
	}
	if c.Contains("b") {
		t.Errorf("Contains(b) should be false after removal")
	}
	if c.Len() != 2 {
		t.Errorf("Len() after removal = %d, want 2", c.Len())
	}
}

func TestHashedSetContainer(t *testing.T) {
	exerciseContainer(t, NewHashedSetContainer())
}

func TestDenseSequenceContainer(t *testing.T) {
	exerciseContainer(t, NewDenseSequenceContainer())
}

func TestSmallVectorContainer(t *testing.T) {
	exerciseContainer(t, NewSmallVectorContainer())
}

func TestSmallVectorContainerSpillsPastInlineCap(t *testing.T) {
	c := NewSmallVectorContainer()
	for i := 0; i < smallVectorInlineCap+5; i++ {
		id := ID(rune('a' + i))
		if !c.AddIfAbsent(id) {
			t.Fatalf("AddIfAbsent(%s) unexpectedly rejected", id)
		}
	}
	if c.spill == nil {
		t.Fatalf("expected container to spill after exceeding inline capacity")
	}
	if c.Len() != smallVectorInlineCap+5 {
		t.Errorf("Len() = %d, want %d", c.Len(), smallVectorInlineCap+5)
	}
	for i := 0; i < smallVectorInlineCap+5; i++ {
		id := ID(rune('a' + i))
		if !c.Contains(id) {
			t.Errorf("Contains(%s) false after spill", id)
		}
	}
}

func TestDenseSequenceContainerRemoveSwapsLast(t *testing.T) {
	c := NewDenseSequenceContainer()
	c.AddIfAbsent("a")
	c.AddIfAbsent("b")
	c.AddIfAbsent("c")

	c.Remove("a")
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if !c.Contains("b") || !c.Contains("c") {
		t.Errorf("expected b and c to remain after removing a")
	}
}
