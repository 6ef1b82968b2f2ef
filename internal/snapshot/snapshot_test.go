package snapshot

import "testing"

func TestRingPushAndPop(t *testing.T) {
	r := NewRing(0)
	r.Push(Snapshot{BlockIndex: 1})
	r.Push(Snapshot{BlockIndex: 2})
	last, ok := r.PopLast()
	if !ok || last.BlockIndex != 2 {
		t.Fatalf("expected last pushed snapshot, got %+v ok=%v", last, ok)
	}
	if len(r.All()) != 1 {
		t.Errorf("expected 1 remaining snapshot, got %d", len(r.All()))
	}
}

func TestRingRespectsLimit(t *testing.T) {
	r := NewRing(2)
	r.Push(Snapshot{BlockIndex: 1})
	r.Push(Snapshot{BlockIndex: 2})
	r.Push(Snapshot{BlockIndex: 3})
	all := r.All()
	if len(all) != 2 || all[0].BlockIndex != 2 {
		t.Errorf("expected oldest evicted, got %+v", all)
	}
}

func TestPopLastOnEmptyIsNoOp(t *testing.T) {
	r := NewRing(0)
	_, ok := r.PopLast()
	if ok {
		t.Error("expected no-op on empty ring")
	}
}
