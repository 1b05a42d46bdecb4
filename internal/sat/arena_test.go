package sat

import "testing"

func litSliceEqual(a, b []Literal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestArenaRelocateRoundTrip checks the arena's core invariant: a live
// clause's literals survive GarbageCollect unchanged, reachable only
// through the remapped CRef.
func TestArenaRelocateRoundTrip(t *testing.T) {
	var a Arena

	keep1 := a.Alloc([]Literal{PositiveLiteral(0), NegativeLiteral(1)}, false)
	drop := a.Alloc([]Literal{PositiveLiteral(2)}, true)
	keep2 := a.Alloc([]Literal{NegativeLiteral(0), PositiveLiteral(1), PositiveLiteral(2)}, true)

	a.Free(drop)

	remap := a.GarbageCollect()

	newKeep1 := Relocate(keep1, remap)
	newKeep2 := Relocate(keep2, remap)

	if !litSliceEqual(a.Clause(newKeep1).literals, []Literal{PositiveLiteral(0), NegativeLiteral(1)}) {
		t.Errorf("keep1 literals changed across relocation: got %v", a.Clause(newKeep1).literals)
	}
	if !litSliceEqual(a.Clause(newKeep2).literals, []Literal{NegativeLiteral(0), PositiveLiteral(1), PositiveLiteral(2)}) {
		t.Errorf("keep2 literals changed across relocation: got %v", a.Clause(newKeep2).literals)
	}
	if !a.Clause(newKeep2).learnt {
		t.Errorf("keep2 lost its learnt flag across relocation")
	}

	defer func() {
		if recover() == nil {
			t.Errorf("Relocate(drop, remap): want panic, got none")
		}
	}()
	Relocate(drop, remap)
}

func TestArenaNeedsGC(t *testing.T) {
	var a Arena
	if a.NeedsGC(0.2) {
		t.Errorf("NeedsGC(): empty arena should never need GC")
	}

	c1 := a.Alloc([]Literal{PositiveLiteral(0), PositiveLiteral(1)}, false)
	a.Alloc([]Literal{PositiveLiteral(2), PositiveLiteral(3)}, false)
	a.Free(c1)

	if !a.NeedsGC(0.2) {
		t.Errorf("NeedsGC(): want true after freeing half the arena at a low threshold")
	}
	if a.NeedsGC(0.99) {
		t.Errorf("NeedsGC(): want false at a near-1.0 threshold")
	}
}

func TestCRefExternalSentinels(t *testing.T) {
	if !CRefExtTrue.IsExternal() || !CRefExtFalse.IsExternal() {
		t.Errorf("IsExternal(): external sentinels must report true")
	}
	if CRefUndef.IsExternal() {
		t.Errorf("IsExternal(): CRefUndef must not report true")
	}
}
