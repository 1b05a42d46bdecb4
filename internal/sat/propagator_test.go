package sat

import "testing"

// fakePropagator is a minimal ExternalPropagator: it forces forceLit (if
// set) via CbPropagate once, on the first poll, offers clauseLits (if set)
// once as a forgettable external clause, and accepts every model.
type fakePropagator struct {
	lazy        bool
	forgettable bool

	forceLit   int32
	forced     bool
	clauseLits []int32
	clauseSent bool

	assignments [][]int32
	backtracks  []int
}

func (p *fakePropagator) Lazy() bool                { return p.lazy }
func (p *fakePropagator) ReasonsForgettable() bool   { return p.forgettable }
func (p *fakePropagator) NotifyAssignment(lits []int32) {
	cp := make([]int32, len(lits))
	copy(cp, lits)
	p.assignments = append(p.assignments, cp)
}
func (p *fakePropagator) NotifyNewDecisionLevel() {}
func (p *fakePropagator) NotifyBacktrack(newLevel int) {
	p.backtracks = append(p.backtracks, newLevel)
}
func (p *fakePropagator) CbCheckFoundModel(model []bool) bool { return true }
func (p *fakePropagator) CbDecide() int32                     { return 0 }

func (p *fakePropagator) CbPropagate() int32 {
	if p.forced || p.forceLit == 0 {
		return 0
	}
	p.forced = true
	return p.forceLit
}

func (p *fakePropagator) CbAddReasonClauseLit(propagatedLit int32) int32 { return 0 }

func (p *fakePropagator) CbHasExternalClause() (bool, bool) {
	if p.clauseSent || len(p.clauseLits) == 0 {
		return false, false
	}
	return true, true
}

func (p *fakePropagator) CbAddExternalClauseLit() int32 {
	if len(p.clauseLits) == 0 {
		p.clauseSent = true
		return 0
	}
	lit := p.clauseLits[0]
	p.clauseLits = p.clauseLits[1:]
	if len(p.clauseLits) == 0 {
		p.clauseSent = true
	}
	return lit
}

// TestExternalPropagatorForcesLiteral checks that a literal forced via
// CbPropagate ends up true in the found model.
func TestExternalPropagatorForcesLiteral(t *testing.T) {
	s := NewDefaultSolver()
	v0 := s.NewVar()
	s.NewVar()

	p := &fakePropagator{forceLit: literalToSigned(PositiveLiteral(v0))}
	s.SetPropagator(p)

	status := s.Solve(nil)
	if status != StatusSAT {
		t.Fatalf("Solve(): got %s, want SAT", status)
	}
	if !p.forced {
		t.Errorf("CbPropagate() was never drained")
	}
	if model := s.Model(); !model[v0] {
		t.Errorf("Model()[%d] = false, want true (forced by propagator)", v0)
	}
}

// TestExternalPropagatorAddsClause checks that a clause injected via
// CbHasExternalClause/CbAddExternalClauseLit constrains the model.
func TestExternalPropagatorAddsClause(t *testing.T) {
	s := NewDefaultSolver()
	v0 := s.NewVar()

	p := &fakePropagator{
		forgettable: true,
		clauseLits:  []int32{literalToSigned(NegativeLiteral(v0))},
	}
	s.SetPropagator(p)
	s.ObserveVar(v0)

	status := s.Solve(nil)
	if status != StatusSAT {
		t.Fatalf("Solve(): got %s, want SAT", status)
	}
	if model := s.Model(); model[v0] {
		t.Errorf("Model()[%d] = true, want false (clause -1 injected)", v0)
	}
}

// TestExternalPropagatorRejectsThenAcceptsModel forces the propagator to
// reject the first candidate model by supplying a falsifying clause, and
// checks the solver converges on a model consistent with it.
func TestExternalPropagatorRejectsThenAcceptsModel(t *testing.T) {
	s := NewDefaultSolver()
	v0 := s.NewVar()

	rejectOnce := &rejectingPropagator{rejectVar: v0}
	s.SetPropagator(rejectOnce)
	s.ObserveVar(v0)

	status := s.Solve(nil)
	if status != StatusSAT {
		t.Fatalf("Solve(): got %s, want SAT", status)
	}
	if model := s.Model(); model[v0] {
		t.Errorf("Model()[%d] = true, want false after rejection clause", v0)
	}
}

// rejectingPropagator rejects the first model in which rejectVar is true,
// adding the unit clause (-rejectVar) to rule it out.
type rejectingPropagator struct {
	rejectVar    int
	rejectedOnce bool
	clauseLits   []int32
	clauseSent   bool
}

func (p *rejectingPropagator) Lazy() bool              { return false }
func (p *rejectingPropagator) ReasonsForgettable() bool { return true }
func (p *rejectingPropagator) NotifyAssignment(lits []int32)   {}
func (p *rejectingPropagator) NotifyNewDecisionLevel()         {}
func (p *rejectingPropagator) NotifyBacktrack(newLevel int)    {}
func (p *rejectingPropagator) CbDecide() int32                 { return 0 }
func (p *rejectingPropagator) CbPropagate() int32              { return 0 }
func (p *rejectingPropagator) CbAddReasonClauseLit(int32) int32 { return 0 }

func (p *rejectingPropagator) CbCheckFoundModel(model []bool) bool {
	if !p.rejectedOnce && model[p.rejectVar] {
		p.rejectedOnce = true
		p.clauseLits = []int32{literalToSigned(NegativeLiteral(p.rejectVar))}
		p.clauseSent = false
		return false
	}
	return true
}

func (p *rejectingPropagator) CbHasExternalClause() (bool, bool) {
	if p.clauseSent || len(p.clauseLits) == 0 {
		return false, false
	}
	return true, true
}

func (p *rejectingPropagator) CbAddExternalClauseLit() int32 {
	if len(p.clauseLits) == 0 {
		p.clauseSent = true
		return 0
	}
	lit := p.clauseLits[0]
	p.clauseLits = p.clauseLits[1:]
	if len(p.clauseLits) == 0 {
		p.clauseSent = true
	}
	return lit
}
