package sat

// ExternalPropagator is the IPASIR-UP-style callback contract spec's §4.9
// describes, modeled directly on the MinisatUP::ExternalPropagator C++
// interface (original_source/minisat/minisatup.h). The two virtual fields
// that interface carries (is_lazy, are_reasons_forgettable) become methods
// here so the interface stays a pure set of behaviors.
//
// The solver invokes these synchronously from the search loop only, never
// from within propagation's inner steps (spec §5): between exhausting
// internal propagation and picking the next decision.
type ExternalPropagator interface {
	// Lazy reports whether this propagator only checks complete
	// assignments. The solver does not consult it: CbPropagate and
	// CbDecide are polled whether or not the propagator is lazy.
	Lazy() bool

	// ReasonsForgettable reports whether reason clauses materialized from
	// CbAddReasonClauseLit may be evicted by reduce_db like any other
	// learnt clause.
	ReasonsForgettable() bool

	// NotifyAssignment is called with every literal assigned to an
	// observed variable since the last notification, in trail order,
	// before any decision-related callback.
	NotifyAssignment(lits []int32)

	// NotifyNewDecisionLevel is called whenever the solver's decision
	// level increments.
	NotifyNewDecisionLevel()

	// NotifyBacktrack is called after cancelUntil(newLevel) completes.
	NotifyBacktrack(newLevel int)

	// CbCheckFoundModel is called when the search would return SAT. If it
	// returns false, the propagator must supply a falsifying clause via
	// CbHasExternalClause on the next iteration.
	CbCheckFoundModel(model []bool) bool

	// CbDecide optionally overrides the next decision literal (signed
	// DIMACS form). Returning 0 defers to the solver's own heuristic.
	CbDecide() int32

	// CbPropagate is polled repeatedly until it returns 0; each non-zero
	// literal is enqueued with an external sentinel reason.
	CbPropagate() int32

	// CbAddReasonClauseLit is invoked lazily during conflict analysis
	// when the analyzer needs the reason for a previous external
	// propagation of propagatedLit. Called literal-by-literal until it
	// returns 0; the produced clause must contain propagatedLit.
	CbAddReasonClauseLit(propagatedLit int32) int32

	// CbHasExternalClause reports whether the propagator has a clause to
	// add during search, and whether that clause is forgettable.
	CbHasExternalClause() (has bool, forgettable bool)

	// CbAddExternalClauseLit is drained literal-by-literal (terminated by
	// 0) immediately after a true CbHasExternalClause.
	CbAddExternalClauseLit() int32
}

// observe marks v as frozen against simplification. A variable may only
// become observed while a propagator is connected (spec §4.9).
func (s *Solver) observe(v int) {
	debugAssert(s.propagator != nil, "cannot observe a variable without a connected external propagator")
	s.observed[v] = true
}

// ObserveVar is the exported form of observe, for callers (e.g. ipasirup)
// that add observed variables without going through the propagator's own
// callbacks.
func (s *Solver) ObserveVar(v int) { s.observe(v) }

// Unobserve releases v from the frozen set. Only legal between Solve
// calls (spec §4.9).
func (s *Solver) Unobserve(v int) {
	if s.decisionLevel() != 0 {
		panic("sat: Unobserve called while search is in progress")
	}
	s.observed[v] = false
}

// ForceBacktrack asks the driver to cancel to level before making its next
// decision. It is only callable from within CbDecide; calling it at any
// other time is a programmer error (spec §4.9, §7).
func (s *Solver) ForceBacktrack(level int) {
	debugAssert(s.inCbDecide, "ForceBacktrack called outside cb_decide")
	s.forcedBacktrack = true
	s.forcedBacktrackLevel = level
}

// drainAssignmentNotifications sends every observed-variable assignment
// made since the last notification to the propagator, in trail order.
func (s *Solver) drainAssignmentNotifications() {
	if s.propagator == nil {
		return
	}
	var lits []int32
	for ; s.notifyHead < len(s.trail); s.notifyHead++ {
		l := s.trail[s.notifyHead]
		if s.observed[l.VarID()] {
			lits = append(lits, literalToSigned(l))
		}
	}
	if len(lits) > 0 {
		s.propagator.NotifyAssignment(lits)
	}
}

// pollExternalPropagations repeatedly asks the propagator for forced
// literals and enqueues each with the appropriate external sentinel
// reason, stopping at the first conflict or once the propagator has
// nothing left to say. It returns the conflicting literal's sentinel CRef
// plus true if a conflict was produced.
func (s *Solver) pollExternalPropagations() (conflict CRef, hasConflict bool) {
	if s.propagator == nil {
		return CRefUndef, false
	}
	for {
		s.drainAssignmentNotifications()
		lit := s.propagator.CbPropagate()
		if lit == 0 {
			return CRefUndef, false
		}
		l := signedToLiteral(lit)
		s.observe(l.VarID())
		reason := CRefExtTrue
		if !l.IsPositive() {
			reason = CRefExtFalse
		}
		if s.LitValue(l) == False {
			return reason, true
		}
		s.enqueue(l, reason)
	}
}

// injectExternalClauses drains every pending external clause the
// propagator has to offer, applying spec's §4.9 rules: tautologies and
// root-satisfied clauses are dropped, root-falsified literals are
// stripped, an empty/root-falsified result makes the solver UNSAT, a unit
// triggers backtrack to level 0, otherwise the clause attaches normally.
func (s *Solver) injectExternalClauses() {
	if s.propagator == nil {
		return
	}
	for {
		has, forgettable := s.propagator.CbHasExternalClause()
		if !has {
			return
		}
		s.tmpExternal = s.tmpExternal[:0]
		for {
			lit := s.propagator.CbAddExternalClauseLit()
			if lit == 0 {
				break
			}
			l := signedToLiteral(lit)
			s.observe(l.VarID())
			s.tmpExternal = append(s.tmpExternal, l)
		}
		s.addExternalClause(s.tmpExternal, forgettable)
	}
}

// materializeExternalReason asks the propagator for the reason clause of a
// previous external propagation of v, interns it in the arena, and patches
// vardata[v].reason in place so downstream analysis proceeds as if the
// clause had existed all along (spec §4.4, §9 "lazy external reasons").
func (s *Solver) materializeExternalReason(v int) CRef {
	vd := &s.vardata[v]
	if !vd.reason.IsExternal() {
		return vd.reason
	}

	l := PositiveLiteral(v)
	if vd.reason == CRefExtFalse {
		l = l.Opposite()
	}
	propagatedLit := literalToSigned(l)

	s.tmpExternal = s.tmpExternal[:0]
	s.tmpExternal = append(s.tmpExternal, l) // reason clause must contain l
	for {
		lit := s.propagator.CbAddReasonClauseLit(propagatedLit)
		if lit == 0 {
			break
		}
		s.tmpExternal = append(s.tmpExternal, signedToLiteral(lit))
	}

	forgettable := s.propagator.ReasonsForgettable()
	cr := s.arena.Alloc(s.tmpExternal, forgettable)
	if forgettable {
		s.learnts = append(s.learnts, cr)
	}
	vd.reason = cr
	return cr
}

func literalToSigned(l Literal) int32 {
	v := int32(l.VarID()) + 1
	if !l.IsPositive() {
		return -v
	}
	return v
}

func signedToLiteral(lit int32) Literal {
	if lit < 0 {
		return NegativeLiteral(int(-lit - 1))
	}
	return PositiveLiteral(int(lit - 1))
}
