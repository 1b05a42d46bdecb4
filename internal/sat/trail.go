package sat

// VarData is the per-variable bookkeeping spec's data model names: the
// reason clause (or sentinel) that forced the variable's current value,
// and the decision level at which it was assigned.
type VarData struct {
	reason CRef
	level  int
}

// decisionLevel returns the solver's current decision level, i.e. the
// number of pending trailLim separators.
func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

// newDecisionLevel pushes a new separator onto the trail, marking the
// start of a fresh decision level. Called both for real decisions and for
// the "pseudo-decision" the search driver takes when an assumption is
// already satisfied (spec's search-driver pseudocode).
func (s *Solver) newDecisionLevel() {
	s.trailLim = append(s.trailLim, len(s.trail))
	if s.propagator != nil {
		s.propagator.NotifyNewDecisionLevel()
	}
}

// enqueue records l as newly true with the given reason, pushing it onto
// the trail and the propagation queue. It returns false if l was already
// false (a conflicting assignment) and true otherwise (including when l
// was already true).
func (s *Solver) enqueue(l Literal, from CRef) bool {
	switch s.LitValue(l) {
	case False:
		return false
	case True:
		return true
	default:
		v := l.VarID()
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		s.vardata[v] = VarData{reason: from, level: s.decisionLevel()}
		s.trail = append(s.trail, l)
		s.propQueue.Push(l)
		return true
	}
}

// assume enqueues l as a new decision: it opens a new decision level first,
// so l's level is recorded as that new level.
func (s *Solver) assume(l Literal) bool {
	s.newDecisionLevel()
	return s.enqueue(l, CRefUndef)
}

// undoOne pops the most recent trail literal, restoring it to Unknown and
// reinserting its variable into the order heap with its saved phase.
func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()

	s.order.Reinsert(v, s.VarValue(v))
	s.assigns[l] = Unknown
	s.assigns[l.Opposite()] = Unknown
	s.vardata[v] = VarData{reason: CRefUndef, level: -1}

	s.trail = s.trail[:len(s.trail)-1]
}

// cancel undoes every assignment made since the last newDecisionLevel call.
func (s *Solver) cancel() {
	target := s.trailLim[len(s.trailLim)-1]
	for len(s.trail) > target {
		s.undoOne()
	}
	s.trailLim = s.trailLim[:len(s.trailLim)-1]
}

// cancelUntil backtracks to decision level, notifying the external
// propagator once backtracking completes (spec's notify_backtrack).
func (s *Solver) cancelUntil(level int) {
	if s.decisionLevel() <= level {
		return
	}
	for s.decisionLevel() > level {
		s.cancel()
	}
	s.notifyHead = min(s.notifyHead, len(s.trail))
	if s.propagator != nil {
		s.propagator.NotifyBacktrack(level)
	}
}
