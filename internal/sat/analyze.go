package sat

// explain returns the negated-literal reason for either a conflict
// (isConflict) or a previous assignment of l, materializing an external
// reason on first access (spec §9 "lazy external reasons").
func (s *Solver) explain(cr CRef, l Literal, isConflict bool) []Literal {
	if cr.IsExternal() {
		cr = s.materializeExternalReason(l.VarID())
	}
	if isConflict {
		return explainConflict(s, cr, s.tmpReason)
	}
	return explainAssign(s, cr, s.tmpReason)
}

// analyze implements spec's first-UIP conflict analysis (§4.4): it walks
// the trail backwards from the conflict, resolving away every literal at
// the conflict's decision level except the last one (the first UIP),
// bumping activities as it goes, and returns the learnt clause (FUIP
// negation in slot 0) along with the backtrack level.
func (s *Solver) analyze(confl CRef) (learnt []Literal, backtrackLevel int) {
	nImplicationPoints := 0

	s.tmpLearnts = s.tmpLearnts[:0]
	s.tmpLearnts = append(s.tmpLearnts, -1) // placeholder for the FUIP

	s.seenVar.Clear()

	nextLiteral := len(s.trail) - 1
	l := Literal(-1)
	cr := confl

	for {
		isConflict := l == Literal(-1)
		for _, q := range s.explain(cr, l, isConflict) {
			v := q.VarID()
			if s.seenVar.Contains(v) {
				continue
			}
			s.seenVar.Add(v)
			s.order.BumpScore(v)

			lvl := s.vardata[v].level
			if lvl == s.decisionLevel() {
				nImplicationPoints++
				continue
			}
			s.tmpLearnts = append(s.tmpLearnts, q.Opposite())
			if lvl > backtrackLevel {
				backtrackLevel = lvl
			}
		}

		for {
			l = s.trail[nextLiteral]
			nextLiteral--
			v := l.VarID()
			cr = s.vardata[v].reason
			if s.seenVar.Contains(v) {
				break
			}
		}

		nImplicationPoints--
		if nImplicationPoints <= 0 {
			break
		}
	}

	s.tmpLearnts[0] = l.Opposite()

	s.minimizeLearnt()

	return s.tmpLearnts, backtrackLevel
}

// minimizeLearnt strips literals from s.tmpLearnts (beyond slot 0, the
// FUIP) that are redundant given the already-seen implication graph, per
// spec's ccmin_mode 1 (local) / 2 (recursive).
func (s *Solver) minimizeLearnt() {
	switch s.opts.CCMinMode {
	case 0:
		return
	case 1:
		s.minimizeLocal()
	default:
		s.minimizeRecursive()
	}
}

// minimizeLocal implements ccmin_mode 1: a literal is redundant iff every
// other literal of its reason clause is already in the learnt clause.
func (s *Solver) minimizeLocal() {
	out := s.tmpLearnts[:1]
	for _, lit := range s.tmpLearnts[1:] {
		v := lit.VarID()
		cr := s.vardata[v].reason
		if cr == CRefUndef {
			out = append(out, lit)
			continue
		}
		if cr.IsExternal() {
			cr = s.materializeExternalReason(v)
		}
		c := s.arena.Clause(cr)
		redundant := true
		for _, rl := range c.literals[1:] {
			if !s.seenVar.Contains(rl.VarID()) {
				redundant = false
				break
			}
		}
		if !redundant {
			out = append(out, lit)
		}
	}
	s.tmpLearnts = out
}

// minimizeRecursive implements ccmin_mode 2: a literal is redundant iff
// every ancestor reachable in its reason's implication graph is either
// already in the learnt clause or assigned at level 0. The per-variable
// level-bit abstraction (1 << (level & 31)) is a fast over-approximate
// filter consulted before falling back to the explicit DFS.
func (s *Solver) minimizeRecursive() {
	abstraction := uint32(0)
	for _, lvl := range s.abstractLevelsFor(s.tmpLearnts) {
		abstraction |= lvl
	}

	s.analyzeToClear = s.analyzeToClear[:0]
	out := s.tmpLearnts[:1]
	for _, lit := range s.tmpLearnts[1:] {
		if s.litRedundant(lit, abstraction) {
			continue
		}
		out = append(out, lit)
	}
	s.tmpLearnts = out
}

func (s *Solver) abstractLevelsFor(lits []Literal) []uint32 {
	out := make([]uint32, 0, len(lits))
	for _, l := range lits {
		out = append(out, abstractLevel(s.vardata[l.VarID()].level))
	}
	return out
}

func abstractLevel(level int) uint32 {
	return 1 << (uint(level) & 31)
}

// litRedundant runs the DFS described by spec's ccmin_mode 2: the stack
// holds literals still to justify; a literal is justified if its reason's
// other literals are each already seen, at level 0, or themselves
// recursively justified. s.seenVar marks visited variables to avoid
// revisiting them (preventing cycles); s.analyzeStack/s.analyzeToClear are
// reused scratch buffers.
func (s *Solver) litRedundant(lit Literal, abstraction uint32) bool {
	s.analyzeStack = s.analyzeStack[:0]
	s.analyzeStack = append(s.analyzeStack, lit)
	top := len(s.analyzeToClear)

	for len(s.analyzeStack) > 0 {
		cur := s.analyzeStack[len(s.analyzeStack)-1]
		s.analyzeStack = s.analyzeStack[:len(s.analyzeStack)-1]

		v := cur.VarID()
		cr := s.vardata[v].reason
		if cr == CRefUndef {
			s.undoSeenSince(top)
			return false
		}
		if cr.IsExternal() {
			cr = s.materializeExternalReason(v)
		}
		c := s.arena.Clause(cr)

		for _, rl := range c.literals[1:] {
			rv := rl.VarID()
			if s.seenVar.Contains(rv) || s.vardata[rv].level == 0 {
				continue
			}
			if s.vardata[rv].reason == CRefUndef || abstractLevel(s.vardata[rv].level)&abstraction == 0 {
				s.undoSeenSince(top)
				return false
			}
			s.seenVar.Add(rv)
			s.analyzeStack = append(s.analyzeStack, rl)
			s.analyzeToClear = append(s.analyzeToClear, rv)
		}
	}
	return true
}

// undoSeenSince unmarks every variable pushed onto s.analyzeToClear since
// index top and truncates it back to top. A failed redundancy probe must
// not leave its tentative seen-marks in place: a later litRedundant call
// would then treat an undetermined ancestor as already in the learnt
// clause and could wrongly declare a different literal redundant.
func (s *Solver) undoSeenSince(top int) {
	for i := len(s.analyzeToClear) - 1; i >= top; i-- {
		s.seenVar.Remove(s.analyzeToClear[i])
	}
	s.analyzeToClear = s.analyzeToClear[:top]
}

// analyzeFinal implements spec §4.5: given a literal p that is true on the
// trail and falsifies an assumption (p's negation) before that assumption
// became a decision, walk the implication graph backwards from p,
// collecting the assumption decisions it depends on. The result is the
// falsified assumption plus those assumptions: the assumption subset that
// refutes the problem.
func (s *Solver) analyzeFinal(p Literal, assumptions []Literal) []Literal {
	conflict := []Literal{p.Opposite()}
	if s.decisionLevel() == 0 {
		return conflict
	}

	s.seenVar.Clear()
	s.seenVar.Add(p.VarID())

	for i := len(s.trail) - 1; i >= 0; i-- {
		l := s.trail[i]
		v := l.VarID()
		if !s.seenVar.Contains(v) {
			continue
		}
		if s.vardata[v].reason == CRefUndef {
			if s.vardata[v].level > 0 && isAssumptionLiteral(l, assumptions) {
				conflict = append(conflict, l)
			}
			continue
		}
		cr := s.vardata[v].reason
		if cr.IsExternal() {
			cr = s.materializeExternalReason(v)
		}
		c := s.arena.Clause(cr)
		for _, rl := range c.literals[1:] {
			if s.vardata[rl.VarID()].level > 0 {
				s.seenVar.Add(rl.VarID())
			}
		}
	}

	return conflict
}

func isAssumptionLiteral(l Literal, assumptions []Literal) bool {
	for _, a := range assumptions {
		if a == l {
			return true
		}
	}
	return false
}
