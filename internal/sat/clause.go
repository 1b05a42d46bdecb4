package sat

import "strings"

// newOriginalClause builds a root-level input clause: literals already
// satisfied at level 0 make the whole clause trivially true (discarded),
// literals already falsified at level 0 are stripped, and a duplicated
// opposite-literal pair makes the clause a tautology. tmpLits is mutated
// in place (its tail may be reordered) the way the teacher's NewClause
// does, to avoid an extra allocation per clause.
//
// The two return values mirror the possible outcomes of adding a clause:
// ok is false only when the clause reduces to the empty clause (formula is
// now UNSAT); cr is CRefUndef when the clause was unit (and thus enqueued
// directly) or trivially true.
func newOriginalClause(s *Solver, tmpLits []Literal) (cr CRef, ok bool) {
	size := len(tmpLits)
	seen := make(map[Literal]struct{}, size)

	for i := size - 1; i >= 0; i-- {
		if _, dup := seen[tmpLits[i].Opposite()]; dup {
			return CRefUndef, true // tautology
		}
		if _, dup := seen[tmpLits[i]]; dup {
			size--
			tmpLits[i], tmpLits[size] = tmpLits[size], tmpLits[i]
			continue
		}
		seen[tmpLits[i]] = struct{}{}

		switch s.LitValue(tmpLits[i]) {
		case True:
			return CRefUndef, true
		case False:
			size--
			tmpLits[i], tmpLits[size] = tmpLits[size], tmpLits[i]
		}
	}
	tmpLits = tmpLits[:size]

	switch size {
	case 0:
		return CRefUndef, false
	case 1:
		return CRefUndef, s.enqueue(tmpLits[0], CRefUndef)
	default:
		cr := s.arena.Alloc(tmpLits, false)
		attachClause(s, cr)
		return cr, true
	}
}

// newLearntClause allocates a learnt clause from an already-minimized,
// FUIP-first literal list and attaches it. The second watch is placed on
// whichever remaining literal has the highest decision level, so that
// backtracking to the learnt clause's assertion level immediately leaves
// the clause either unit or satisfied (spec's clause-creation invariant).
func newLearntClause(s *Solver, lits []Literal) CRef {
	cr := s.arena.Alloc(lits, true)
	c := s.arena.Clause(cr)

	if len(c.literals) > 1 {
		maxLevel, wl := -1, 1
		for i := 1; i < len(c.literals); i++ {
			if lvl := s.vardata[c.literals[i].VarID()].level; lvl > maxLevel {
				maxLevel = lvl
				wl = i
			}
		}
		c.literals[1], c.literals[wl] = c.literals[wl], c.literals[1]
	}

	attachClause(s, cr)
	return cr
}

// attachClause registers cr on the watch lists of the negations of its
// first two literals, as spec's watch-list invariant requires.
func attachClause(s *Solver, cr CRef) {
	c := s.arena.Clause(cr)
	s.watches.watch(c.literals[0].Opposite(), cr, c.literals[1])
	s.watches.watch(c.literals[1].Opposite(), cr, c.literals[0])
}

// detachClause removes cr from its two watch lists. The arena slot itself
// is freed separately (see removeClause) so that a clause can be unwatched
// without immediately invalidating CRefs still held by a caller mid-loop.
func detachClause(s *Solver, cr CRef) {
	c := s.arena.Clause(cr)
	s.watches.unwatch(c.literals[0].Opposite(), cr, s.arena)
	s.watches.unwatch(c.literals[1].Opposite(), cr, s.arena)
}

// removeClause detaches and frees cr. It must not be called on a clause
// that is currently locked (the reason for some trail literal).
func removeClause(s *Solver, cr CRef) {
	detachClause(s, cr)
	s.arena.Free(cr)
}

// locked reports whether cr is currently the reason some trail literal was
// assigned, and therefore must survive reduce_db. Simplify clears the
// reason of a locked clause it removes at the root level first.
func locked(s *Solver, cr CRef) bool {
	c := s.arena.Clause(cr)
	v := c.literals[0].VarID()
	return s.vardata[v].reason == cr
}

// simplifyClause strips root-level-false literals and reports whether the
// clause is now satisfied at the root level (and so can be discarded).
func simplifyClause(s *Solver, cr CRef) bool {
	c := s.arena.Clause(cr)
	k := 0
	for _, lit := range c.literals {
		switch s.LitValue(lit) {
		case True:
			return true
		case False:
			// drop
		default:
			c.literals[k] = lit
			k++
		}
	}
	c.literals = c.literals[:k]
	return false
}

// propagateClause implements spec's five-step watch update when lit (the
// negation of one of cr's watched literals) has just become true. It
// returns false iff the clause is now falsified (its remaining watch is
// already false), which the caller treats as a conflict. When the clause
// is unit, its remaining watch is enqueued with cr as reason and it
// returns true.
func propagateClause(s *Solver, cr CRef, lit Literal) bool {
	c := s.arena.Clause(cr)

	// Ensure the falsified literal sits in slot 1, so slot 0 is always the
	// "other watch" candidate for propagation.
	opp := lit.Opposite()
	if c.literals[0] == opp {
		c.literals[0], c.literals[1] = c.literals[1], c.literals[0]
	}

	if s.LitValue(c.literals[0]) == True {
		s.watches.watch(lit, cr, c.literals[0])
		return true
	}

	if c.prevPos >= len(c.literals) {
		c.prevPos = 2
	}
	for i := c.prevPos; i < len(c.literals); i++ {
		if s.LitValue(c.literals[i]) != False {
			c.prevPos = i
			c.literals[1], c.literals[i] = c.literals[i], c.literals[1]
			s.watches.watch(c.literals[1].Opposite(), cr, c.literals[0])
			return true
		}
	}
	for i := 2; i < c.prevPos; i++ {
		if s.LitValue(c.literals[i]) != False {
			c.prevPos = i
			c.literals[1], c.literals[i] = c.literals[i], c.literals[1]
			s.watches.watch(c.literals[1].Opposite(), cr, c.literals[0])
			return true
		}
	}

	// No replacement watch: the clause is unit (or falsified) on slot 0.
	s.watches.watch(lit, cr, c.literals[0])
	return s.enqueue(c.literals[0], cr)
}

// explainConflict returns, as a fresh set of negated literals, the reason
// clause cr treated as a conflict (i.e. every literal of cr is false).
func explainConflict(s *Solver, cr CRef, out []Literal) []Literal {
	c := s.arena.Clause(cr)
	out = out[:0]
	for _, l := range c.literals {
		out = append(out, l.Opposite())
	}
	if c.learnt {
		s.bumpClauseActivity(cr)
	}
	return out
}

// explainAssign returns, as a fresh set of negated literals, the reason cr
// gave for assigning its own literals[0] true (i.e. every other literal of
// cr is false).
func explainAssign(s *Solver, cr CRef, out []Literal) []Literal {
	c := s.arena.Clause(cr)
	out = out[:0]
	for _, l := range c.literals[1:] {
		out = append(out, l.Opposite())
	}
	if c.learnt {
		s.bumpClauseActivity(cr)
	}
	return out
}

func clauseString(c *clauseRecord) string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	var sb strings.Builder
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
