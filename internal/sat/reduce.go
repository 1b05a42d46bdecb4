package sat

import "sort"

// learntSizeSchedule tracks spec's max_learnts growth (§4.7): starting at
// num_clauses * learntsize_factor (floored at min_learnts_lim) and
// multiplied by learntsize_inc at each adjustment point. The first
// adjustment comes after learntsize_adjust_start_confl conflicts, and the
// gap between adjustments is multiplied by learntsize_adjust_inc each time.
// Restarts do not change the bound.
type learntSizeSchedule struct {
	maxLearnts   float64
	adjustConfl  float64
	adjustCnt    float64
	adjustInc    float64
	sizeInc      float64
	minLim       int
}

func newLearntSizeSchedule(opts Options, numClauses int) *learntSizeSchedule {
	max := float64(numClauses) * opts.LearntSizeFactor
	if max < float64(opts.MinLearntsLim) {
		max = float64(opts.MinLearntsLim)
	}
	return &learntSizeSchedule{
		maxLearnts:  max,
		adjustConfl: float64(opts.LearntSizeAdjustStartConfl),
		adjustCnt:   float64(opts.LearntSizeAdjustStartConfl),
		adjustInc:   opts.LearntSizeAdjustInc,
		sizeInc:     opts.LearntSizeInc,
		minLim:      opts.MinLearntsLim,
	}
}

func (l *learntSizeSchedule) limit() int {
	return int(l.maxLearnts)
}

// onConflict grows the schedule; called once per conflict so the bound
// keeps pace the way minisat-family solvers do between restarts.
func (l *learntSizeSchedule) onConflict() {
	l.adjustCnt--
	if l.adjustCnt <= 0 {
		l.adjustConfl *= l.adjustInc
		l.adjustCnt = l.adjustConfl
		l.maxLearnts *= l.sizeInc
	}
}

// reduceDB implements spec §4.7: partitions learnts into locked (currently
// a reason) and free, sorts free learnts by activity ascending, and drops
// the lower half of those with more than two literals. Protected clauses
// (those marked not to be evicted on this pass) survive regardless.
func (s *Solver) reduceDB() {
	learnts := s.learnts
	sort.Slice(learnts, func(i, j int) bool {
		ci := s.arena.Clause(learnts[i])
		cj := s.arena.Clause(learnts[j])
		return ci.activity < cj.activity
	})

	i, j := 0, 0
	half := len(learnts) / 2
	for ; i < half; i++ {
		c := s.arena.Clause(learnts[i])
		if locked(s, learnts[i]) || c.protected || len(c.literals) <= 2 {
			learnts[j] = learnts[i]
			j++
			c.protected = false
			continue
		}
		if s.proof != nil {
			s.proof.Delete(c.literals)
		}
		removeClause(s, learnts[i])
	}
	for ; i < len(learnts); i++ {
		learnts[j] = learnts[i]
		j++
	}
	s.learnts = learnts[:j]

	if s.arena.NeedsGC(s.opts.GarbageFrac) {
		s.garbageCollect()
	}
}

// bumpClauseActivity implements spec's clause-activity bump/decay/rescale
// rule (§4.4): clause_inc is added to the activity, and every
// learnt clause's activity is rescaled by 1e-100 if any exceeds 1e100.
func (s *Solver) bumpClauseActivity(cr CRef) {
	c := s.arena.Clause(cr)
	c.activity += s.clauseInc
	if c.activity > 1e100 {
		s.clauseInc *= 1e-100
		for _, lcr := range s.learnts {
			s.arena.Clause(lcr).activity *= 1e-100
		}
	}
}

func (s *Solver) decayClauseActivity() {
	s.clauseInc *= s.opts.ClauseDecay
}
