// Package sat implements an incremental CDCL SAT engine: two-watched-literal
// propagation, first-UIP conflict analysis with clause minimization, VSIDS
// decision ordering, luby/geometric restarts, activity-based learnt-clause
// reduction over a compacting clause arena, and an IPASIR-UP-style external
// propagator hook.
package sat

import (
	"fmt"
	"sync/atomic"
)

// Solver is a single incremental CDCL instance. It is not safe for
// concurrent use from multiple goroutines except for Interrupt, which may
// be called from any goroutine at any time.
type Solver struct {
	opts Options

	// Clause database.
	arena       Arena
	constraints []CRef
	learnts     []CRef
	clauseInc   float64

	// Variable ordering.
	order *VarOrder

	// Propagation and watchers.
	watches   watchLists
	propQueue *Queue[Literal]

	// Per-literal current value.
	assigns []LBool

	// Trail and per-variable bookkeeping.
	trail    []Literal
	trailLim []int
	vardata  []VarData

	released []bool // variables returned via ReleaseVar
	observed []bool // variables frozen by an external propagator

	// Whether the problem has reached a root-level conflict.
	unsat bool

	// Search statistics, public for cmd/upsat's progress reporting.
	TotalConflicts    int64
	TotalRestarts     int64
	TotalIterations   int64
	TotalPropagations int64

	lbdEMA EMA

	restarts    *restartSchedule
	learntsSize *learntSizeSchedule

	rng *rng

	// Budgets and interrupt (spec §4.8, §5, §7).
	conflictBudget      int64
	propagationBudget   int64
	interruptRequested  atomic.Bool

	// External propagator hook (spec §4.9).
	propagator           ExternalPropagator
	notifyHead           int
	inCbDecide           bool
	forcedBacktrack      bool
	forcedBacktrackLevel int

	// Model produced by the most recent successful Solve.
	model []bool

	// Assumption subset returned by the most recent UNSAT-under-assumptions
	// Solve.
	conflict []Literal

	// Optional DRAT-style proof trace.
	proof ProofWriter

	// Shared scratch buffers, reused across calls to avoid reallocating on
	// every conflict (mirrors the teacher's tmp* fields).
	seenVar        *ResetSet
	tmpWatchers    []watcher
	tmpLearnts     []Literal
	tmpReason      []Literal
	tmpExternal    []Literal
	analyzeStack   []Literal
	analyzeToClear []int
}

// Status is the three-valued outcome of Solve, per spec §6.
type Status int

const (
	StatusUnknown Status = iota
	StatusSAT
	StatusUNSAT
)

func (st Status) String() string {
	switch st {
	case StatusSAT:
		return "SAT"
	case StatusUNSAT:
		return "UNSAT"
	default:
		return "UNKNOWN"
	}
}

// NewSolver returns a Solver configured with the given options.
func NewSolver(opts Options) *Solver {
	return &Solver{
		opts:        opts,
		clauseInc:   1,

		conflictBudget:    -1,
		propagationBudget: -1,

		propQueue:   NewQueue[Literal](128),
		order:       NewVarOrder(opts.VarDecay, phaseSavingMode(opts.PhaseSaving)),
		rng:         newRNG(opts.RandomSeed),
		seenVar:     &ResetSet{},
		lbdEMA:      NewEMA(0.05),
		restarts:    newRestartSchedule(opts),
		learntsSize: newLearntSizeSchedule(opts, 0),
	}
}

// NewDefaultSolver returns a Solver configured with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

// SetProof attaches a proof-trace writer. Passing nil detaches tracing.
func (s *Solver) SetProof(w ProofWriter) {
	s.proof = w
}

// SetPropagator connects an external propagator. Passing nil disconnects
// it (and releases every observed variable back to being simplifiable).
func (s *Solver) SetPropagator(p ExternalPropagator) {
	s.propagator = p
	if p == nil {
		for v := range s.observed {
			s.observed[v] = false
		}
	}
}

// setUnsat records a root-level conflict and, if a proof trace is
// attached, appends its empty-clause terminator (spec §6). Idempotent:
// the terminator is only written the first time unsat becomes true.
func (s *Solver) setUnsat() {
	if s.unsat {
		return
	}
	s.unsat = true
	if s.proof != nil {
		s.proof.Unsat()
	}
}

func (s *Solver) NumVariables() int   { return len(s.vardata) }
func (s *Solver) NumAssigns() int     { return len(s.trail) }
func (s *Solver) NumConstraints() int { return len(s.constraints) }
func (s *Solver) NumLearnts() int     { return len(s.learnts) }

func (s *Solver) VarValue(v int) LBool    { return s.assigns[PositiveLiteral(v)] }
func (s *Solver) LitValue(l Literal) LBool { return s.assigns[l] }

// NewVar adds a fresh Boolean variable and returns its 0-based id.
func (s *Solver) NewVar() int {
	v := len(s.vardata)

	s.watches.grow()
	s.vardata = append(s.vardata, VarData{reason: CRefUndef, level: -1})
	s.released = append(s.released, false)
	s.observed = append(s.observed, false)
	s.seenVar.Expand()

	s.assigns = append(s.assigns, Unknown, Unknown)

	initScore := 0.0
	if s.opts.RndInitAct {
		initScore = s.rng.float64() * 0.01
	}
	s.order.AddVar(initScore)

	return v
}

// ReleaseVar gives v back to the pool of variables the caller no longer
// cares about. It is a programmer error to release an observed variable
// (spec §9's resolved open question) or one with an active assumption.
func (s *Solver) ReleaseVar(v int) error {
	if s.observed[v] {
		return fmt.Errorf("sat: cannot release observed variable %d", v)
	}
	if s.decisionLevel() != 0 {
		return fmt.Errorf("sat: cannot release variable %d mid-search", v)
	}
	s.released[v] = true
	if s.VarValue(v) == Unknown {
		s.enqueue(PositiveLiteral(v), CRefUndef)
	}
	return nil
}

// AddClause adds an original (non-learnt) clause. It returns false iff the
// formula is now trivially UNSAT. It is a programmer error to call this at
// a non-root decision level (spec §6).
func (s *Solver) AddClause(lits []Literal) (bool, error) {
	if s.decisionLevel() != 0 {
		return false, fmt.Errorf("sat: AddClause called at non-root level %d", s.decisionLevel())
	}
	if s.unsat {
		return false, nil
	}

	tmp := make([]Literal, len(lits))
	copy(tmp, lits)

	if s.proof != nil {
		s.proof.AddClause(tmp)
	}

	cr, ok := newOriginalClause(s, tmp)
	if cr != CRefUndef {
		s.constraints = append(s.constraints, cr)
	}
	if !ok {
		s.setUnsat()
	}
	s.learntsSize = newLearntSizeSchedule(s.opts, len(s.constraints))
	return ok, nil
}

// addExternalClause implements the §4.9 rules for clauses injected by the
// external propagator during search.
func (s *Solver) addExternalClause(lits []Literal, forgettable bool) {
	tmp := make([]Literal, 0, len(lits))
	seen := make(map[Literal]bool, len(lits))
	for _, l := range lits {
		if s.LitValue(l) == True && s.vardata[l.VarID()].level == 0 {
			return // root-satisfied: drop without learning
		}
		if seen[l.Opposite()] {
			return // tautology
		}
		if s.LitValue(l) == False && s.vardata[l.VarID()].level == 0 {
			continue // root-falsified literal: strip
		}
		if !seen[l] {
			seen[l] = true
			tmp = append(tmp, l)
		}
	}

	if s.proof != nil {
		s.proof.AddClause(tmp)
	}

	switch len(tmp) {
	case 0:
		s.cancelUntil(0)
		s.setUnsat()
	case 1:
		s.cancelUntil(0)
		if !s.enqueue(tmp[0], CRefUndef) {
			s.setUnsat()
		}
	default:
		cr := s.arena.Alloc(tmp, forgettable)
		attachClause(s, cr)
		if forgettable {
			s.learnts = append(s.learnts, cr)
		} else {
			s.constraints = append(s.constraints, cr)
		}
	}
}

// Simplify performs spec's top-level simplification (§4.7): at decision
// level 0, with propagation settled, drop clauses satisfied at the root
// and strip root-falsified literals from the rest.
func (s *Solver) Simplify() bool {
	debugAssert(s.decisionLevel() == 0, "Simplify called at non-root level")
	if s.unsat {
		return false
	}
	if confl, _ := s.propagate(); confl != CRefUndef {
		s.setUnsat()
		return false
	}

	s.simplifySet(&s.learnts)
	s.simplifySet(&s.constraints)
	return true
}

func (s *Solver) simplifySet(set *[]CRef) {
	crs := *set
	j := 0
	for _, cr := range crs {
		if simplifyClause(s, cr) {
			if locked(s, cr) {
				// A root-level assignment needs no reason clause.
				s.vardata[s.arena.Clause(cr).literals[0].VarID()].reason = CRefUndef
			}
			if s.proof != nil {
				s.proof.Delete(s.arena.Clause(cr).literals)
			}
			removeClause(s, cr)
			continue
		}
		crs[j] = cr
		j++
	}
	*set = crs[:j]
}

// garbageCollect compacts the arena and rewrites every CRef the solver
// holds, per spec §4.1/§9 and testable property 5.
func (s *Solver) garbageCollect() {
	remap := s.arena.GarbageCollect()

	for i, cr := range s.constraints {
		s.constraints[i] = Relocate(cr, remap)
	}
	for i, cr := range s.learnts {
		s.learnts[i] = Relocate(cr, remap)
	}
	s.watches.relocate(remap)
	for v := range s.vardata {
		if s.vardata[v].reason != CRefUndef && !s.vardata[v].reason.IsExternal() {
			s.vardata[v].reason = Relocate(s.vardata[v].reason, remap)
		}
	}
}

// Model returns the satisfying assignment from the most recent successful
// Solve call, or nil if the last call did not return SAT.
func (s *Solver) Model() []bool { return s.model }

// Ok reports whether the formula is still possibly satisfiable, i.e.
// whether a root-level conflict has been derived yet.
func (s *Solver) Ok() bool { return !s.unsat }

// Trail returns the literals forced at decision level 0, in assignment
// order. Used by internal/dimacs when exporting the current formula.
func (s *Solver) Trail() []Literal {
	lim := len(s.trail)
	if len(s.trailLim) > 0 {
		lim = s.trailLim[0]
	}
	return s.trail[:lim]
}

// ExportClauses returns the non-root-satisfied constraint clauses, each
// with its root-falsified literals stripped, per spec's to_dimacs
// contract (§6).
func (s *Solver) ExportClauses() [][]Literal {
	out := make([][]Literal, 0, len(s.constraints))
	for _, cr := range s.constraints {
		c := s.arena.Clause(cr)
		if c.deleted {
			continue
		}
		satisfied := false
		lits := make([]Literal, 0, len(c.literals))
		for _, l := range c.literals {
			if s.vardata[l.VarID()].level != 0 {
				lits = append(lits, l)
				continue
			}
			switch s.LitValue(l) {
			case True:
				satisfied = true
			case False:
				// root-falsified: strip
			default:
				lits = append(lits, l)
			}
		}
		if satisfied {
			continue
		}
		out = append(out, lits)
	}
	return out
}

// ConflictLiterals returns the assumption subset the most recent
// UNSAT-under-assumptions Solve found inconsistent.
func (s *Solver) ConflictLiterals() []Literal { return s.conflict }

// SetConflictBudget bounds the solver's total conflict count
// (TotalConflicts, summed over every Solve call so far); -1 disables the
// bound. SetPropagationBudget is analogous for TotalPropagations.
func (s *Solver) SetConflictBudget(n int64)    { s.conflictBudget = n }
func (s *Solver) SetPropagationBudget(n int64) { s.propagationBudget = n }

// Interrupt requests that the current or next Solve stop at the next
// budget check, returning Unknown. Safe to call from any goroutine.
func (s *Solver) Interrupt() { s.interruptRequested.Store(true) }

// ClearInterrupt resets the interrupt flag.
func (s *Solver) ClearInterrupt() { s.interruptRequested.Store(false) }

func (s *Solver) withinBudget() bool {
	if s.interruptRequested.Load() {
		return false
	}
	if s.conflictBudget >= 0 && s.TotalConflicts >= s.conflictBudget {
		return false
	}
	if s.propagationBudget >= 0 && s.TotalPropagations >= s.propagationBudget {
		return false
	}
	return true
}

// Solve runs the CDCL search under the given assumptions, per spec §6.
func (s *Solver) Solve(assumptions []Literal) Status {
	s.model = nil
	s.conflict = nil

	if s.unsat {
		return StatusUNSAT
	}

	asm := make([]Literal, len(assumptions))
	copy(asm, assumptions)

	for {
		status := s.search(asm)
		if status != StatusUnknown {
			s.cancelUntil(0)
			return status
		}
		if !s.withinBudget() {
			s.cancelUntil(0)
			return StatusUnknown
		}
	}
}

// search runs one restart round of the CDCL loop described by spec's
// §4.8 pseudocode.
func (s *Solver) search(assumptions []Literal) Status {
	confLimit := s.restarts.next()
	s.TotalRestarts++
	conflictsThisRound := 0

	for {
		if !s.withinBudget() {
			return StatusUnknown
		}
		s.TotalIterations++

		confl, nprop := s.propagate()
		s.TotalPropagations += nprop

		if confl != CRefUndef {
			s.TotalConflicts++
			conflictsThisRound++
			s.learntsSize.onConflict()

			if s.decisionLevel() == 0 {
				s.setUnsat()
				return StatusUNSAT
			}

			s.recordConflict(confl)
			s.order.DecayScores()
			s.decayClauseActivity()
			continue
		}

		// No conflict.
		if extConfl, has := s.pollExternalPropagations(); has {
			if s.decisionLevel() == 0 {
				s.setUnsat()
				return StatusUNSAT
			}
			s.recordConflict(extConfl)
			continue
		}
		s.injectExternalClauses()
		if s.unsat {
			return StatusUNSAT
		}

		if s.decisionLevel() == 0 {
			if !s.Simplify() {
				return StatusUNSAT
			}
		}

		if len(s.learnts)-s.NumAssigns() >= s.learntsSize.limit() {
			s.reduceDB()
		}

		next, hasNext, status, done := s.nextAssumptionOrDecision(assumptions)
		if done {
			return status
		}

		if !hasNext {
			if s.checkFoundModel() {
				s.saveModel()
				return StatusSAT
			}
			continue // propagator rejected the model; loop for its clause
		}

		if conflictsThisRound > confLimit {
			s.cancelUntil(len(assumptions))
			return StatusUnknown
		}

		s.assume(next)
	}
}

// recordConflict runs first-UIP analysis on confl, backtracks to the
// computed level, and records the resulting clause (spec §4.8's middle
// block, shared between internally- and externally-detected conflicts).
func (s *Solver) recordConflict(confl CRef) {
	learnt, btLevel := s.analyze(confl)
	s.cancelUntil(btLevel)

	if s.proof != nil {
		s.proof.AddLearnt(learnt)
	}

	if len(learnt) == 1 {
		s.enqueue(learnt[0], CRefUndef)
		return
	}

	cr := newLearntClause(s, learnt)
	s.learnts = append(s.learnts, cr)
	s.bumpClauseActivity(cr)
	s.arena.Clause(cr).lbd = s.computeLBD(learnt)
	s.enqueue(learnt[0], cr)
}

// nextAssumptionOrDecision walks the pending assumption prefix, falls back
// to the external propagator's cb_decide, and finally the VSIDS heuristic,
// per spec §4.8/§4.6. done is true when the caller should return status
// immediately (an assumption conflicted).
func (s *Solver) nextAssumptionOrDecision(assumptions []Literal) (next Literal, hasNext bool, status Status, done bool) {
	for s.decisionLevel() < len(assumptions) {
		p := assumptions[s.decisionLevel()]
		switch s.LitValue(p) {
		case True:
			s.newDecisionLevel() // pseudo-decision: already satisfied
			continue
		case False:
			s.conflict = s.analyzeFinal(p.Opposite(), assumptions)
			return Literal(0), false, StatusUNSAT, true
		default:
			return p, true, StatusUnknown, false
		}
	}

	if s.propagator != nil {
		if lit := s.cbDecide(); lit != 0 {
			l := signedToLiteral(lit)
			s.observe(l.VarID())
			return l, true, StatusUnknown, false
		}
	}

	v, ok := s.pickBranchVar()
	if !ok {
		return Literal(0), false, StatusUnknown, false
	}
	return s.pickBranchLiteral(v), true, StatusUnknown, false
}

func (s *Solver) cbDecide() int32 {
	s.inCbDecide = true
	lit := s.propagator.CbDecide()
	s.inCbDecide = false
	if s.forcedBacktrack {
		s.forcedBacktrack = false
		s.cancelUntil(s.forcedBacktrackLevel)
	}
	return lit
}

// checkFoundModel asks a connected propagator to validate the complete
// assignment before committing to SAT (spec §4.9 cb_check_found_model).
func (s *Solver) checkFoundModel() bool {
	if s.propagator == nil {
		return true
	}
	model := make([]bool, s.NumVariables())
	for v := range model {
		model[v] = s.VarValue(v) == True
	}
	return s.propagator.CbCheckFoundModel(model)
}

// pickBranchVar implements spec §4.6: with probability random_var_freq,
// pick a uniformly random decision-eligible unassigned variable; otherwise
// pop the VSIDS heap until an eligible unassigned variable turns up.
func (s *Solver) pickBranchVar() (int, bool) {
	n := s.NumVariables()
	if n == 0 {
		return 0, false
	}

	eligible := func(v int) bool {
		return !s.released[v] && s.VarValue(v) == Unknown
	}

	if s.opts.RandomVarFreq > 0 && s.rng.float64() < s.opts.RandomVarFreq {
		for tries := 0; tries < n*4; tries++ {
			v := s.rng.intn(n)
			if eligible(v) {
				return v, true
			}
		}
	}

	return s.order.popEligible(eligible)
}

// pickBranchLiteral applies spec §4.6's polarity selection.
func (s *Solver) pickBranchLiteral(v int) Literal {
	var pol LBool
	if s.opts.RndPol {
		pol = Lift(s.rng.float64() < 0.5)
	} else {
		pol = s.order.polarity(v)
	}
	if pol == True {
		return PositiveLiteral(v)
	}
	return NegativeLiteral(v)
}

// SetPolarity fixes v's user-preferred polarity (spec's user_pol[v]).
func (s *Solver) SetPolarity(v int, pol LBool) { s.order.SetPolarity(v, pol) }

// propagate implements spec §4.3: drain the propagation queue, updating
// watch lists, until either a conflict is found or the queue empties.
func (s *Solver) propagate() (conflict CRef, nProps int64) {
	for s.propQueue.Size() > 0 {
		l := s.propQueue.Pop()
		nProps++

		s.tmpWatchers = append(s.tmpWatchers[:0], s.watches.take(l)...)

		for i := 0; i < len(s.tmpWatchers); i++ {
			w := s.tmpWatchers[i]
			if s.arena.Clause(w.clause).deleted {
				continue
			}
			if s.LitValue(w.guard) == True {
				s.watches.push(l, w)
				continue
			}
			if propagateClause(s, w.clause, l) {
				continue
			}

			s.watches.appendRemaining(l, s.tmpWatchers[i+1:])
			s.propQueue.Clear()
			return w.clause, nProps
		}
	}
	return CRefUndef, nProps
}

// computeLBD computes the literal block distance of a learnt clause: the
// number of distinct decision levels among its literals. The value is
// stored on the clause and fed into lbdEMA purely as search-health
// instrumentation; reduceDB does not consult it.
func (s *Solver) computeLBD(lits []Literal) int {
	seen := map[int]struct{}{}
	for _, l := range lits {
		seen[s.vardata[l.VarID()].level] = struct{}{}
	}
	n := len(seen)
	s.lbdEMA.Add(float64(n))
	return n
}

func (s *Solver) saveModel() {
	model := make([]bool, s.NumVariables())
	for v := range model {
		model[v] = s.VarValue(v) == True
	}
	s.model = model
}
