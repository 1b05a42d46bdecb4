// Package ipasirup exposes the CDCL engine in internal/sat through a
// signed-integer IPASIR-UP-style facade: callers speak plain DIMACS
// variable/literal integers and never see a sat.Literal or a CRef.
//
// This mirrors the composition shape original_source/minisat/minisatup.h
// uses for MinisatUP::Solver: a thin wrapper holding a pointer to the
// real implementation, translating signed integers at the boundary.
package ipasirup

import (
	"os"

	"github.com/upsat/upsat/internal/dimacs"
	"github.com/upsat/upsat/internal/sat"
)

// Status mirrors sat.Status for callers that don't want to import
// internal/sat directly.
type Status int

const (
	StatusUnknown Status = iota
	StatusSAT
	StatusUNSAT
)

func fromInternal(s sat.Status) Status {
	switch s {
	case sat.StatusSAT:
		return StatusSAT
	case sat.StatusUNSAT:
		return StatusUNSAT
	default:
		return StatusUnknown
	}
}

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

// Solver is a facade over *sat.Solver using signed DIMACS integers
// (variable v >= 1, literal +v / -v) instead of the internal 0-based
// Literal encoding.
type Solver struct {
	core *sat.Solver
}

// New returns a facade wrapping a freshly constructed core solver with
// default options.
func New() *Solver {
	return &Solver{core: sat.NewDefaultSolver()}
}

// NewWithOptions returns a facade wrapping a core solver configured with
// opts.
func NewWithOptions(opts sat.Options) *Solver {
	return &Solver{core: sat.NewSolver(opts)}
}

func toLiteral(lit int32) sat.Literal {
	if lit < 0 {
		return sat.NegativeLiteral(int(-lit - 1))
	}
	return sat.PositiveLiteral(int(lit - 1))
}

func toSigned(l sat.Literal) int32 {
	v := int32(l.VarID()) + 1
	if !l.IsPositive() {
		return -v
	}
	return v
}

// NewVar allocates a fresh variable and returns its signed DIMACS id
// (always positive, starting at 1).
func (s *Solver) NewVar() int32 {
	return int32(s.core.NewVar()) + 1
}

// AddClause adds an original clause given as signed DIMACS literals. It
// returns false iff the formula is now trivially UNSAT.
func (s *Solver) AddClause(lits ...int32) bool {
	clause := make([]sat.Literal, len(lits))
	for i, lit := range lits {
		clause[i] = toLiteral(lit)
	}
	ok, err := s.core.AddClause(clause)
	if err != nil {
		panic(err)
	}
	return ok
}

// Solve runs the search under the given signed-literal assumptions.
func (s *Solver) Solve(assumps ...int32) Status {
	asm := make([]sat.Literal, len(assumps))
	for i, a := range assumps {
		asm[i] = toLiteral(a)
	}
	return fromInternal(s.core.Solve(asm))
}

// Model returns the satisfying assignment from the most recent successful
// Solve, indexed by 0-based variable id.
func (s *Solver) Model() []bool {
	return s.core.Model()
}

// Value reports the most recent model's value for the signed literal lit.
func (s *Solver) Value(lit int32) bool {
	model := s.core.Model()
	v := lit
	if v < 0 {
		v = -v
	}
	val := model[v-1]
	if lit < 0 {
		return !val
	}
	return val
}

// FailedAssumptions returns the signed-literal subset of the most recent
// UNSAT-under-assumptions Solve's assumptions that caused the conflict.
func (s *Solver) FailedAssumptions() []int32 {
	conflict := s.core.ConflictLiterals()
	out := make([]int32, len(conflict))
	for i, l := range conflict {
		out[i] = toSigned(l)
	}
	return out
}

// SetPropagator connects an external propagator (spec §4.9). Passing nil
// disconnects it.
func (s *Solver) SetPropagator(p sat.ExternalPropagator) {
	s.core.SetPropagator(p)
}

// AddObservedVar freezes v (signed, positive DIMACS id) against
// simplification so an external propagator is notified of its
// assignments.
func (s *Solver) AddObservedVar(v int32) {
	s.core.ObserveVar(int(v - 1))
}

// RemoveObservedVar releases v from the observed set.
func (s *Solver) RemoveObservedVar(v int32) {
	s.core.Unobserve(int(v - 1))
}

// SetConflictBudget and SetPropagationBudget bound the next Solve call(s);
// -1 disables the bound.
func (s *Solver) SetConflictBudget(n int64)    { s.core.SetConflictBudget(n) }
func (s *Solver) SetPropagationBudget(n int64) { s.core.SetPropagationBudget(n) }

// Interrupt asks the current or next Solve to stop early, returning
// Unknown. Safe to call from any goroutine.
func (s *Solver) Interrupt() { s.core.Interrupt() }

// SetProof attaches a DRAT-style proof trace writer.
func (s *Solver) SetProof(w sat.ProofWriter) { s.core.SetProof(w) }

// Core exposes the wrapped *sat.Solver for callers that need lower-level
// access (e.g. search statistics such as TotalConflicts).
func (s *Solver) Core() *sat.Solver { return s.core }

// ToDIMACS writes the current formula (plus assumps as unit clauses) to
// path in DIMACS CNF form, per spec §6's to_dimacs contract.
func (s *Solver) ToDIMACS(path string, assumps ...int32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	asm := make([]sat.Literal, len(assumps))
	for i, a := range assumps {
		asm[i] = toLiteral(a)
	}
	return dimacs.Write(f, s.core, asm)
}
