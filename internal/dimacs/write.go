package dimacs

import (
	"bufio"
	"fmt"
	"io"

	"github.com/upsat/upsat/internal/sat"
)

// Solver is the subset of *sat.Solver the DIMACS writer needs.
type Solver interface {
	Ok() bool
	NumVariables() int
	ExportClauses() [][]sat.Literal
	Trail() []sat.Literal
}

// Write implements the to_dimacs contract (spec §6): if the formula is
// already known UNSAT, it emits the degenerate "p cnf 0 1\n0\n" instance.
// Otherwise it gathers the non-root-satisfied constraint clauses (with
// root-falsified literals stripped), a unit clause per root-level trail
// literal, and a unit clause per assumption, renumbers variables densely
// starting at 1, and writes the resulting CNF.
func Write(w io.Writer, s Solver, assumptions []sat.Literal) error {
	bw := bufio.NewWriter(w)

	if !s.Ok() {
		if _, err := fmt.Fprint(bw, "p cnf 0 1\n0\n"); err != nil {
			return err
		}
		return bw.Flush()
	}

	clauses := s.ExportClauses()
	for _, l := range s.Trail() {
		clauses = append(clauses, []sat.Literal{l})
	}
	for _, l := range assumptions {
		clauses = append(clauses, []sat.Literal{l})
	}

	// Renumber variables densely, in first-seen order, starting at 1.
	renumber := make(map[int]int)
	nextID := 1
	for _, clause := range clauses {
		for _, l := range clause {
			v := l.VarID()
			if _, ok := renumber[v]; !ok {
				renumber[v] = nextID
				nextID++
			}
		}
	}

	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", nextID-1, len(clauses)); err != nil {
		return err
	}
	for _, clause := range clauses {
		for _, l := range clause {
			signed := renumber[l.VarID()]
			if !l.IsPositive() {
				signed = -signed
			}
			if _, err := fmt.Fprintf(bw, "%d ", signed); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(bw, "0\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}
