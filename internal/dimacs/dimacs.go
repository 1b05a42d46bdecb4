// Package dimacs reads and writes DIMACS CNF instances against a
// SATSolver. See models.go for the ".cnf.models" golden-file reader used
// by the internal/sat test harness.
package dimacs

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/rhartert/dimacs"

	"github.com/upsat/upsat/internal/sat"
)

// SATSolver is the subset of *sat.Solver the DIMACS reader needs.
type SATSolver interface {
	NewVar() int
	AddClause(lits []sat.Literal) (bool, error)
}

func openReader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// Read parses the DIMACS CNF file at filename and loads its formula into
// solver, returning the declared variable and clause counts.
func Read(filename string, gzipped bool, solver SATSolver) (nVars, nClauses int, err error) {
	r, err := openReader(filename, gzipped)
	if err != nil {
		return 0, 0, fmt.Errorf("dimacs: opening %q: %w", filename, err)
	}
	defer r.Close()

	b := &builder{solver: solver}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return 0, 0, err
	}
	return b.nVars, b.nClauses, nil
}

// builder adapts a SATSolver to the github.com/rhartert/dimacs builder
// interface.
type builder struct {
	solver   SATSolver
	nVars    int
	nClauses int
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("dimacs: unsupported problem type %q", problem)
	}
	b.nVars = nVars
	b.nClauses = nClauses
	for i := 0; i < nVars; i++ {
		b.solver.NewVar()
	}
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	clause := make([]sat.Literal, len(tmpClause))
	for i, l := range tmpClause {
		if l < 0 {
			clause[i] = sat.NegativeLiteral(-l - 1)
		} else {
			clause[i] = sat.PositiveLiteral(l - 1)
		}
	}
	_, err := b.solver.AddClause(clause)
	return err
}

func (b *builder) Comment(_ string) error {
	return nil
}
