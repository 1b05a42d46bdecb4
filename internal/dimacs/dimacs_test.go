package dimacs

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/upsat/upsat/internal/sat"
)

// fakeSolver is a minimal SATSolver recording what Read fed it, so the
// reader can be tested without pulling in the full CDCL engine.
type fakeSolver struct {
	numVars int
	clauses [][]sat.Literal
}

func (f *fakeSolver) NewVar() int {
	f.numVars++
	return f.numVars - 1
}

func (f *fakeSolver) AddClause(lits []sat.Literal) (bool, error) {
	clause := make([]sat.Literal, len(lits))
	copy(clause, lits)
	f.clauses = append(f.clauses, clause)
	return true, nil
}

var wantClauses = [][]sat.Literal{
	{0, 2, 4},
	{0, 2, 5},
	{0, 3, 4},
	{1, 2, 4},
	{1, 3, 4},
	{0, 3, 5},
	{1, 2, 5},
	{1, 3, 5},
}

func TestRead_cnf(t *testing.T) {
	got := &fakeSolver{}
	nVars, nClauses, err := Read("testdata/test_instance.cnf", false, got)
	if err != nil {
		t.Fatalf("Read(): want no error, got %s", err)
	}
	if nVars != 3 || nClauses != 8 {
		t.Errorf("Read(): want (3, 8), got (%d, %d)", nVars, nClauses)
	}
	if got.numVars != 3 {
		t.Errorf("Read(): want 3 variables created, got %d", got.numVars)
	}
	if diff := cmp.Diff(wantClauses, got.clauses); diff != "" {
		t.Errorf("Read(): mismatch (-want +got):\n%s", diff)
	}
}

func TestRead_gzip(t *testing.T) {
	got := &fakeSolver{}
	_, _, err := Read("testdata/test_instance.cnf.gz", true, got)
	if err != nil {
		t.Fatalf("Read(): want no error, got %s", err)
	}
	if diff := cmp.Diff(wantClauses, got.clauses); diff != "" {
		t.Errorf("Read(): mismatch (-want +got):\n%s", diff)
	}
}

func TestRead_noFile(t *testing.T) {
	got := &fakeSolver{}
	_, _, err := Read("testdata/does_not_exist.cnf", false, got)
	if err == nil {
		t.Errorf("Read(): want error, got none")
	}
}

func TestRead_gzip_notGzipFile(t *testing.T) {
	got := &fakeSolver{}
	_, _, err := Read("testdata/test_instance.cnf", true, got)
	if err == nil {
		t.Errorf("Read(): want error, got none")
	}
}

// fakeWriteSolver implements Solver for exercising Write in isolation from
// the CDCL engine.
type fakeWriteSolver struct {
	ok       bool
	numVars  int
	clauses  [][]sat.Literal
	trail    []sat.Literal
}

func (f *fakeWriteSolver) Ok() bool                        { return f.ok }
func (f *fakeWriteSolver) NumVariables() int                { return f.numVars }
func (f *fakeWriteSolver) ExportClauses() [][]sat.Literal   { return f.clauses }
func (f *fakeWriteSolver) Trail() []sat.Literal             { return f.trail }

func TestWrite_unsat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, &fakeWriteSolver{ok: false}, nil); err != nil {
		t.Fatalf("Write(): want no error, got %s", err)
	}
	if got, want := buf.String(), "p cnf 0 1\n0\n"; got != want {
		t.Errorf("Write(): got %q, want %q", got, want)
	}
}

func TestWrite_ok(t *testing.T) {
	s := &fakeWriteSolver{
		ok:      true,
		numVars: 2,
		clauses: [][]sat.Literal{
			{sat.PositiveLiteral(0), sat.NegativeLiteral(1)},
		},
		trail: []sat.Literal{sat.PositiveLiteral(1)},
	}
	var buf bytes.Buffer
	if err := Write(&buf, s, []sat.Literal{sat.NegativeLiteral(0)}); err != nil {
		t.Fatalf("Write(): want no error, got %s", err)
	}
	want := "p cnf 2 3\n1 -2 0\n2 0\n-1 0\n"
	if got := buf.String(); got != want {
		t.Errorf("Write(): got %q, want %q", got, want)
	}
}

func TestParseModels(t *testing.T) {
	got, err := ParseModels("testdata/test_instance.cnf.models")
	if err != nil {
		t.Fatalf("ParseModels(): want no error, got %s", err)
	}
	want := [][]bool{
		{true, true, false},
		{false, true, true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseModels(): mismatch (-want +got):\n%s", diff)
	}
}
