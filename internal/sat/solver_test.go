package sat_test

// This suite evaluates the solver's correctness by checking that it finds
// the exact set of models for every instance under testdata (see
// listTestCases): instances with known solutions, pre-computed with
// trusted reference solvers such as MiniSAT and Glucose.
//
// Each test case is a pair of files: an "<name>.cnf" DIMACS instance and an
// "<name>.cnf.models" file listing one model per line (empty for UNSAT
// instances), using the instance's own literal numbering.

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/upsat/upsat/internal/dimacs"
	"github.com/upsat/upsat/internal/sat"
)

var testdataDir = "testdata"

type testCase struct {
	instanceName string
	instanceFile string
	modelsFile   string
}

func listTestCases(dir string) ([]testCase, error) {
	var testCases []testCase
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".cnf") {
			return nil
		}
		testCases = append(testCases, testCase{
			instanceName: d.Name(),
			instanceFile: path,
			modelsFile:   path + ".models",
		})
		return nil
	})
	return testCases, err
}

func toString(model []bool) string {
	s := make([]byte, 0, len(model))
	for _, b := range model {
		if b {
			s = append(s, 1)
		} else {
			s = append(s, 0)
		}
	}
	return string(s)
}

func toSet(models [][]bool) map[string]struct{} {
	set := map[string]struct{}{}
	for _, m := range models {
		set[toString(m)] = struct{}{}
	}
	return set
}

// solveAll enumerates every model by repeatedly forbidding the last model
// found and re-solving, the standard all-SAT-via-blocking-clause loop.
func solveAll(t *testing.T, s *sat.Solver) [][]bool {
	t.Helper()
	var models [][]bool
	for s.Solve(nil) == sat.StatusSAT {
		model := s.Model()
		got := make([]bool, len(model))
		copy(got, model)
		models = append(models, got)

		blocking := make([]sat.Literal, len(model))
		for i, b := range model {
			if b {
				blocking[i] = sat.NegativeLiteral(i)
			} else {
				blocking[i] = sat.PositiveLiteral(i)
			}
		}
		if _, err := s.AddClause(blocking); err != nil {
			t.Fatalf("AddClause(): %s", err)
		}
	}
	return models
}

func TestSolveAll(t *testing.T) {
	testCases, err := listTestCases(testdataDir)
	if err != nil {
		t.Fatalf("listTestCases(): %s", err)
	}
	if len(testCases) == 0 {
		t.Fatal("no test cases found under testdata")
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.instanceName, func(t *testing.T) {
			t.Parallel()

			want, err := dimacs.ParseModels(tc.modelsFile)
			if err != nil {
				t.Fatalf("ParseModels(): %s", err)
			}

			s := sat.NewDefaultSolver()
			if _, _, err := dimacs.Read(tc.instanceFile, false, s); err != nil {
				t.Fatalf("Read(): %s", err)
			}

			got := solveAll(t, s)

			if diff := cmp.Diff(toSet(want), toSet(got)); diff != "" {
				t.Errorf("model set mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestSolveUnderAssumptions checks that assuming the first variable false
// (the negation of one literal of the unique model) drives the 2-variable
// instance UNSAT, and that
// the reported conflict is drawn from the assumptions themselves.
func TestSolveUnderAssumptions(t *testing.T) {
	s := sat.NewDefaultSolver()
	if _, _, err := dimacs.Read("testdata/sat_2var.cnf", false, s); err != nil {
		t.Fatalf("Read(): %s", err)
	}

	// The instance's only model has both variables true; assuming the
	// first one false must be unsatisfiable.
	assumptions := []sat.Literal{sat.NegativeLiteral(0)}
	status := s.Solve(assumptions)
	if status != sat.StatusUNSAT {
		t.Fatalf("Solve(): got %s, want UNSAT", status)
	}

	conflict := s.ConflictLiterals()
	if len(conflict) == 0 {
		t.Fatal("ConflictLiterals(): got none, want a non-empty assumption subset")
	}
	for _, l := range conflict {
		found := false
		for _, a := range assumptions {
			if l == a {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("ConflictLiterals(): literal %v not among assumptions", l)
		}
	}

	// A fresh Solve with no assumptions must still succeed: the conflicting
	// assumption alone must not have been permanently learnt as a
	// unit clause.
	if got := s.Solve(nil); got != sat.StatusSAT {
		t.Errorf("Solve(nil): got %s, want SAT", got)
	}
}
