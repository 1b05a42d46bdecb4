package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/upsat/upsat/internal/dimacs"
	"github.com/upsat/upsat/internal/proof"
	"github.com/upsat/upsat/internal/sat"
)

var flagCPUProfile = flag.Bool(
	"cpuprof",
	false,
	"save pprof CPU profile in cpuprof",
)

var flagMemProfile = flag.Bool(
	"memprof",
	false,
	"save pprof memory profile in memprof",
)

var flagAssumptions = flag.String(
	"assumptions",
	"",
	"comma-separated signed DIMACS literals to assume, e.g. 1,-2,3",
)

var flagDRAT = flag.String(
	"drat",
	"",
	"if set, write a DRAT-style proof trace to this path",
)

var flagVerbose = flag.Bool(
	"verbose",
	false,
	"print the restart and iteration counts after solving",
)

func parseConfig() (*config, error) {
	flag.Parse()

	if flag.NArg() == 0 || flag.Arg(0) == "" {
		return nil, fmt.Errorf("missing instance file")
	}

	assumptions, err := parseAssumptions(*flagAssumptions)
	if err != nil {
		return nil, err
	}

	return &config{
		instanceFile: flag.Arg(0),
		memProfile:   *flagMemProfile,
		cpuProfile:   *flagCPUProfile,
		assumptions:  assumptions,
		dratPath:     *flagDRAT,
		verbose:      *flagVerbose,
	}, nil
}

func parseAssumptions(raw string) ([]sat.Literal, error) {
	if raw == "" {
		return nil, nil
	}
	fields := strings.Split(raw, ",")
	lits := make([]sat.Literal, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid assumption literal %q: %w", f, err)
		}
		if n == 0 {
			return nil, fmt.Errorf("assumption literal cannot be 0")
		}
		if n < 0 {
			lits = append(lits, sat.NegativeLiteral(-n-1))
		} else {
			lits = append(lits, sat.PositiveLiteral(n-1))
		}
	}
	return lits, nil
}

type config struct {
	instanceFile string
	memProfile   bool
	cpuProfile   bool
	assumptions  []sat.Literal
	dratPath     string
	verbose      bool
}

// exitCode follows the SAT-competition convention: 10 for SAT, 20 for
// UNSAT, 0 for UNKNOWN.
func exitCode(status sat.Status) int {
	switch status {
	case sat.StatusSAT:
		return 10
	case sat.StatusUNSAT:
		return 20
	default:
		return 0
	}
}

func run(cfg *config) (sat.Status, error) {
	s := sat.NewDefaultSolver()

	if cfg.dratPath != "" {
		f, err := os.Create(cfg.dratPath)
		if err != nil {
			return sat.StatusUnknown, fmt.Errorf("could not open proof file: %s", err)
		}
		w := proof.New(f)
		defer w.Close()
		s.SetProof(w)
	}

	gzipped := strings.HasSuffix(cfg.instanceFile, ".gz")
	nVars, nClauses, err := dimacs.Read(cfg.instanceFile, gzipped, s)
	if err != nil {
		return sat.StatusUnknown, fmt.Errorf("could not parse instance: %s", err)
	}

	fmt.Printf("c variables:  %d\n", nVars)
	fmt.Printf("c clauses:    %d\n", nClauses)

	t := time.Now()
	status := s.Solve(cfg.assumptions)
	elapsed := time.Since(t)

	if cfg.verbose {
		fmt.Printf("c restarts:   %d\n", s.TotalRestarts)
		fmt.Printf("c iterations: %d\n", s.TotalIterations)
	}

	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c conflicts:  %d (%.2f /sec)\n", s.TotalConflicts, float64(s.TotalConflicts)/elapsed.Seconds())
	fmt.Printf("c status:     %s\n", status.String())

	switch status {
	case sat.StatusSAT:
		model := s.Model()
		fmt.Print("v ")
		for v, val := range model {
			if val {
				fmt.Printf("%d ", v+1)
			} else {
				fmt.Printf("%d ", -(v + 1))
			}
		}
		fmt.Println("0")
	case sat.StatusUNSAT:
		if len(cfg.assumptions) > 0 {
			conflict := s.ConflictLiterals()
			fmt.Print("c failed assumptions: ")
			for _, l := range conflict {
				if l.IsPositive() {
					fmt.Printf("%d ", l.VarID()+1)
				} else {
					fmt.Printf("%d ", -(l.VarID() + 1))
				}
			}
			fmt.Println()
		}
	}

	return status, nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.cpuProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
	}

	status, err := run(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.cpuProfile {
		pprof.StopCPUProfile()
	}

	if cfg.memProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}

	os.Exit(exitCode(status))
}
