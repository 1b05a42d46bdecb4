package sat

// Options bundles every tunable spec's external interface names (§6). All
// fields have the defaults minisat-family solvers ship with.
type Options struct {
	VarDecay       float64 // var_inc *= 1/VarDecay per conflict
	ClauseDecay    float64
	RandomVarFreq  float64 // probability of a uniformly random decision
	RandomSeed     float64
	LubyRestart    bool
	CCMinMode      int // 0: none, 1: local, 2: recursive
	PhaseSaving    int // 0, 1, 2 -- see phaseSavingMode
	RndPol         bool
	RndInitAct     bool
	GarbageFrac    float64
	MinLearntsLim  int
	RestartFirst   int
	RestartInc     float64
	LearntSizeFactor          float64
	LearntSizeInc             float64
	LearntSizeAdjustStartConfl int
	LearntSizeAdjustInc        float64
}

// DefaultOptions mirrors the constants minisat-family solvers converge on,
// as surfaced by the teacher's own DefaultOptions plus the fields the
// teacher never exposed.
var DefaultOptions = Options{
	VarDecay:      0.95,
	ClauseDecay:   0.999,
	RandomVarFreq: 0,
	RandomSeed:    91648253,
	LubyRestart:   true,
	CCMinMode:     2,
	PhaseSaving:   2,
	RndPol:        false,
	RndInitAct:    false,
	GarbageFrac:   0.20,
	MinLearntsLim: 0,
	RestartFirst:  100,
	RestartInc:    2.0,
	LearntSizeFactor:           1.0 / 3.0,
	LearntSizeInc:              1.1,
	LearntSizeAdjustStartConfl: 100,
	LearntSizeAdjustInc:        1.5,
}
