package sat

// EMA is an exponential moving average, kept from the teacher's
// sat/avg.go verbatim. It is used here purely as search-health
// instrumentation (a running average of learnt-clause LBD) rather than to
// drive restart timing: the luby/geometric schedule below remains the one
// spec's §4.7 names as the actual restart policy.
type EMA struct {
	decay float64
	value float64
	init  bool
}

func NewEMA(decay float64) EMA {
	return EMA{decay: decay}
}

func (ema *EMA) Add(x float64) {
	if !ema.init {
		ema.init = true
		ema.value = x
	} else {
		ema.value = ema.decay*ema.value + x*(1-ema.decay)
	}
}

func (ema *EMA) Val() float64 {
	return ema.value
}

// restartSchedule computes successive conflict budgets for the search
// driver's outer loop, per spec §4.7: either geometric growth
// (restart_first, multiplied by restart_inc after each restart) or the
// Luby sequence scaled by restart_first.
type restartSchedule struct {
	luby        bool
	first       int
	inc         float64
	restarts    int64
	geometric   float64
}

func newRestartSchedule(opts Options) *restartSchedule {
	return &restartSchedule{
		luby:      opts.LubyRestart,
		first:     opts.RestartFirst,
		inc:       opts.RestartInc,
		geometric: float64(opts.RestartFirst),
	}
}

// next returns the conflict budget for the upcoming restart round and
// advances the schedule.
func (r *restartSchedule) next() int {
	r.restarts++
	if r.luby {
		return int(float64(r.first) * luby(r.inc, r.restarts))
	}
	limit := r.geometric
	r.geometric *= r.inc
	return int(limit)
}

// luby computes the standard binary-reflected Luby sequence value for
// index i (1-based), scaled by y, as minisat-family solvers do.
func luby(y float64, i int64) float64 {
	i-- // the search below works on a 0-based index

	// Find the finite subsequence that contains index i, and the size of
	// that subsequence.
	var size int64 = 1
	var seq int64 = 0
	for size < i+1 {
		seq++
		size = 2*size + 1
	}
	for size-1 != i {
		size = (size - 1) / 2
		seq--
		i = i % size
	}
	return pow(y, float64(seq))
}

func pow(base float64, exp float64) float64 {
	result := 1.0
	n := int(exp)
	for ; n > 0; n-- {
		result *= base
	}
	return result
}
