package sat

import (
	"github.com/rhartert/yagh"
)

// phaseSavingMode mirrors spec's phase_saving ∈ {0,1,2}: 0 never records a
// saved phase (branch literals always use the default/user polarity), 1
// records a phase only the first time a variable is unassigned after being
// set, and 2 records the phase of every variable on every backtrack (full
// saving, the teacher's only mode).
type phaseSavingMode int

const (
	PhaseSavingNone    phaseSavingMode = 0
	PhaseSavingLimited phaseSavingMode = 1
	PhaseSavingFull    phaseSavingMode = 2
)

// VarOrder maintains the VSIDS activity heap used to pick the next decision
// variable. The heap is backed by yagh.IntMap, a binary heap keyed by
// negated activity so that Pop always returns the highest-activity
// candidate; entries are inserted lazily (AddVar) and reinserted only when
// a variable becomes unassigned again (Reinsert).
type VarOrder struct {
	order *yagh.IntMap[float64]

	scores     []float64 // in [0, 1e100)
	scoreInc   float64   // in (0, 1e100)
	scoreDecay float64   // in (0, 1]

	phases      []LBool
	userPol     []LBool
	phaseSaving phaseSavingMode
}

// NewVarOrder returns a new, empty VarOrder with the given decay and
// phase-saving policy.
func NewVarOrder(decay float64, phaseSaving phaseSavingMode) *VarOrder {
	return &VarOrder{
		order:       yagh.New[float64](0),
		scoreInc:    1,
		scoreDecay:  decay,
		phaseSaving: phaseSaving,
	}
}

// AddVar adds a new decision-eligible variable with the given initial
// activity (rnd_init_act lets the caller randomize this rather than always
// starting at zero, per spec's option of the same name).
func (vo *VarOrder) AddVar(initScore float64) int {
	varID := len(vo.phases)

	vo.scores = append(vo.scores, initScore)
	vo.phases = append(vo.phases, Unknown)
	vo.userPol = append(vo.userPol, Unknown)

	vo.order.GrowBy(1)
	vo.order.Put(varID, -initScore)
	return varID
}

// Contains reports whether v is currently a pop candidate in the heap.
func (vo *VarOrder) Contains(v int) bool {
	return vo.order.Contains(v)
}

// Reinsert adds variable v back to the set of pop candidates. Must be
// called when v becomes unassigned (e.g. on backtrack), with val set to
// the value v held just before being undone, so its phase can be saved.
func (vo *VarOrder) Reinsert(v int, val LBool) {
	switch vo.phaseSaving {
	case PhaseSavingFull:
		vo.phases[v] = val
	case PhaseSavingLimited:
		if vo.phases[v] == Unknown {
			vo.phases[v] = val
		}
	}
	vo.order.Put(v, -vo.scores[v])
}

// SetPolarity fixes v's preferred decision polarity regardless of its
// saved phase, implementing spec's user_pol[v].
func (vo *VarOrder) SetPolarity(v int, pol LBool) {
	vo.userPol[v] = pol
}

// DecayScores amortizes the per-conflict var_decay multiplication by
// growing the shared increment instead of scaling every score.
func (vo *VarOrder) DecayScores() {
	vo.scoreInc /= vo.scoreDecay
	if vo.scoreInc > 1e100 {
		vo.rescaleScoresAndIncrement()
	}
}

// BumpScore increases the activity of v, rescaling every score if any
// would cross the 1e100 threshold.
func (vo *VarOrder) BumpScore(v int) {
	newScore := vo.scores[v] + vo.scoreInc
	vo.scores[v] = newScore
	if vo.order.Contains(v) {
		vo.order.Put(v, -newScore)
	}
	if newScore > 1e100 {
		vo.rescaleScoresAndIncrement()
	}
}

func (vo *VarOrder) rescaleScoresAndIncrement() {
	vo.scoreInc *= 1e-100
	for v, sc := range vo.scores {
		newScore := sc * 1e-100
		vo.scores[v] = newScore
		if vo.order.Contains(v) {
			vo.order.Put(v, -newScore)
		}
	}
}

// popEligible pops the heap until it finds a variable accepted by
// eligible, discarding stale (already-assigned or no-longer-candidate)
// entries along the way. ok is false once the heap is exhausted, meaning
// no decision is possible (spec: "formula is SAT modulo assumptions").
func (vo *VarOrder) popEligible(eligible func(v int) bool) (v int, ok bool) {
	for {
		entry, hasEntry := vo.order.Pop()
		if !hasEntry {
			return 0, false
		}
		if eligible(entry.Elem) {
			return entry.Elem, true
		}
	}
}

// polarity returns the branch polarity for v: user_pol if set, else the
// saved phase if any, else the default of true (positive), per spec §4.6.
func (vo *VarOrder) polarity(v int) LBool {
	if vo.userPol[v] != Unknown {
		return vo.userPol[v]
	}
	if vo.phases[v] != Unknown {
		return vo.phases[v]
	}
	return True
}
