package sat

// watcher is one entry in a literal's watch list: the clause to revisit
// when the watched literal becomes true, plus a cheap blocker literal that
// lets propagation skip loading the clause entirely when already satisfied.
type watcher struct {
	clause CRef
	guard  Literal
}

// watchLists holds, for every literal, the clauses that must be checked
// when that literal is assigned true. removeClause unwatches a clause
// eagerly, at deletion time, from both of its watch lists. A watcher whose
// clause is marked deleted in the arena is also tolerated: propagate skips
// and drops it, unwatch strips it, and relocate drops it after a
// GarbageCollect.
type watchLists struct {
	lists [][]watcher
}

func (w *watchLists) grow() {
	w.lists = append(w.lists, nil, nil) // one per literal of the new variable
}

// watch registers cr to be revisited when lit becomes true.
func (w *watchLists) watch(lit Literal, cr CRef, guard Literal) {
	w.lists[lit] = append(w.lists[lit], watcher{clause: cr, guard: guard})
}

// unwatch removes every watcher for cr from lit's list. It also strips any
// already-deleted entries it passes over, amortizing cleanup.
func (w *watchLists) unwatch(lit Literal, cr CRef, arena *Arena) {
	list := w.lists[lit]
	j := 0
	for i := 0; i < len(list); i++ {
		if arena.Clause(list[i].clause).deleted {
			continue
		}
		if list[i].clause == cr {
			continue // drop this one explicitly
		}
		list[j] = list[i]
		j++
	}
	w.lists[lit] = list[:j]
}

// take detaches lit's watch list for exclusive iteration, replacing it with
// an empty list that propagate repopulates as it decides which watchers to
// keep. This mirrors how propagation rebuilds the list in place while
// scanning it.
func (w *watchLists) take(lit Literal) []watcher {
	list := w.lists[lit]
	w.lists[lit] = nil
	return list
}

func (w *watchLists) push(lit Literal, wch watcher) {
	w.lists[lit] = append(w.lists[lit], wch)
}

func (w *watchLists) appendRemaining(lit Literal, rest []watcher) {
	w.lists[lit] = append(w.lists[lit], rest...)
}

// relocate rewrites every watcher's CRef after a GarbageCollect, dropping
// entries whose clause was collected.
func (w *watchLists) relocate(remap []CRef) {
	for lit, list := range w.lists {
		j := 0
		for _, wch := range list {
			if wch.clause == CRefUndef {
				continue
			}
			nr := remap[wch.clause]
			if nr == CRefUndef {
				continue // clause was reclaimed, drop the watcher
			}
			wch.clause = nr
			list[j] = wch
			j++
		}
		w.lists[lit] = list[:j]
	}
}
