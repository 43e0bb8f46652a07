package plans

// Difficulty rating scale reported by the user after a set.
const (
	MinDifficulty = -10
	MaxDifficulty = 10
)

// Adjust computes the next prescription for a workout from the reported
// difficulty and the bulk/cut flag. It is a pure function: the input workout
// is never mutated. A report of -1 leaves the prescription unchanged, higher
// values run the increase procedure, lower values the decrease procedure;
// bulking shifts the thresholds toward increasing load earlier.
//
// The caller is responsible for range-checking difficulty.
func Adjust(workout Workout, difficulty int, bulking bool) Workout {
	adjusted := cloneWorkout(workout)
	numSets := len(adjusted.Sets)
	if numSets == 0 {
		return adjusted
	}

	switch {
	case !bulking && difficulty >= 8:
		increase(&adjusted, 0.5, 1)
	case (bulking && difficulty >= 8) || (!bulking && difficulty >= 5):
		increase(&adjusted, 1, 1)
	case (bulking && difficulty >= 5) || (!bulking && difficulty >= 2):
		increase(&adjusted, 1, 2)
	case (bulking && difficulty >= 2) || (!bulking && difficulty >= 0):
		increase(&adjusted, 1, numSets)
	case bulking && difficulty >= 0:
		// flat raise: weight up across the board, reps untouched
		for i := range adjusted.Sets {
			adjusted.Sets[i].Weight += adjusted.Increment
		}
	case difficulty == -1:
		// mid-scale report, prescription stays as is
	case difficulty == -2:
		decrease(&adjusted, 1)
	case difficulty == -3:
		decrease(&adjusted, 2)
	default: // difficulty <= -4
		decrease(&adjusted, numSets)
	}

	return adjusted
}

// increase applies increaseOnce cycles times. Cycles compose: each one
// operates on the set list already modified by the previous.
func increase(w *Workout, step float64, cycles int) {
	for i := 0; i < cycles; i++ {
		increaseOnce(w, step)
	}
}

// increaseOnce finds the contiguous run of sets sharing the last set's
// (reps, weight) and adjusts the set right before that run. When the run
// covers the whole list (single-set workouts included) the last set is
// adjusted - no index wrapping. At the rep ceiling the set steps up in
// load instead: reps reset to MinReps and the weight grows by Increment.
func increaseOnce(w *Workout, step float64) {
	sets := w.Sets
	last := len(sets) - 1

	runStart := last
	for runStart > 0 && sets[runStart-1] == sets[last] {
		runStart--
	}

	target := runStart - 1
	if target < 0 {
		target = last
	}

	if sets[target].Reps >= w.MaxReps {
		sets[target].Reps = w.MinReps
		sets[target].Weight += w.Increment
		return
	}

	sets[target].Reps += step
	if sets[target].Reps > w.MaxReps {
		sets[target].Reps = w.MaxReps
	}
}

func decrease(w *Workout, cycles int) {
	for i := 0; i < cycles; i++ {
		decreaseOnce(w)
	}
}

// decreaseOnce mirrors increaseOnce from the front: the run shares the
// first set's (reps, weight) and the set right after it is adjusted, the
// first set when the run covers everything. At the rep floor the set steps
// down in load: reps reset to MaxReps, weight drops by Increment (clamped
// at zero). Outside the reset branch reps are clamped at MinReps.
func decreaseOnce(w *Workout) {
	sets := w.Sets
	first := sets[0]

	runEnd := 0
	for runEnd < len(sets)-1 && sets[runEnd+1] == first {
		runEnd++
	}

	target := runEnd + 1
	if target >= len(sets) {
		target = 0
	}

	if sets[target].Reps <= w.MinReps {
		sets[target].Reps = w.MaxReps
		sets[target].Weight -= w.Increment
		if sets[target].Weight < 0 {
			sets[target].Weight = 0
		}
		return
	}

	sets[target].Reps--
	if sets[target].Reps < w.MinReps {
		sets[target].Reps = w.MinReps
	}
}
