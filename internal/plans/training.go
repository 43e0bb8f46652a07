package plans

// The workout state machine. All transitions validate before mutating, so a
// failed call leaves the record untouched.

// StartWorkout moves inactive -> active and sizes the completed-set bitmap
// to the current day. Fails with ErrInvalidState from any other phase and
// with ErrNoActivePlan when the plan or the current day is empty.
func (s *Store) StartWorkout(username string) error {
	return s.withUser(username, func(u *User) error {
		if u.State.Phase != PhaseInactive {
			return ErrInvalidState
		}

		day, err := currentDay(u)
		if err != nil {
			return err
		}
		if len(day.WorkoutIDs) == 0 {
			return ErrNoActivePlan
		}

		u.State = State{Phase: PhaseActive}
		u.CompletedSets = make([]bool, len(day.WorkoutIDs))
		return nil
	})
}

// SelectWorkout moves active -> mid_set(slot). The completed bitmap is left
// alone, so several slots can be trained within one started day.
func (s *Store) SelectWorkout(username string, slot int) error {
	return s.withUser(username, func(u *User) error {
		if u.State.Phase != PhaseActive {
			return ErrInvalidState
		}

		day, err := currentDay(u)
		if err != nil {
			return err
		}
		if slot < 0 || slot >= len(day.WorkoutIDs) {
			return ErrSlotOutOfRange
		}

		u.State = State{Phase: PhaseMidSet, Slot: slot}
		return nil
	})
}

// CompleteSet runs the progression heuristic on the workout at the selected
// slot, persists the adjusted prescription, marks the slot completed and
// returns to active. The bulk/cut flag comes from the user record.
func (s *Store) CompleteSet(username string, difficulty int) (Workout, error) {
	var adjusted Workout
	err := s.withUser(username, func(u *User) error {
		if u.State.Phase != PhaseMidSet {
			return ErrInvalidState
		}
		if difficulty < MinDifficulty || difficulty > MaxDifficulty {
			return ErrDifficultyOutOfRange
		}

		day, err := currentDay(u)
		if err != nil {
			return err
		}

		slot := u.State.Slot
		workout, ok := u.Workouts[day.WorkoutIDs[slot]]
		if !ok {
			return ErrWorkoutNotFound
		}

		adjusted = Adjust(workout, difficulty, u.Bulking)
		u.Workouts[adjusted.ID] = adjusted
		u.CompletedSets[slot] = true
		u.State = State{Phase: PhaseActive}
		return nil
	})
	return adjusted, err
}

// FinishWorkout moves active -> inactive, ending the training session and
// making the day startable again.
func (s *Store) FinishWorkout(username string) error {
	return s.withUser(username, func(u *User) error {
		if u.State.Phase != PhaseActive {
			return ErrInvalidState
		}

		u.State = State{Phase: PhaseInactive}
		u.CompletedSets = nil
		return nil
	})
}

// LoadState assembles the phase-dependent client payload: plan inventory
// when not mid-set, completed bitmap when active, selected workout only
// when mid-set.
func (s *Store) LoadState(username string) (StateSnapshot, error) {
	var snapshot StateSnapshot
	err := s.withUser(username, func(u *User) error {
		snapshot = StateSnapshot{
			State:      u.State,
			Bulking:    u.Bulking,
			CurrentDay: u.CurrentDay,
		}

		switch u.State.Phase {
		case PhaseInactive, PhaseActive:
			snapshot.Plan = append([]Day(nil), u.Plan...)
			snapshot.Workouts = make(map[int]Workout, len(u.Workouts))
			for id, w := range u.Workouts {
				snapshot.Workouts[id] = cloneWorkout(w)
			}
			if u.State.Phase == PhaseActive {
				snapshot.CompletedSets = append([]bool(nil), u.CompletedSets...)
			}
		case PhaseMidSet:
			day, err := currentDay(u)
			if err != nil {
				return err
			}
			workout, ok := u.Workouts[day.WorkoutIDs[u.State.Slot]]
			if !ok {
				return ErrWorkoutNotFound
			}
			workout = cloneWorkout(workout)
			snapshot.Workout = &workout
		}
		return nil
	})
	return snapshot, err
}

func cloneWorkout(w Workout) Workout {
	w.Sets = append([]Set(nil), w.Sets...)
	return w
}
