package plans

import (
	"sync"
)

// userRecord pairs the user data with its own lock: every state-changing
// operation for one user runs inside a single critical section, while
// operations for different users proceed in parallel.
type userRecord struct {
	mu sync.Mutex
	User
}

// Store keeps all user records in memory. Durability is an external
// concern, see snapshot.go.
type Store struct {
	mu    sync.RWMutex // guards map membership only
	users map[string]*userRecord
}

func NewStore() *Store {
	return &Store{
		users: map[string]*userRecord{},
	}
}

// Register creates a fresh user record in the initial (inactive) state.
func (s *Store) Register(username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return ErrUserExists
	}

	s.users[username] = &userRecord{
		User: User{
			Username:      username,
			PasswordHash:  passwordHash,
			State:         State{Phase: PhaseInactive},
			Workouts:      map[int]Workout{},
			NextWorkoutID: 1,
		},
	}
	return nil
}

func (s *Store) PasswordHash(username string) (string, error) {
	rec, err := s.record(username)
	if err != nil {
		return "", err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.PasswordHash, nil
}

func (s *Store) record(username string) (*userRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return rec, nil
}

// withUser runs fn under the user's exclusive lock.
func (s *Store) withUser(username string, fn func(u *User) error) error {
	rec, err := s.record(username)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return fn(&rec.User)
}

func currentDay(u *User) (Day, error) {
	if len(u.Plan) == 0 {
		return Day{}, ErrNoActivePlan
	}
	return u.Plan[u.CurrentDay], nil
}

// CurrentDay returns the day the user is currently on.
func (s *Store) CurrentDay(username string) (Day, error) {
	var day Day
	err := s.withUser(username, func(u *User) error {
		var err error
		day, err = currentDay(u)
		return err
	})
	return day, err
}

// AddWorkout stores the workout under a server-assigned id and returns it.
// The id on the input is ignored: assignment is authoritative here, ids are
// monotonically increasing and never reused, even after deletion.
func (s *Store) AddWorkout(username string, workout Workout) (int, error) {
	var id int
	err := s.withUser(username, func(u *User) error {
		id = u.NextWorkoutID
		u.NextWorkoutID++
		workout.ID = id
		u.Workouts[id] = cloneWorkout(workout)
		return nil
	})
	return id, err
}

func (s *Store) Workout(username string, id int) (Workout, error) {
	var workout Workout
	err := s.withUser(username, func(u *User) error {
		w, ok := u.Workouts[id]
		if !ok {
			return ErrWorkoutNotFound
		}
		workout = cloneWorkout(w)
		return nil
	})
	return workout, err
}

// ReplaceWorkout swaps the full workout under an existing id.
func (s *Store) ReplaceWorkout(username string, id int, workout Workout) error {
	return s.withUser(username, func(u *User) error {
		if _, ok := u.Workouts[id]; !ok {
			return ErrWorkoutNotFound
		}
		workout.ID = id
		u.Workouts[id] = cloneWorkout(workout)
		return nil
	})
}

// DeleteWorkout is idempotent: deleting an absent id is a successful no-op.
func (s *Store) DeleteWorkout(username string, id int) error {
	return s.withUser(username, func(u *User) error {
		delete(u.Workouts, id)
		return nil
	})
}

func (s *Store) AddDay(username string, day Day) error {
	return s.withUser(username, func(u *User) error {
		for i := range u.Plan {
			if u.Plan[i].Name == day.Name {
				return ErrDayExists
			}
		}
		u.Plan = append(u.Plan, day)
		return nil
	})
}

// EditDay replaces the day currently called name. Renames are allowed as
// long as the new name does not collide with another day. The current day
// cannot be edited while a training session is in progress: the completed
// bitmap and the mid-set slot are sized to its workout list.
func (s *Store) EditDay(username, name string, day Day) error {
	return s.withUser(username, func(u *User) error {
		dayIdx := -1
		for i := range u.Plan {
			if u.Plan[i].Name == name {
				dayIdx = i
			} else if u.Plan[i].Name == day.Name {
				return ErrDayExists
			}
		}
		if dayIdx == -1 {
			return ErrDayNotFound
		}
		if u.State.Phase != PhaseInactive && dayIdx == u.CurrentDay {
			return ErrInvalidState
		}
		u.Plan[dayIdx] = day
		return nil
	})
}

// DeleteDay is idempotent. Deleting the current day is refused while a
// training session is in progress; removing an earlier day shifts the
// current index along so it keeps naming the same day.
func (s *Store) DeleteDay(username, name string) error {
	return s.withUser(username, func(u *User) error {
		for i := range u.Plan {
			if u.Plan[i].Name != name {
				continue
			}
			if u.State.Phase != PhaseInactive && i == u.CurrentDay {
				return ErrInvalidState
			}
			u.Plan = append(u.Plan[:i], u.Plan[i+1:]...)
			if i < u.CurrentDay {
				u.CurrentDay--
			}
			break
		}
		if u.CurrentDay >= len(u.Plan) {
			u.CurrentDay = 0
		}
		return nil
	})
}

// SetCurrentDay moves the user to another day of the plan, legal only
// outside a training session.
func (s *Store) SetCurrentDay(username string, index int) error {
	return s.withUser(username, func(u *User) error {
		if u.State.Phase != PhaseInactive {
			return ErrInvalidState
		}
		if index < 0 || index >= len(u.Plan) {
			return ErrDayNotFound
		}
		u.CurrentDay = index
		return nil
	})
}

// ToggleBulking flips the bulk/cut flag and returns the new value.
func (s *Store) ToggleBulking(username string) (bool, error) {
	var bulking bool
	err := s.withUser(username, func(u *User) error {
		u.Bulking = !u.Bulking
		bulking = u.Bulking
		return nil
	})
	return bulking, err
}
