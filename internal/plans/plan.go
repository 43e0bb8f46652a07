package plans

// Set is a single target prescription entry: do Reps repetitions at Weight.
// Reps is fractional because the gentlest progression step is half a rep.
type Set struct {
	Reps   float64 `json:"reps"`
	Weight float64 `json:"weight"`
}

// Workout holds the target prescription for the next occurrence of an
// exercise. The progression heuristic cycles reps within [MinReps, MaxReps]
// and steps the weight by Increment when the ceiling is reached.
type Workout struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Sets      []Set   `json:"sets"`
	Increment float64 `json:"increment"`
	MaxReps   float64 `json:"maxReps"`
	MinReps   float64 `json:"minReps"`
}

// Day - a named, ordered list of workouts performed together in one session.
// Names are unique per user.
type Day struct {
	Name       string `json:"name"`
	WorkoutIDs []int  `json:"workoutIds"`
}

// Phase of the per-user workout state machine. Can be one of:
//   - inactive: no workout in progress
//   - active: a day has been started, no set in progress
//   - mid_set: a workout slot of the current day is being performed
type Phase string

const (
	PhaseInactive Phase = "inactive"
	PhaseActive   Phase = "active"
	PhaseMidSet   Phase = "mid_set"
)

func (p Phase) String() string {
	return string(p)
}

func (p Phase) IsValid() bool {
	switch p {
	case PhaseInactive, PhaseActive, PhaseMidSet:
		return true
	default:
		return false
	}
}

// State - current state machine value. Slot is meaningful in mid_set only
// and indexes into the current day's workout list.
type State struct {
	Phase Phase `json:"phase"`
	Slot  int   `json:"slot,omitempty"`
}

// User is the full per-user record: credentials, training plan inventory
// and the live workout state. It is also the snapshot wire format.
type User struct {
	Username      string          `json:"username"`
	PasswordHash  string          `json:"passwordHash"`
	State         State           `json:"state"`
	CompletedSets []bool          `json:"completedSets"`
	Bulking       bool            `json:"bulking"`
	CurrentDay    int             `json:"currentDay"`
	Plan          []Day           `json:"plan"`
	Workouts      map[int]Workout `json:"workouts"`
	NextWorkoutID int             `json:"nextWorkoutId"`
}

// StateSnapshot is the load-state payload. Fields are filled depending on
// the phase: the plan inventory when not mid-set, the completed bitmap when
// active, and only the selected workout when mid-set.
type StateSnapshot struct {
	State         State           `json:"state"`
	Bulking       bool            `json:"bulking"`
	CurrentDay    int             `json:"currentDay"`
	Plan          []Day           `json:"plan,omitempty"`
	Workouts      map[int]Workout `json:"workouts,omitempty"`
	CompletedSets []bool          `json:"completedSets,omitempty"`
	Workout       *Workout        `json:"workout,omitempty"`
}
