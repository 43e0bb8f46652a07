package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// one day, one workout: sets=[(8,60)], increment=5, maxReps=10, minReps=6
func newTestStoreWithPlan(t *testing.T) (*Store, string, int) {
	t.Helper()

	store, username := newTestStore(t)
	id, err := store.AddWorkout(username, benchWorkout(Set{Reps: 8, Weight: 60}))
	require.NoError(t, err)
	require.NoError(t, store.AddDay(username, Day{Name: "push", WorkoutIDs: []int{id}}))
	return store, username, id
}

func TestStartWorkout_noActivePlan(t *testing.T) {
	store, username := newTestStore(t)

	assert.ErrorIs(t, store.StartWorkout(username), ErrNoActivePlan)

	// a day without workouts is as useless as no day at all
	require.NoError(t, store.AddDay(username, Day{Name: "rest"}))
	assert.ErrorIs(t, store.StartWorkout(username), ErrNoActivePlan)
}

func TestStartWorkout_onlyFromInactive(t *testing.T) {
	store, username, _ := newTestStoreWithPlan(t)

	require.NoError(t, store.StartWorkout(username))
	assert.ErrorIs(t, store.StartWorkout(username), ErrInvalidState)
}

func TestTraining_fullCycle(t *testing.T) {
	store, username, workoutID := newTestStoreWithPlan(t)

	require.NoError(t, store.StartWorkout(username))

	snapshot, err := store.LoadState(username)
	require.NoError(t, err)
	assert.Equal(t, PhaseActive, snapshot.State.Phase)
	assert.Equal(t, []bool{false}, snapshot.CompletedSets)

	require.NoError(t, store.SelectWorkout(username, 0))

	// mid-set the payload narrows to the selected workout
	snapshot, err = store.LoadState(username)
	require.NoError(t, err)
	assert.Equal(t, PhaseMidSet, snapshot.State.Phase)
	assert.Equal(t, 0, snapshot.State.Slot)
	require.NotNil(t, snapshot.Workout)
	assert.Equal(t, workoutID, snapshot.Workout.ID)
	assert.Nil(t, snapshot.Plan)
	assert.Nil(t, snapshot.Workouts)

	adjusted, err := store.CompleteSet(username, 9)
	require.NoError(t, err)
	assert.Equal(t, []Set{{Reps: 8.5, Weight: 60}}, adjusted.Sets)

	snapshot, err = store.LoadState(username)
	require.NoError(t, err)
	assert.Equal(t, PhaseActive, snapshot.State.Phase)
	assert.Equal(t, []bool{true}, snapshot.CompletedSets)
	// the adjusted prescription was persisted
	assert.Equal(t, adjusted.Sets, snapshot.Workouts[workoutID].Sets)

	require.NoError(t, store.FinishWorkout(username))
	snapshot, err = store.LoadState(username)
	require.NoError(t, err)
	assert.Equal(t, PhaseInactive, snapshot.State.Phase)
	assert.Nil(t, snapshot.CompletedSets)
}

func TestCompleteSet_repeatUntilWeightRaise(t *testing.T) {
	store, username, _ := newTestStoreWithPlan(t)
	require.NoError(t, store.StartWorkout(username))

	var adjusted Workout
	for i := 0; i < 5; i++ {
		require.NoError(t, store.SelectWorkout(username, 0))
		var err error
		adjusted, err = store.CompleteSet(username, 9)
		require.NoError(t, err)
	}

	// reps walked 8.5, 9, 9.5, 10, then rolled over into a weight raise
	assert.Equal(t, []Set{{Reps: 6, Weight: 65}}, adjusted.Sets)
}

func TestCompleteSet_neutralDifficulty(t *testing.T) {
	store, username, workoutID := newTestStoreWithPlan(t)
	require.NoError(t, store.StartWorkout(username))
	require.NoError(t, store.SelectWorkout(username, 0))

	adjusted, err := store.CompleteSet(username, -1)
	require.NoError(t, err)
	assert.Equal(t, []Set{{Reps: 8, Weight: 60}}, adjusted.Sets)

	workout, err := store.Workout(username, workoutID)
	require.NoError(t, err)
	assert.Equal(t, []Set{{Reps: 8, Weight: 60}}, workout.Sets)
}

func TestCompleteSet_respectsBulking(t *testing.T) {
	store, username, _ := newTestStoreWithPlan(t)

	bulking, err := store.ToggleBulking(username)
	require.NoError(t, err)
	require.True(t, bulking)

	require.NoError(t, store.StartWorkout(username))
	require.NoError(t, store.SelectWorkout(username, 0))

	// bulking turns a 9 into a full rep step instead of a half one
	adjusted, err := store.CompleteSet(username, 9)
	require.NoError(t, err)
	assert.Equal(t, []Set{{Reps: 9, Weight: 60}}, adjusted.Sets)
}

func TestCompleteSet_invalid(t *testing.T) {
	store, username, workoutID := newTestStoreWithPlan(t)

	// not mid-set
	_, err := store.CompleteSet(username, 5)
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, store.StartWorkout(username))
	_, err = store.CompleteSet(username, 5)
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, store.SelectWorkout(username, 0))

	// out of range difficulty never mutates anything
	_, err = store.CompleteSet(username, 11)
	assert.ErrorIs(t, err, ErrDifficultyOutOfRange)
	_, err = store.CompleteSet(username, -11)
	assert.ErrorIs(t, err, ErrDifficultyOutOfRange)

	snapshot, err := store.LoadState(username)
	require.NoError(t, err)
	assert.Equal(t, PhaseMidSet, snapshot.State.Phase)
	require.NotNil(t, snapshot.Workout)
	assert.Equal(t, workoutID, snapshot.Workout.ID)
	assert.Equal(t, []Set{{Reps: 8, Weight: 60}}, snapshot.Workout.Sets)
}

func TestSelectWorkout_invalid(t *testing.T) {
	store, username, _ := newTestStoreWithPlan(t)

	assert.ErrorIs(t, store.SelectWorkout(username, 0), ErrInvalidState)

	require.NoError(t, store.StartWorkout(username))
	assert.ErrorIs(t, store.SelectWorkout(username, 1), ErrSlotOutOfRange)
	assert.ErrorIs(t, store.SelectWorkout(username, -1), ErrSlotOutOfRange)

	require.NoError(t, store.SelectWorkout(username, 0))
	// already mid-set
	assert.ErrorIs(t, store.SelectWorkout(username, 0), ErrInvalidState)
}

func TestFinishWorkout_onlyFromActive(t *testing.T) {
	store, username, _ := newTestStoreWithPlan(t)

	assert.ErrorIs(t, store.FinishWorkout(username), ErrInvalidState)

	require.NoError(t, store.StartWorkout(username))
	require.NoError(t, store.FinishWorkout(username))

	// the day can be started over
	require.NoError(t, store.StartWorkout(username))
}
