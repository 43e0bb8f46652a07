package plans

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type planStore interface {
	AddWorkout(username string, workout Workout) (int, error)
	Workout(username string, id int) (Workout, error)
	ReplaceWorkout(username string, id int, workout Workout) error
	DeleteWorkout(username string, id int) error
	AddDay(username string, day Day) error
	EditDay(username, name string, day Day) error
	DeleteDay(username, name string) error
	SetCurrentDay(username string, index int) error
	ToggleBulking(username string) (bool, error)
	StartWorkout(username string) error
	SelectWorkout(username string, slot int) error
	CompleteSet(username string, difficulty int) (Workout, error)
	FinishWorkout(username string) error
	LoadState(username string) (StateSnapshot, error)
}

type AddWorkoutResponse struct {
	ID int `json:"id"`
}

type BulkingResponse struct {
	Bulking bool `json:"bulking"`
}

type CompleteSetRequest struct {
	Difficulty int `json:"difficulty"`
}

type Handler struct {
	store   planStore
	metrics *metrics.Manager
}

func NewHandler(store planStore, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		store:   store,
		metrics: metricsManager,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/plan/workouts", h.handleAddWorkout).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/plan/workouts/{id}", h.handleGetWorkout).Methods("GET", "OPTIONS").Name("get-workout")
	r.HandleFunc("/plan/workouts/{id}", h.handleReplaceWorkout).Methods("PUT", "OPTIONS").Name("update-workout")
	r.HandleFunc("/plan/workouts/{id}", h.handleDeleteWorkout).Methods("DELETE", "OPTIONS").Name("remove-workout")
	r.HandleFunc("/plan/days", h.handleAddDay).Methods("POST", "OPTIONS").Name("new-day")
	r.HandleFunc("/plan/days/{name}", h.handleEditDay).Methods("PUT", "OPTIONS").Name("update-day")
	r.HandleFunc("/plan/days/{name}", h.handleDeleteDay).Methods("DELETE", "OPTIONS").Name("remove-day")
	r.HandleFunc("/plan/day/{index}", h.handleSetCurrentDay).Methods("PUT", "OPTIONS").Name("set-current-day")
	r.HandleFunc("/plan/bulking", h.handleToggleBulking).Methods("PUT", "OPTIONS").Name("toggle-bulking")

	r.HandleFunc("/training/start", h.handleStartWorkout).Methods("POST", "OPTIONS").Name("start-workout")
	r.HandleFunc("/training/select/{slot}", h.handleSelectWorkout).Methods("POST", "OPTIONS").Name("select-workout")
	r.HandleFunc("/training/set", h.handleCompleteSet).Methods("POST", "OPTIONS").Name("complete-set")
	r.HandleFunc("/training/finish", h.handleFinishWorkout).Methods("POST", "OPTIONS").Name("finish-workout")
	r.HandleFunc("/training/state", h.handleLoadState).Methods("GET", "OPTIONS").Name("load-state")
}

// username comes from the auth middleware; a request without it slipped
// past the middleware and is refused.
func username(w http.ResponseWriter, r *http.Request) (string, bool) {
	username, ok := pkg.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return "", false
	}
	return username, true
}

// writeDomainError maps store errors onto http statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrNoActivePlan):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrWorkoutNotFound),
		errors.Is(err, ErrDayNotFound),
		errors.Is(err, ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDifficultyOutOfRange),
		errors.Is(err, ErrSlotOutOfRange),
		errors.Is(err, ErrDayExists),
		errors.Is(err, ErrUserExists):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("plan store: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) handleAddWorkout(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.workout.new")
	defer span.End()

	user, ok := username(w, r)
	if !ok {
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var workout Workout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		log.Tracef("new workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	if workout.Name == "" {
		http.Error(w, "error, workout name empty", http.StatusBadRequest)
		return
	}

	id, err := h.store.AddWorkout(user, workout)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	respJson, err := json.Marshal(AddWorkoutResponse{ID: id})
	if err != nil {
		log.Errorf("failed to marshal new workout response: %s", err)
		http.Error(w, "error, failed to add new workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("new workout added for %s: %d [%s]", user, id, workout.Name)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

func (h *Handler) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.workout.get")
	defer span.End()

	user, ok := username(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	workout, err := h.store.Workout(user, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("failed to marshal workout: %s", err)
		http.Error(w, "failed to marshal workout", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJson, http.StatusOK)
}

func (h *Handler) handleReplaceWorkout(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.workout.update")
	defer span.End()

	user, ok := username(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var workout Workout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		log.Tracef("update workout, unmarshal json params: %s", err)
		http.Error(w, "update workout failed", http.StatusBadRequest)
		return
	}

	if err := h.store.ReplaceWorkout(user, id, workout); err != nil {
		writeDomainError(w, err)
		return
	}

	log.Debugf("workout updated for %s: %d [%s]", user, id, workout.Name)
	pkg.WriteTextResponseOK(w, "updated")
}

func (h *Handler) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.workout.delete")
	defer span.End()

	user, ok := username(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteWorkout(user, id); err != nil {
		writeDomainError(w, err)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func (h *Handler) handleAddDay(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.day.new")
	defer span.End()

	user, ok := username(w, r)
	if !ok {
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var day Day
	if err := json.NewDecoder(r.Body).Decode(&day); err != nil {
		log.Tracef("new day, unmarshal json params: %s", err)
		http.Error(w, "add day failed", http.StatusBadRequest)
		return
	}

	if day.Name == "" {
		http.Error(w, "error, day name empty", http.StatusBadRequest)
		return
	}

	if err := h.store.AddDay(user, day); err != nil {
		writeDomainError(w, err)
		return
	}

	log.Debugf("new day added for %s: [%s]", user, day.Name)
	pkg.WriteResponse(w, pkg.ContentType.Text, "added", http.StatusCreated)
}

func (h *Handler) handleEditDay(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.day.update")
	defer span.End()

	user, ok := username(w, r)
	if !ok {
		return
	}

	name := mux.Vars(r)["name"]

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var day Day
	if err := json.NewDecoder(r.Body).Decode(&day); err != nil {
		log.Tracef("update day, unmarshal json params: %s", err)
		http.Error(w, "update day failed", http.StatusBadRequest)
		return
	}

	if day.Name == "" {
		day.Name = name
	}

	if err := h.store.EditDay(user, name, day); err != nil {
		writeDomainError(w, err)
		return
	}

	pkg.WriteTextResponseOK(w, "updated")
}

func (h *Handler) handleDeleteDay(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.day.delete")
	defer span.End()

	user, ok := username(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteDay(user, mux.Vars(r)["name"]); err != nil {
		writeDomainError(w, err)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func (h *Handler) handleSetCurrentDay(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.day.setcurrent")
	defer span.End()

	user, ok := username(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "error, index NaN", http.StatusBadRequest)
		return
	}

	if err := h.store.SetCurrentDay(user, index); err != nil {
		writeDomainError(w, err)
		return
	}

	pkg.WriteTextResponseOK(w, "updated")
}

func (h *Handler) handleToggleBulking(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.bulking.toggle")
	defer span.End()

	user, ok := username(w, r)
	if !ok {
		return
	}

	bulking, err := h.store.ToggleBulking(user)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	respJson, err := json.Marshal(BulkingResponse{Bulking: bulking})
	if err != nil {
		log.Errorf("failed to marshal bulking response: %s", err)
		http.Error(w, "toggle bulking failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (h *Handler) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.start")
	defer span.End()

	user, ok := username(w, r)
	if !ok {
		return
	}

	if err := h.store.StartWorkout(user); err != nil {
		writeDomainError(w, err)
		return
	}

	h.metrics.CounterWorkoutsStarted.Inc()
	log.Debugf("workout started: %s", user)
	pkg.WriteTextResponseOK(w, "started")
}

func (h *Handler) handleSelectWorkout(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.select")
	defer span.End()

	user, ok := username(w, r)
	if !ok {
		return
	}

	slot, err := strconv.Atoi(mux.Vars(r)["slot"])
	if err != nil {
		http.Error(w, "error, slot NaN", http.StatusBadRequest)
		return
	}

	if err := h.store.SelectWorkout(user, slot); err != nil {
		writeDomainError(w, err)
		return
	}

	pkg.WriteTextResponseOK(w, "selected")
}

func (h *Handler) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.completeset")
	defer span.End()

	user, ok := username(w, r)
	if !ok {
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var completeSetReq CompleteSetRequest
	if err := json.NewDecoder(r.Body).Decode(&completeSetReq); err != nil {
		log.Tracef("complete set, unmarshal json params: %s", err)
		http.Error(w, "complete set failed", http.StatusBadRequest)
		return
	}

	adjusted, err := h.store.CompleteSet(user, completeSetReq.Difficulty)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.metrics.CounterCompletedSets.Inc()

	adjustedJson, err := json.Marshal(adjusted)
	if err != nil {
		log.Errorf("failed to marshal adjusted workout: %s", err)
		http.Error(w, "complete set failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("set completed by %s, difficulty %d: workout %d adjusted", user, completeSetReq.Difficulty, adjusted.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, adjustedJson, http.StatusOK)
}

func (h *Handler) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.finish")
	defer span.End()

	user, ok := username(w, r)
	if !ok {
		return
	}

	if err := h.store.FinishWorkout(user); err != nil {
		writeDomainError(w, err)
		return
	}

	log.Debugf("workout finished: %s", user)
	pkg.WriteTextResponseOK(w, "finished")
}

func (h *Handler) handleLoadState(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.loadstate")
	defer span.End()

	user, ok := username(w, r)
	if !ok {
		return
	}

	snapshot, err := h.store.LoadState(user)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	snapshotJson, err := json.Marshal(snapshot)
	if err != nil {
		log.Errorf("failed to marshal state snapshot: %s", err)
		http.Error(w, "load state failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, snapshotJson, http.StatusOK)
}
