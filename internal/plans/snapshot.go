package plans

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
)

// Durability hooks: the whole user record map serialized as JSON. The
// service loads a snapshot on boot when one exists and writes one on
// graceful shutdown.

// WriteSnapshot serializes all user records. Each record is copied under
// its own lock, so a snapshot taken while requests are in flight is
// internally consistent per user.
func (s *Store) WriteSnapshot(w io.Writer) error {
	s.mu.RLock()
	usernames := make([]string, 0, len(s.users))
	for username := range s.users {
		usernames = append(usernames, username)
	}
	s.mu.RUnlock()

	// stable output, easier to diff snapshots
	sort.Strings(usernames)

	users := make(map[string]User, len(usernames))
	for _, username := range usernames {
		rec, err := s.record(username)
		if err != nil {
			// user vanished between listing and copying: cannot happen,
			// users are never deleted - but do not fail the snapshot over it
			log.Errorf("snapshot: %s: %s", username, err)
			continue
		}
		rec.mu.Lock()
		users[username] = copyUser(&rec.User)
		rec.mu.Unlock()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(users); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot replaces the store content with the snapshot's.
func (s *Store) ReadSnapshot(r io.Reader) error {
	var users map[string]User
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	restored := make(map[string]*userRecord, len(users))
	for username, u := range users {
		if u.Workouts == nil {
			u.Workouts = map[int]Workout{}
		}
		if u.State.Phase == "" {
			u.State.Phase = PhaseInactive
		}
		u.Username = username
		restored[username] = &userRecord{User: u}
	}

	s.mu.Lock()
	s.users = restored
	s.mu.Unlock()
	return nil
}

func (s *Store) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Errorf("close snapshot file: %s", err)
		}
	}()

	return s.WriteSnapshot(f)
}

func (s *Store) LoadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open snapshot file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Errorf("close snapshot file: %s", err)
		}
	}()

	return s.ReadSnapshot(f)
}

func copyUser(u *User) User {
	copied := *u
	copied.CompletedSets = append([]bool(nil), u.CompletedSets...)
	copied.Plan = make([]Day, 0, len(u.Plan))
	for _, day := range u.Plan {
		day.WorkoutIDs = append([]int(nil), day.WorkoutIDs...)
		copied.Plan = append(copied.Plan, day)
	}
	copied.Workouts = make(map[int]Workout, len(u.Workouts))
	for id, w := range u.Workouts {
		copied.Workouts[id] = cloneWorkout(w)
	}
	return copied
}
