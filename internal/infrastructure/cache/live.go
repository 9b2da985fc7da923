package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// liveSnapshotTTL keeps finished attempts visible to interviewers for a
// while after stop without leaving stale keys behind forever.
const liveSnapshotTTL = 15 * time.Minute

// LiveSnapshot is the interviewer-facing read model of one recording
// attempt. It is written on every capture event and read by the live
// monitoring endpoint, so it carries display state only, never control state.
type LiveSnapshot struct {
	SessionID      string    `json:"session_id"`
	AttemptID      string    `json:"attempt_id"`
	QuestionIndex  int       `json:"question_index"`
	State          string    `json:"state"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	WarningIssued  bool      `json:"warning_issued"`
	Degraded       bool      `json:"degraded"`
	Text           string    `json:"text"`
	Score          *int      `json:"score,omitempty"`
	Verdict        string    `json:"verdict,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LiveStore persists live snapshots in whichever Store backend is configured
// (Redis in deployments, memory in dev and tests).
type LiveStore struct {
	store  Store
	logger *zap.Logger
}

// NewLiveStore creates a live snapshot store on top of a key-value backend.
func NewLiveStore(store Store, logger *zap.Logger) *LiveStore {
	return &LiveStore{store: store, logger: logger}
}

// Put writes the snapshot under the attempt's live key.
func (ls *LiveStore) Put(snapshot *LiveSnapshot) {
	snapshot.UpdatedAt = time.Now()
	payload, err := json.Marshal(snapshot)
	if err != nil {
		if ls.logger != nil {
			ls.logger.Warn("⚠️ Failed to encode live snapshot",
				zap.String("attempt_id", snapshot.AttemptID),
				zap.Error(err),
			)
		}
		return
	}
	ls.store.Set(liveKey(snapshot.AttemptID), string(payload), liveSnapshotTTL)
}

// Get reads the snapshot for an attempt, if one is still cached.
func (ls *LiveStore) Get(attemptID string) (*LiveSnapshot, bool) {
	payload, ok := ls.store.Get(liveKey(attemptID))
	if !ok {
		return nil, false
	}

	var snapshot LiveSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		if ls.logger != nil {
			ls.logger.Warn("⚠️ Corrupt live snapshot, dropping",
				zap.String("attempt_id", attemptID),
				zap.Error(err),
			)
		}
		ls.store.Delete(liveKey(attemptID))
		return nil, false
	}
	return &snapshot, true
}

// Forget removes the snapshot for an attempt.
func (ls *LiveStore) Forget(attemptID string) {
	ls.store.Delete(liveKey(attemptID))
}

func liveKey(attemptID string) string {
	return fmt.Sprintf("capture:live:%s", attemptID)
}
