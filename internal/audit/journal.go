// Package audit records task mutations in an append-only journal.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/fentz26/tasklist/internal/models"
	"github.com/google/uuid"
)

// Outcomes recorded for an action.
const (
	OutcomeSuccess = "success"
	OutcomeNoop    = "noop"
	OutcomeError   = "error"
)

// Sink persists journal entries somewhere.
type Sink interface {
	WriteJournal(ctx context.Context, entry models.JournalEntry) error
}

// Journal fans entries out to its sinks. A failing sink is logged and
// skipped; it never fails the caller.
type Journal struct {
	sinks []Sink
	now   func() time.Time
}

// NewJournal creates a journal writing to the given sinks.
func NewJournal(sinks ...Sink) *Journal {
	return &Journal{sinks: sinks, now: time.Now}
}

// AddSink attaches another sink.
func (j *Journal) AddSink(s Sink) {
	j.sinks = append(j.sinks, s)
}

// Record writes an entry for a state-mutating action.
func (j *Journal) Record(action string, inputs interface{}, outcome string, taskID int64, details string) models.JournalEntry {
	entry := models.JournalEntry{
		ID:         uuid.New().String(),
		Action:     action,
		InputsHash: hashInputs(inputs),
		Outcome:    outcome,
		TaskID:     taskID,
		Details:    details,
		Timestamp:  j.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, s := range j.sinks {
		if err := s.WriteJournal(ctx, entry); err != nil {
			log.Printf("journal: %s: %v", action, err)
		}
	}
	return entry
}

// hashInputs creates a SHA256 hash of the inputs for reproducibility.
func hashInputs(inputs interface{}) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
