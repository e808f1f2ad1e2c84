// Package memory records executed plans: the execution record type, the
// history store interface and a bounded in-memory implementation.
package memory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/flemzord/toolclaw/pkg/plan"
)

// DefaultHistorySize is the number of records kept by NewRingHistory when
// given a non-positive capacity.
const DefaultHistorySize = 100

// ErrRecordNotFound is returned by Get for an unknown record ID.
var ErrRecordNotFound = errors.New("execution record not found")

// ExecutionRecord describes one completed plan run.
type ExecutionRecord struct {
	ID            string        `json:"id"`
	Input         string        `json:"input"`
	Plan          plan.Plan     `json:"plan"`
	Result        string        `json:"result"`
	StepsExecuted int           `json:"steps_executed"`
	Failed        bool          `json:"failed,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
	Duration      time.Duration `json:"duration"`
}

// NewRecord returns a record with a fresh ID stamped at now.
func NewRecord(input string, p plan.Plan, now time.Time) ExecutionRecord {
	return ExecutionRecord{
		ID:        uuid.NewString(),
		Input:     input,
		Plan:      p,
		Timestamp: now.UTC(),
	}
}

// HistoryStore keeps execution records, oldest first.
// Implementations must be safe for concurrent use.
type HistoryStore interface {
	// Append stores a record, evicting the oldest ones when full.
	Append(ctx context.Context, rec ExecutionRecord) error

	// Recent returns up to n most recent records in chronological order.
	// A non-positive n returns every record.
	Recent(ctx context.Context, n int) ([]ExecutionRecord, error)

	// Get returns a record by ID.
	Get(ctx context.Context, id string) (ExecutionRecord, error)

	// Prune drops all but the keep most recent records and returns how
	// many were removed.
	Prune(ctx context.Context, keep int) (int, error)

	// Len returns the number of stored records.
	Len(ctx context.Context) (int, error)
}
