// Package securitytest provides helpers for asserting on audit trails.
package securitytest

import (
	"sync"

	"github.com/flemzord/toolclaw/internal/security"
)

// Recorder collects audit events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []security.AuditEvent
}

// NewRecorder returns a Recorder and an AuditLogger feeding it.
func NewRecorder() (*Recorder, *security.AuditLogger) {
	r := &Recorder{}
	return r, security.NewAuditLogger(security.AuditLoggerConfig{
		Redactor: security.NewRedactor(),
		OnEvent:  r.record,
	})
}

func (r *Recorder) record(e security.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []security.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]security.AuditEvent(nil), r.events...)
}

// Count returns how many events of type t were recorded.
func (r *Recorder) Count(t security.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}
