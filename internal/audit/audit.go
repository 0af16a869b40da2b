// Package audit captures who did what to the housing ledger. Events are
// transport-agnostic structs so recorders can fan out to any backend.
package audit

import (
	"context"
	"time"
)

type Action string

const (
	ActionAllocationCommitted  Action = "allocation_committed"
	ActionAllocationRemoved    Action = "allocation_removed"
	ActionBulkRunCompleted     Action = "bulk_run_completed"
	ActionRegistrantVerified   Action = "registrant_verified"
	ActionRegistrantUnverified Action = "registrant_unverified"
	ActionPolicyChanged        Action = "age_gap_policy_changed"
)

type Event struct {
	OccurredAt   time.Time
	Action       Action
	Actor        string
	RegistrantID string
	RoomID       string
	RequestID    string
	Detail       string
}

// Recorder persists audit events. Recording is best-effort from the caller's
// point of view: services log recorder failures and carry on.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Discard drops every event. Useful in tests that don't assert on auditing.
type Discard struct{}

func (Discard) Record(context.Context, Event) error { return nil }
