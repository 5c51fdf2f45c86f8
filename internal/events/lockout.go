// Package events defines the payloads emitted through the transactional outbox.
package events

import "time"

// Event types recorded in the outbox and used to route schemas/topics.
const (
	TypeActivityCreated = "lockout.activity_created"
	TypeStateChanged    = "lockout.state_changed"
	TypeRuptureRecorded = "lockout.rupture_recorded"
)

// ActivityCreated is emitted when a new lockout activity is registered.
type ActivityCreated struct {
	ActivityID     string    `json:"activity_id"`
	SequenceNumber int64     `json:"sequence_number"`
	Name           string    `json:"name"`
	BlockType      string    `json:"block_type"`
	CreatedAt      time.Time `json:"created_at"`
}

// StateChanged tracks lifecycle transitions (pending, active, finalized).
type StateChanged struct {
	ActivityID string    `json:"activity_id"`
	Status     string    `json:"status"`
	IsBlocked  bool      `json:"is_blocked"`
	OccurredAt time.Time `json:"occurred_at"`
	Reason     string    `json:"reason,omitempty"`
}

// RuptureRecorded mirrors the audit entry appended for a forced removal.
type RuptureRecorded struct {
	ActivityID    string    `json:"activity_id"`
	SubjectType   string    `json:"subject_type"`
	SubjectUserID string    `json:"subject_user_id"`
	Reason        string    `json:"reason"`
	ValidatorID   string    `json:"validator_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}
