package core

import "time"

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpToggled Op = "toggled"
	OpDeleted Op = "deleted"
)

// Op names the mutation a ChangeEvent records.
type Op string

// ChangeEvent records one successful mutation of a collection.
type ChangeEvent struct {
	Kind    string    `json:"kind"`
	Op      Op        `json:"op"`
	ID      string    `json:"id"`
	Summary string    `json:"summary"`
	At      time.Time `json:"at"`
	// Record holds the JSON encoding of the record after the mutation.
	// It is empty for deletions.
	Record []byte `json:"-"`
}
