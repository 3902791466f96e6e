package domain

import "time"

type EventKind string

const (
	EventItemCreated   EventKind = "item.created"
	EventItemDeleted   EventKind = "item.deleted"
	EventItemRestocked EventKind = "item.restocked"
)

// ItemEvent records a committed change to an item. Item holds the state after the change,
// or the last known state for deletions.
type ItemEvent struct {
	ID         string
	Kind       EventKind
	Item       Item
	Amount     int // restocked units, zero for other kinds
	OccurredAt time.Time
}
