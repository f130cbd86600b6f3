// Package queue defines message payloads exchanged over the message broker.
package queue

// CatalogChangedEvent is published after every successful catalog mutation.
// It contains enough information for downstream consumers to build an audit
// trail without querying the primary database.
type CatalogChangedEvent struct {
	Entity     string `json:"entity"`      // showcase | shelf | mineral | credential
	Action     string `json:"action"`      // created | updated | deleted
	EntityID   uint64 `json:"entity_id"`   // primary key of the affected row
	Code       string `json:"code"`        // showcase/shelf code or mineral number, if any
	Name       string `json:"name"`        // display name of the affected entity, if any
	OccurredAt string `json:"occurred_at"` // UTC timestamp in RFC 3339 form
}
