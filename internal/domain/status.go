package domain

import "time"

// Status is the lifecycle state of a QuoteRequest.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusExpired   Status = "expired"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the known request states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusExpired, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusExpired || s == StatusCompleted
}

// ResponseStatus is the lifecycle state of a SupplierResponse.
type ResponseStatus string

const (
	ResponsePending   ResponseStatus = "pending"
	ResponseSubmitted ResponseStatus = "submitted"
	ResponseDeclined  ResponseStatus = "declined"
	ResponseExpired   ResponseStatus = "expired"
)

// Terminal reports whether the supplier has given a final answer. Expired
// responses are not terminal answers; they never count toward completion.
func (s ResponseStatus) Terminal() bool {
	return s == ResponseSubmitted || s == ResponseDeclined
}

// transitions lists every legal state-machine move.
var transitions = map[Status][]Status{
	StatusDraft: {StatusSent},
	StatusSent:  {StatusCompleted, StatusExpired},
}

// CanTransition reports whether a request may move from one state to another.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// EffectiveStatus returns the deadline-corrected status of a request. The
// persisted status may lag behind the clock (expiry is written back by a
// periodic sweep), so every gating decision must go through this function.
func EffectiveStatus(persisted Status, deadline, now time.Time) Status {
	if persisted == StatusSent && now.After(deadline) {
		return StatusExpired
	}
	return persisted
}

// EffectiveStatus returns the deadline-corrected status of q at now.
func (q *QuoteRequest) EffectiveStatus(now time.Time) Status {
	return EffectiveStatus(q.Status, q.Deadline, now)
}

// AcceptingResponses reports whether q accepts new supplier responses at now.
func (q *QuoteRequest) AcceptingResponses(now time.Time) bool {
	return q.EffectiveStatus(now) == StatusSent && !now.After(q.Deadline)
}
