package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusAssigned   TicketStatus = "assigned"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// lifecycle is the only order a ticket may move through.
var lifecycle = []TicketStatus{
	TicketStatusOpen,
	TicketStatusAssigned,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// TicketStatuses returns the lifecycle in order.
func TicketStatuses() []TicketStatus {
	out := make([]TicketStatus, len(lifecycle))
	copy(out, lifecycle)
	return out
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	return s.rank() >= 0
}

func (s TicketStatus) rank() int {
	for i, candidate := range lifecycle {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Next returns the status that follows s, or false when s is terminal or unknown.
func (s TicketStatus) Next() (TicketStatus, bool) {
	r := s.rank()
	if r < 0 || r == len(lifecycle)-1 {
		return "", false
	}
	return lifecycle[r+1], true
}

// CanTransition reports whether from → to is a single forward step.
func CanTransition(from, to TicketStatus) bool {
	next, ok := from.Next()
	return ok && next == to
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string       `db:"id"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	CategoryID  string       `db:"category_id"`
	LocationID  string       `db:"location_id"`
	UserID      string       `db:"user_id"`
	AssignedTo  *string      `db:"assigned_to"`
	Status      TicketStatus `db:"status"`
	CreatedAt   time.Time    `db:"created_at"`
	ResolvedAt  *time.Time   `db:"resolved_at"`
	ClosedAt    *time.Time   `db:"closed_at"`
}

// TicketPatch lists the fields a lifecycle transition writes. Nil fields are left untouched.
type TicketPatch struct {
	Status     TicketStatus
	AssignedTo *string
	ResolvedAt *time.Time
	ClosedAt   *time.Time
}

// Apply returns a copy of t with the patch applied.
func (p TicketPatch) Apply(t Ticket) Ticket {
	t.Status = p.Status
	if p.AssignedTo != nil {
		assignee := *p.AssignedTo
		t.AssignedTo = &assignee
	}
	if p.ResolvedAt != nil {
		at := *p.ResolvedAt
		t.ResolvedAt = &at
	}
	if p.ClosedAt != nil {
		at := *p.ClosedAt
		t.ClosedAt = &at
	}
	return t
}

// CheckInvariants reports the first timestamp or assignment rule the ticket violates.
func (t Ticket) CheckInvariants() error {
	resolvedOrLater := t.Status == TicketStatusResolved || t.Status == TicketStatusClosed
	switch {
	case !t.Status.Valid():
		return invariantError("unknown status " + string(t.Status))
	case resolvedOrLater != (t.ResolvedAt != nil):
		return invariantError("resolved_at must be set iff status is resolved or closed")
	case (t.Status == TicketStatusClosed) != (t.ClosedAt != nil):
		return invariantError("closed_at must be set iff status is closed")
	case (t.Status == TicketStatusOpen) != (t.AssignedTo == nil):
		return invariantError("assigned_to must be set iff the ticket left open")
	}
	return nil
}

type invariantError string

func (e invariantError) Error() string { return "ticket invariant: " + string(e) }

// TicketStats aggregates ticket counts by status.
type TicketStats struct {
	Total      int
	Open       int
	Assigned   int
	InProgress int
	Resolved   int
	Closed     int
}

// CountStatuses recounts listed tickets by status.
func CountStatuses(tickets []TicketView) TicketStats {
	var stats TicketStats
	for i := range tickets {
		stats.Add(tickets[i].Status, 1)
	}
	return stats
}

// Add counts n tickets in status s.
func (s *TicketStats) Add(status TicketStatus, n int) {
	s.Total += n
	switch status {
	case TicketStatusOpen:
		s.Open += n
	case TicketStatusAssigned:
		s.Assigned += n
	case TicketStatusInProgress:
		s.InProgress += n
	case TicketStatusResolved:
		s.Resolved += n
	case TicketStatusClosed:
		s.Closed += n
	}
}
