package domain

import "time"

// Comment is an append-only remark on a ticket thread.
type Comment struct {
	ID        string    `db:"id"`
	TicketID  string    `db:"ticket_id"`
	UserID    string    `db:"user_id"`
	Content   string    `db:"content"`
	Internal  bool      `db:"internal"`
	CreatedAt time.Time `db:"created_at"`
}

// VisibleTo reports whether the actor may read the comment on ticket t.
func (c Comment) VisibleTo(actor Actor, t *Ticket) bool {
	return !c.Internal || actor.CanSeeInternal(t)
}
