package domain

// Role enumerates the single role an identity holds.
type Role string

const (
	RoleEndUser       Role = "enduser"
	RoleAgent         Role = "agent"
	RoleAdministrator Role = "administrator"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleEndUser, RoleAgent, RoleAdministrator:
		return true
	}
	return false
}

// Actor is the identity a request acts as. It is resolved once per request and passed
// explicitly into every service call.
type Actor struct {
	ID   string
	Role Role
}

// IsAdministrator reports whether the actor administers the helpdesk.
func (a Actor) IsAdministrator() bool {
	return a.Role == RoleAdministrator
}

// IsAgent reports whether the actor holds the agent role.
func (a Actor) IsAgent() bool {
	return a.Role == RoleAgent
}

// IsFilerOf reports whether the actor filed the ticket.
func (a Actor) IsFilerOf(t *Ticket) bool {
	return t != nil && a.ID != "" && t.UserID == a.ID
}

// IsAssigneeOf reports whether the ticket is assigned to the actor.
func (a Actor) IsAssigneeOf(t *Ticket) bool {
	return t != nil && a.ID != "" && t.AssignedTo != nil && *t.AssignedTo == a.ID
}

// CanView reports whether the actor may read the ticket and its thread.
func (a Actor) CanView(t *Ticket) bool {
	return a.IsAdministrator() || a.IsFilerOf(t) || a.IsAssigneeOf(t)
}

// CanSeeInternal reports whether the ticket's internal comments are visible to the actor.
// The filer never sees them, whatever role they hold.
func (a Actor) CanSeeInternal(t *Ticket) bool {
	if a.IsFilerOf(t) {
		return false
	}
	return a.IsAdministrator() || (a.IsAgent() && a.IsAssigneeOf(t))
}

// CanWriteInternal reports whether the actor may post an internal comment on the ticket.
func (a Actor) CanWriteInternal(t *Ticket) bool {
	return a.CanSeeInternal(t)
}

// Landing names the dashboard view an actor lands on.
func (a Actor) Landing() string {
	switch a.Role {
	case RoleAdministrator:
		return "admin"
	case RoleAgent:
		return "agent"
	default:
		return "filer"
	}
}
