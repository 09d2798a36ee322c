package domain

import "time"

// User is an identity known to the helpdesk: filers, agents and administrators alike.
type User struct {
	ID           string    `db:"id"`
	FullName     string    `db:"full_name"`
	Email        string    `db:"email"`
	Department   string    `db:"department"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// Actor returns the request identity for the user.
func (u User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
