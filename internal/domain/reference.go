package domain

// Category classifies tickets (hardware, network, accounts...).
type Category struct {
	ID     string `db:"id"     json:"id"`
	Name   string `db:"name"   json:"name"`
	Active bool   `db:"active" json:"active"`
}

// Location is the campus place a ticket refers to.
type Location struct {
	ID       string `db:"id"       json:"id"`
	Name     string `db:"name"     json:"name"`
	Building string `db:"building" json:"building"`
	Active   bool   `db:"active"   json:"active"`
}
